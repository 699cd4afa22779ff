// Package cart implements the client-local cart model. The rows live in a
// table owned by the external local-first sync engine; this package only
// encodes the operations and their invariants, most importantly that a
// product appears in at most one row even though the row key is random.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/id"
)

// Table is the sync-engine-owned cart table.
type Table interface {
	FirstByProduct(ctx context.Context, productID string) (*domain.CartItem, error)
	Insert(ctx context.Context, item domain.CartItem) error
	UpdateQty(ctx context.Context, itemID string, qty int) error
	List(ctx context.Context) ([]domain.CartItem, error)
	Clear(ctx context.Context) error
}

type AddInput struct {
	ProductID string
	Name      string
	Image     string
	Price     float64
}

type Service struct {
	table Table
}

func NewService(table Table) *Service {
	return &Service{table: table}
}

// Add puts one unit of the product in the cart. A product already present
// gets its qty incremented instead of a second row: the dedup is enforced
// here by searching first, not by the storage key.
func (s *Service) Add(ctx context.Context, in AddInput) error {
	if in.ProductID == "" {
		return fmt.Errorf("productId required: %w", domain.ErrBadRequest)
	}

	existing, err := s.table.FirstByProduct(ctx, in.ProductID)
	switch {
	case err == nil:
		return s.table.UpdateQty(ctx, existing.ID, existing.Qty+1)
	case errors.Is(err, domain.ErrNotFound):
		return s.table.Insert(ctx, domain.CartItem{
			ID:        id.New(),
			ProductID: in.ProductID,
			Name:      in.Name,
			Image:     in.Image,
			Price:     in.Price,
			Qty:       1,
		})
	default:
		return err
	}
}

// Items returns the cart rows.
func (s *Service) Items(ctx context.Context) ([]domain.CartItem, error) {
	return s.table.List(ctx)
}

// Count returns the total unit count across all rows.
func (s *Service) Count(ctx context.Context) (int, error) {
	items, err := s.table.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		qty := it.Qty
		if qty == 0 {
			qty = 1
		}
		n += qty
	}
	return n, nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) error {
	return s.table.Clear(ctx)
}
