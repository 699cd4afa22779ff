package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/storefront-api/internal/domain"
)

// MemoryTable is an in-process Table for tests and local development. The
// real table is replicated by the sync engine; this one only mirrors its
// contract.
type MemoryTable struct {
	mu    sync.Mutex
	items map[string]domain.CartItem
}

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{items: make(map[string]domain.CartItem)}
}

func (t *MemoryTable) FirstByProduct(_ context.Context, productID string) (*domain.CartItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, it := range t.items {
		if it.ProductID == productID {
			found := it
			return &found, nil
		}
	}
	return nil, fmt.Errorf("no cart row for product %s: %w", productID, domain.ErrNotFound)
}

func (t *MemoryTable) Insert(_ context.Context, item domain.CartItem) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[item.ID] = item
	return nil
}

func (t *MemoryTable) UpdateQty(_ context.Context, itemID string, qty int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	it, ok := t.items[itemID]
	if !ok {
		return fmt.Errorf("cart row %s: %w", itemID, domain.ErrNotFound)
	}
	it.Qty = qty
	t.items[itemID] = it
	return nil
}

func (t *MemoryTable) List(_ context.Context) ([]domain.CartItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.CartItem, 0, len(t.items))
	for _, it := range t.items {
		out = append(out, it)
	}
	return out, nil
}

func (t *MemoryTable) Clear(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = make(map[string]domain.CartItem)
	return nil
}
