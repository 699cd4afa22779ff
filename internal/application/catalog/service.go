package catalog

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/infrastructure/blob"
)

// orderSentinel sorts products without an explicit order after every product
// that has one.
const orderSentinel = 9999

// BlobReader is the slice of the blob store the read models need.
type BlobReader interface {
	List(ctx context.Context, prefix string) ([]blob.Object, error)
	FetchFresh(ctx context.Context, key string) ([]byte, error)
}

type Service interface {
	// ListCatalog rebuilds the product list from the blob namespace on every
	// call. Tombstoned and malformed entries are dropped; the rest come back
	// sorted active-first, then by explicit order, then newest-updated.
	ListCatalog(ctx context.Context) ([]domain.Product, error)
	// ListOverrides rebuilds the productId -> replacement image URL mapping.
	ListOverrides(ctx context.Context) (map[string]string, error)
}

type service struct {
	store BlobReader
}

func NewService(store BlobReader) Service {
	return &service{store: store}
}

func (s *service) ListCatalog(ctx context.Context) ([]domain.Product, error) {
	objects, err := s.store.List(ctx, blob.MetaPrefix)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Product, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		body, err := s.store.FetchFresh(ctx, obj.Key)
		if err != nil {
			continue
		}
		var p domain.Product
		if err := json.Unmarshal(body, &p); err != nil {
			continue
		}
		if p.IsTombstone() {
			continue
		}
		items = append(items, p)
	}

	sortProducts(items)
	return items, nil
}

func (s *service) ListOverrides(ctx context.Context) (map[string]string, error) {
	objects, err := s.store.List(ctx, blob.OverridePrefix)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		productID := strings.TrimSuffix(path.Base(obj.Key), ".json")
		if productID == "" {
			continue
		}
		body, err := s.store.FetchFresh(ctx, obj.Key)
		if err != nil {
			continue
		}
		var o domain.Override
		if err := json.Unmarshal(body, &o); err != nil {
			continue
		}
		if o.URL == "" {
			continue
		}
		out[productID] = o.URL
	}
	return out, nil
}

// sortProducts orders by active (true first, absent counts as true), then
// order ascending (absent sorts after all explicit orders), then updatedAt
// descending as the final tie-break.
func sortProducts(items []domain.Product) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if aa, ba := isActive(a), isActive(b); aa != ba {
			return aa
		}
		if ao, bo := orderOf(a), orderOf(b); ao != bo {
			return ao < bo
		}
		return a.UpdatedAt > b.UpdatedAt
	})
}

func isActive(p domain.Product) bool {
	return p.Active == nil || *p.Active
}

func orderOf(p domain.Product) float64 {
	if p.Order == nil {
		return orderSentinel
	}
	return *p.Order
}
