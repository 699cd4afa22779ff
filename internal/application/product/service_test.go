package product

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/storefront-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockBlobWriter struct{ mock.Mock }

func (m *mockBlobWriter) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockBlobWriter) PutJSON(ctx context.Context, key string, v interface{}, overwrite bool) error {
	return m.Called(ctx, key, v, overwrite).Error(0)
}

func (m *mockBlobWriter) DeleteByURL(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) ListCatalog(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if v, _ := args.Get(0).([]domain.Product); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalog) ListOverrides(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if v, _ := args.Get(0).(map[string]string); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Create ---

func TestCreate_WithDirectImageURL(t *testing.T) {
	store := &mockBlobWriter{}
	store.On("PutJSON", mock.Anything, "products-meta/blue-shirt.json", mock.Anything, false).Return(nil)

	svc := NewService(store, &mockCatalog{})
	p, err := svc.Create(context.Background(), CreateInput{
		Name:     "Blue Shirt",
		Category: domain.CategoryMen,
		Price:    19.99,
		ImageURL: "https://img/shirt.png",
	})

	require.NoError(t, err)
	assert.Equal(t, "blue-shirt", p.ID)
	assert.Equal(t, "https://img/shirt.png", p.ImageURL)
	require.NotNil(t, p.Active)
	assert.True(t, *p.Active)
	assert.NotZero(t, p.CreatedAt)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	store.AssertExpectations(t)
}

func TestCreate_UploadsImageFile(t *testing.T) {
	store := &mockBlobWriter{}
	store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "products/") && strings.HasSuffix(key, "-photo.png")
	}), mock.Anything, "image/png").Return("https://blob/products/x-photo.png", nil)
	store.On("PutJSON", mock.Anything, "products-meta/tee.json", mock.Anything, false).Return(nil)

	svc := NewService(store, &mockCatalog{})
	p, err := svc.Create(context.Background(), CreateInput{
		Name:     "Tee",
		Category: domain.CategoryKids,
		Price:    5,
		ID:       "tee",
		Image:    &ImageUpload{Reader: strings.NewReader("png"), Filename: "photo.png", ContentType: "image/png"},
	})

	require.NoError(t, err)
	assert.Equal(t, "https://blob/products/x-photo.png", p.ImageURL)
}

func TestCreate_DuplicateIDFails(t *testing.T) {
	store := &mockBlobWriter{}
	store.On("PutJSON", mock.Anything, "products-meta/tee.json", mock.Anything, false).
		Return(domain.ErrConflict)

	svc := NewService(store, &mockCatalog{})
	_, err := svc.Create(context.Background(), CreateInput{
		Name:     "Tee",
		Category: domain.CategoryKids,
		Price:    5,
		ID:       "tee",
		ImageURL: "https://img/t.png",
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreate_RequiresImage(t *testing.T) {
	svc := NewService(&mockBlobWriter{}, &mockCatalog{})
	_, err := svc.Create(context.Background(), CreateInput{
		Name:     "Tee",
		Category: domain.CategoryKids,
		Price:    5,
	})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestCreate_RejectsBadInput(t *testing.T) {
	svc := NewService(&mockBlobWriter{}, &mockCatalog{})

	_, err := svc.Create(context.Background(), CreateInput{Category: domain.CategoryMen, Price: 5, ImageURL: "u"})
	assert.ErrorIs(t, err, domain.ErrBadRequest, "missing name")

	_, err = svc.Create(context.Background(), CreateInput{Name: "X", Category: domain.CategoryMen, Price: -1, ImageURL: "u"})
	assert.ErrorIs(t, err, domain.ErrBadRequest, "non-positive price")

	_, err = svc.Create(context.Background(), CreateInput{Name: "X", Category: "Shoes", Price: 5, ImageURL: "u"})
	assert.ErrorIs(t, err, domain.ErrBadRequest, "unknown category")
}

// --- Update ---

func TestUpdate_MergesPatchAndRefreshesUpdatedAt(t *testing.T) {
	existing := domain.Product{
		ID: "tee", Name: "Tee", Category: domain.CategoryKids, Price: 5,
		ImageURL: "https://img/t.png", CreatedAt: 100, UpdatedAt: 100,
	}
	cat := &mockCatalog{}
	cat.On("ListCatalog", mock.Anything).Return([]domain.Product{existing}, nil)

	store := &mockBlobWriter{}
	store.On("PutJSON", mock.Anything, "products-meta/tee.json", mock.Anything, true).Return(nil)

	svc := NewService(store, cat)
	newPrice := 7.5
	p, err := svc.Update(context.Background(), UpdateInput{ID: "tee", Price: &newPrice})

	require.NoError(t, err)
	assert.Equal(t, 7.5, p.Price)
	assert.Equal(t, "Tee", p.Name, "unpatched fields survive")
	assert.Equal(t, "https://img/t.png", p.ImageURL)
	assert.Equal(t, int64(100), p.CreatedAt)
	assert.Greater(t, p.UpdatedAt, int64(100))
}

func TestUpdate_UnknownIDIsNotFound(t *testing.T) {
	cat := &mockCatalog{}
	cat.On("ListCatalog", mock.Anything).Return([]domain.Product{}, nil)

	svc := NewService(&mockBlobWriter{}, cat)
	_, err := svc.Update(context.Background(), UpdateInput{ID: "ghost"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_ReadModelFailurePropagates(t *testing.T) {
	cat := &mockCatalog{}
	cat.On("ListCatalog", mock.Anything).Return(nil, assert.AnError)

	svc := NewService(&mockBlobWriter{}, cat)
	_, err := svc.Update(context.Background(), UpdateInput{ID: "tee"})

	assert.ErrorIs(t, err, assert.AnError)
}

func TestUpdate_RequiresID(t *testing.T) {
	svc := NewService(&mockBlobWriter{}, &mockCatalog{})
	_, err := svc.Update(context.Background(), UpdateInput{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

// --- Delete ---

func TestDelete_WritesTombstone(t *testing.T) {
	store := &mockBlobWriter{}
	store.On("PutJSON", mock.Anything, "products-meta/tee.json", struct{}{}, true).Return(nil)

	svc := NewService(store, &mockCatalog{})
	require.NoError(t, svc.Delete(context.Background(), "tee", false, ""))
	store.AssertExpectations(t)
}

func TestDelete_ImageDeleteIsBestEffort(t *testing.T) {
	store := &mockBlobWriter{}
	store.On("PutJSON", mock.Anything, "products-meta/tee.json", struct{}{}, true).Return(nil)
	store.On("DeleteByURL", mock.Anything, "https://blob/products/x.png").Return(assert.AnError)

	svc := NewService(store, &mockCatalog{})
	assert.NoError(t, svc.Delete(context.Background(), "tee", true, "https://blob/products/x.png"))
}

func TestDelete_RequiresID(t *testing.T) {
	svc := NewService(&mockBlobWriter{}, &mockCatalog{})
	assert.ErrorIs(t, svc.Delete(context.Background(), "", false, ""), domain.ErrBadRequest)
}

// --- helpers ---

func TestSlug(t *testing.T) {
	assert.Equal(t, "blue-shirt", Slug("Blue Shirt"))
	assert.Equal(t, "accessories-collectibles", Slug("Accessories & Collectibles"))
	assert.Equal(t, "a-b-c", Slug("--A//b__c--"))
	assert.Equal(t, "", Slug("!!!"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "photo.png", sanitizeFilename("photo.png"))
	assert.Equal(t, "etc_passwd", sanitizeFilename("../../etc passwd"))
	assert.Equal(t, "x.png", sanitizeFilename(`C:\dir\x.png`))
	assert.Equal(t, "upload", sanitizeFilename(""))
}
