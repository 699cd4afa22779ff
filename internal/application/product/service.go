package product

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/storefront-api/internal/application/catalog"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/infrastructure/blob"
	"github.com/storefront-api/internal/pkg/id"
	"github.com/storefront-api/internal/pkg/validate"
)

// BlobWriter is the slice of the blob store the admin write path needs.
type BlobWriter interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PutJSON(ctx context.Context, key string, v interface{}, overwrite bool) error
	DeleteByURL(ctx context.Context, url string) error
}

// ImageUpload is an incoming image file from a multipart form.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

type CreateInput struct {
	Name     string  `validate:"required"`
	Category string  `validate:"required"`
	Price    float64 `validate:"required,gt=0"`
	ID       string
	Order    *float64
	Active   *bool
	Image    *ImageUpload
	ImageURL string
}

type UpdateInput struct {
	ID       string `validate:"required"`
	Name     *string
	Category *string
	Price    *float64
	Order    *float64
	Active   *bool
	Image    *ImageUpload
	ImageURL *string
}

type Service interface {
	// Create writes a new product record. The write is conditional on the id
	// not existing yet; a duplicate id fails without touching the existing
	// record.
	Create(ctx context.Context, in CreateInput) (*domain.Product, error)
	// Update merges a partial patch onto the current record as seen by the
	// public catalog read model, refreshes updatedAt and overwrites. If the
	// read model lags a prior write, the merge operates on stale data;
	// last writer wins.
	Update(ctx context.Context, in UpdateInput) (*domain.Product, error)
	// Delete tombstones the record by overwriting it with an empty object.
	// The key itself persists. Deleting the underlying image is best-effort.
	Delete(ctx context.Context, productID string, deleteImage bool, imageURL string) error
	// UploadImage stores a standalone image blob under a unique key and
	// returns its public URL.
	UploadImage(ctx context.Context, img ImageUpload) (string, error)
}

type service struct {
	store   BlobWriter
	catalog catalog.Service
}

func NewService(store BlobWriter, catalogSvc catalog.Service) Service {
	return &service{store: store, catalog: catalogSvc}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if !domain.ValidCategory(in.Category) {
		return nil, fmt.Errorf("unknown category %q: %w", in.Category, domain.ErrBadRequest)
	}

	productID := in.ID
	if productID == "" {
		productID = Slug(in.Name)
	}
	if productID == "" {
		return nil, fmt.Errorf("id could not be derived from name: %w", domain.ErrBadRequest)
	}

	imageURL := in.ImageURL
	if in.Image != nil {
		url, err := s.UploadImage(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}
	if imageURL == "" {
		return nil, fmt.Errorf("image file or imageUrl required: %w", domain.ErrBadRequest)
	}

	now := time.Now().UnixMilli()
	active := in.Active
	if active == nil {
		active = boolPtr(true)
	}
	p := &domain.Product{
		ID:        productID,
		Name:      in.Name,
		Category:  in.Category,
		Price:     in.Price,
		ImageURL:  imageURL,
		Active:    active,
		Order:     in.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.PutJSON(ctx, metaKey(productID), p, false); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, in UpdateInput) (*domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if in.Category != nil && !domain.ValidCategory(*in.Category) {
		return nil, fmt.Errorf("unknown category %q: %w", *in.Category, domain.ErrBadRequest)
	}

	items, err := s.catalog.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	var current *domain.Product
	for i := range items {
		if items[i].ID == in.ID {
			current = &items[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("product %s: %w", in.ID, domain.ErrNotFound)
	}

	next := *current
	if in.Name != nil {
		next.Name = *in.Name
	}
	if in.Category != nil {
		next.Category = *in.Category
	}
	if in.Price != nil {
		next.Price = *in.Price
	}
	if in.Order != nil {
		next.Order = in.Order
	}
	if in.Active != nil {
		next.Active = in.Active
	}
	if in.Image != nil {
		url, err := s.UploadImage(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		next.ImageURL = url
	} else if in.ImageURL != nil {
		next.ImageURL = *in.ImageURL
	}
	next.UpdatedAt = time.Now().UnixMilli()

	if err := s.store.PutJSON(ctx, metaKey(in.ID), &next, true); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *service) Delete(ctx context.Context, productID string, deleteImage bool, imageURL string) error {
	if productID == "" {
		return fmt.Errorf("id required: %w", domain.ErrBadRequest)
	}
	if err := s.store.PutJSON(ctx, metaKey(productID), struct{}{}, true); err != nil {
		return err
	}
	if deleteImage && imageURL != "" {
		if err := s.store.DeleteByURL(ctx, imageURL); err != nil {
			slog.Warn("product image delete failed", "product_id", productID, "err", err)
		}
	}
	return nil
}

func (s *service) UploadImage(ctx context.Context, img ImageUpload) (string, error) {
	key := blob.ImagePrefix + id.New() + "-" + sanitizeFilename(img.Filename)
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.store.Put(ctx, key, img.Reader, contentType)
}

func metaKey(productID string) string {
	return blob.MetaPrefix + productID + ".json"
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a stable product id from a display name.
func Slug(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

var nonFilename = regexp.MustCompile(`[^\w.\-]+`)

// sanitizeFilename keeps only safe characters so uploaded names cannot
// traverse or break blob keys.
func sanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	safe := nonFilename.ReplaceAllString(name, "_")
	if safe == "" || safe == "." {
		return "upload"
	}
	return safe
}

func boolPtr(b bool) *bool { return &b }
