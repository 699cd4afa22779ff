package override

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/storefront-api/internal/application/product"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/infrastructure/blob"
)

type Service interface {
	// Set uploads the replacement image under a unique key, then overwrites
	// the product's override record wholesale with the new URL. The two
	// writes are not atomic: a crash in between leaves an orphaned image
	// blob, never a dangling override.
	Set(ctx context.Context, productID string, img product.ImageUpload) (url string, err error)
	// Clear overwrites the override record with the empty tombstone and
	// best-effort deletes the referenced image blob.
	Clear(ctx context.Context, productID, blobURL string) error
}

type service struct {
	store    product.BlobWriter
	uploader product.Service
}

func NewService(store product.BlobWriter, uploader product.Service) Service {
	return &service{store: store, uploader: uploader}
}

func (s *service) Set(ctx context.Context, productID string, img product.ImageUpload) (string, error) {
	if productID == "" {
		return "", fmt.Errorf("productId required: %w", domain.ErrBadRequest)
	}
	if img.Reader == nil {
		return "", fmt.Errorf("file required: %w", domain.ErrBadRequest)
	}

	url, err := s.uploader.UploadImage(ctx, img)
	if err != nil {
		return "", err
	}
	if err := s.store.PutJSON(ctx, overrideKey(productID), domain.Override{URL: url}, true); err != nil {
		return "", err
	}
	return url, nil
}

func (s *service) Clear(ctx context.Context, productID, blobURL string) error {
	if productID != "" {
		if err := s.store.PutJSON(ctx, overrideKey(productID), domain.Override{}, true); err != nil {
			return err
		}
	}
	if blobURL != "" {
		if err := s.store.DeleteByURL(ctx, blobURL); err != nil {
			slog.Warn("override image delete failed", "product_id", productID, "err", err)
		}
	}
	return nil
}

func overrideKey(productID string) string {
	return blob.OverridePrefix + productID + ".json"
}
