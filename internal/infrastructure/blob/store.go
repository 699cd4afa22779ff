package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/storefront-api/internal/domain"
)

// Key prefixes of the blob namespace. One JSON object per key, overwritten
// wholesale; this convention is the only consistency layer on top of the
// store.
const (
	MetaPrefix     = "products-meta/"
	ImagePrefix    = "products/"
	OverridePrefix = "overrides/"
)

// Object is one listed blob: its key and the public URL it is readable at.
type Object struct {
	Key string
	URL string
}

// Store wraps blob-store operations for the application. Writes go through
// the S3 API; public reads go through the object URL so they see exactly
// what storefront clients see.
type Store struct {
	client     *s3.Client
	bucket     string
	publicBase string
	httpClient *http.Client
}

// NewStore creates a Store with the given S3 client, bucket and public base URL.
func NewStore(client *s3.Client, bucket, publicBase string) *Store {
	return &Store{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Put streams a blob under key, overwriting any existing object, and returns
// its public URL.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("blob put %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// PutJSON marshals v and writes it under key. With overwrite disabled the
// write is conditional on the key not existing yet; the store rejecting it
// is surfaced as domain.ErrConflict. This store-side guard is the only
// protection against clobbering an existing record on create.
func (s *Store) PutJSON(ctx context.Context, key string, v interface{}, overwrite bool) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	}
	if !overwrite {
		in.IfNoneMatch = aws.String("*")
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("key %s already exists: %w", key, domain.ErrConflict)
		}
		return fmt.Errorf("blob put %s: %w", key, err)
	}
	return nil
}

// List returns every object under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("blob list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			out = append(out, Object{Key: key, URL: s.PublicURL(key)})
		}
	}
	return out, nil
}

// FetchFresh reads the object body through its public URL with a uniqueness
// token appended, defeating intermediary caches. The store's read is only
// eventually consistent through this path, so callers must tolerate lag.
func (s *Store) FetchFresh(ctx context.Context, key string) ([]byte, error) {
	url := fmt.Sprintf("%s?ts=%d", s.PublicURL(key), time.Now().UnixNano())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")
	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob fetch %s: %w", key, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob fetch %s: status %d", key, res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

// Delete removes a blob. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// DeleteByURL removes the blob a public URL points at. URLs outside this
// store's namespace are rejected.
func (s *Store) DeleteByURL(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return fmt.Errorf("url %q is not in this blob store: %w", url, domain.ErrBadRequest)
	}
	return s.Delete(ctx, key)
}

// PublicURL returns the URL the object is readable at.
func (s *Store) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

func (s *Store) keyFromURL(url string) (string, bool) {
	if raw, found := strings.CutPrefix(url, s.publicBase+"/"); found {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			raw = raw[:i]
		}
		return raw, raw != ""
	}
	return "", false
}

// isPreconditionFailed matches the store's rejection of a conditional
// non-overwrite write against an existing key.
func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed"
}
