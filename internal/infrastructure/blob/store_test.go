package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	s := NewStore(nil, "shop", "https://shop.s3.us-east-1.amazonaws.com/")
	assert.Equal(t, "https://shop.s3.us-east-1.amazonaws.com/products-meta/tee.json",
		s.PublicURL("products-meta/tee.json"))
}

func TestKeyFromURL(t *testing.T) {
	s := NewStore(nil, "shop", "https://shop.s3.us-east-1.amazonaws.com")

	key, ok := s.keyFromURL("https://shop.s3.us-east-1.amazonaws.com/products/img.png")
	assert.True(t, ok)
	assert.Equal(t, "products/img.png", key)

	// Cache-busting query strings are not part of the key.
	key, ok = s.keyFromURL("https://shop.s3.us-east-1.amazonaws.com/products/img.png?ts=123")
	assert.True(t, ok)
	assert.Equal(t, "products/img.png", key)

	_, ok = s.keyFromURL("https://elsewhere.example.com/products/img.png")
	assert.False(t, ok, "foreign URLs must be rejected")

	_, ok = s.keyFromURL("https://shop.s3.us-east-1.amazonaws.com/")
	assert.False(t, ok)
}
