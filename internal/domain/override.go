package domain

// Override is an admin-assigned replacement image for a product, stored
// wholesale at overrides/<productId>.json. An empty object is the tombstone
// meaning "no override".
type Override struct {
	URL string `json:"url,omitempty"`
}
