package domain

// Product categories. Stored verbatim in product metadata, so renaming one
// is a data migration, not a code change.
const (
	CategoryMen         = "Men"
	CategoryWomen       = "Women"
	CategoryKids        = "Kids"
	CategoryGames       = "Games"
	CategoryAccessories = "Accessories & Collectibles"
)

var categories = map[string]bool{
	CategoryMen:         true,
	CategoryWomen:       true,
	CategoryKids:        true,
	CategoryGames:       true,
	CategoryAccessories: true,
}

// ValidCategory reports whether c is one of the known product categories.
func ValidCategory(c string) bool { return categories[c] }

// Product is one catalog entry, stored as a single JSON object at
// products-meta/<id>.json in the blob store. A tombstoned product is the
// same key overwritten with {}.
//
// Active and Order are pointers so that "absent" survives a round trip:
// a missing active counts as true and a missing order sorts last.
type Product struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Price     float64  `json:"price"`
	ImageURL  string   `json:"imageUrl"`
	Active    *bool    `json:"active,omitempty"`
	Order     *float64 `json:"order,omitempty"`
	CreatedAt int64    `json:"createdAt,omitempty"` // unix milliseconds
	UpdatedAt int64    `json:"updatedAt,omitempty"` // unix milliseconds
}

// IsTombstone reports whether the stored body decoded to an empty record.
// List scans must drop these; the key itself is never removed.
func (p *Product) IsTombstone() bool { return p.ID == "" || p.ImageURL == "" }
