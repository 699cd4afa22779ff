package domain

// CartItem is one row of the client-local cart table. The table itself is
// owned by the external local-first sync engine; the row key is a random id,
// so uniqueness per product is an application-level invariant enforced by
// the add operation, not by storage.
type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}
