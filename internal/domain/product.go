package domain

// Product is the catalog record for a purchasable item. The cart never mutates it.
type Product struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image"`
}

// Stock is a point-in-time snapshot of available quantity for a product
type Stock struct {
	ProductID int64 `json:"id"`
	Amount    int   `json:"amount"`
}

// Covers reports whether the snapshot allows one more unit on top of current
func (s Stock) Covers(current int) bool {
	return s.Amount > current
}
