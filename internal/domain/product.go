package domain

import "time"

// Product is a catalog record served by the content source.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Colors    []string  `json:"colors,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LineItemFromProduct builds a single-unit line item for the cart or wishlist.
func LineItemFromProduct(p Product) LineItem {
	return LineItem{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Image:    p.Image,
		Price:    p.Price,
		Quantity: 1,
	}
}
