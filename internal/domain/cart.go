package domain

// LineItem is one product entry inside the cart or the wishlist. ID is the merge key.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Country is one of the shipping destinations accepted at checkout.
type Country string

const (
	CountryIndia         Country = "India"
	CountryUnitedStates  Country = "United States"
	CountryUnitedKingdom Country = "United Kingdom"
	CountryPakistan      Country = "Pakistan"
	CountryCanada        Country = "Canada"
	CountryAustralia     Country = "Australia"
)

// Countries lists shipping destinations in display order.
var Countries = []Country{
	CountryIndia,
	CountryUnitedStates,
	CountryUnitedKingdom,
	CountryPakistan,
	CountryCanada,
	CountryAustralia,
}

// CheckoutFormData is the flat shipping/contact record captured at checkout.
type CheckoutFormData struct {
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2,omitempty"`
	PostalCode   string  `json:"postalCode"`
	Locality     string  `json:"locality"`
	State        string  `json:"state"`
	Country      Country `json:"country"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	PAN          string  `json:"pan"`
}

// Order is an immutable snapshot of the cart taken at synthesis time.
type Order struct {
	OrderID   string           `json:"orderId"`
	Items     []LineItem       `json:"items"`
	FormData  CheckoutFormData `json:"formData"`
	Total     float64          `json:"total"`
	OrderDate string           `json:"orderDate"`
	Status    OrderStatus      `json:"status"`
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	o.Items = CloneItems(o.Items)
	return o
}

// CloneItems copies a line item slice so callers cannot alias ledger state.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
