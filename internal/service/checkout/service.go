package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	"storefront/internal/ledger"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrSubmitting = errors.New("order already being placed")
)

// defaultCurrency is shown when the country is unknown.
const defaultCurrency = "₹"

var taxRate = decimal.RequireFromString("0.18")

var currencySymbols = map[domain.Country]string{
	domain.CountryIndia:         "₹",
	domain.CountryUnitedStates:  "$",
	domain.CountryUnitedKingdom: "£",
	domain.CountryPakistan:      "Rs",
	domain.CountryCanada:        "C$",
	domain.CountryAustralia:     "A$",
}

// CartLedger is the part of a cart ledger needed to place an order.
type CartLedger interface {
	Items() []domain.LineItem
	CreateOrder(ctx context.Context, form domain.CheckoutFormData) (string, error)
	OrderDetails(orderID string) (domain.Order, bool)
}

type Service struct {
	validate *validator.Validate
	logger   *log.Logger

	mu         sync.Mutex
	submitting map[string]struct{}
}

func New(logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		validate:   newValidator(),
		logger:     logger,
		submitting: make(map[string]struct{}),
	}
}

// Summary is the priced view of a cart shown before payment.
type Summary struct {
	Country   domain.Country `json:"country"`
	Currency  string         `json:"currency"`
	ItemCount int            `json:"itemCount"`
	Subtotal  float64        `json:"subtotal"`
	Tax       float64        `json:"tax"`
	Total     float64        `json:"total"`
}

// CurrencySymbol returns the display symbol for country.
func CurrencySymbol(country domain.Country) string {
	if sym, ok := currencySymbols[country]; ok {
		return sym
	}
	return defaultCurrency
}

// Summary prices items for country. Tax is 18% of the subtotal; amounts are rounded to cents.
func (s *Service) Summary(items []domain.LineItem, country domain.Country) Summary {
	subtotal := decimal.NewFromFloat(ledger.Total(items))
	tax := subtotal.Mul(taxRate)
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	sub, _ := subtotal.Round(2).Float64()
	t, _ := tax.Round(2).Float64()
	total, _ := subtotal.Add(tax).Round(2).Float64()
	return Summary{
		Country:   country,
		Currency:  CurrencySymbol(country),
		ItemCount: count,
		Subtotal:  sub,
		Tax:       t,
		Total:     total,
	}
}

// PlaceOrder validates the form and turns the session's cart into an order.
// Only one placement per session may be in flight; a second one gets ErrSubmitting.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, cart CartLedger, form domain.CheckoutFormData) (domain.Order, error) {
	if len(cart.Items()) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	if err := s.ValidateForm(form); err != nil {
		return domain.Order{}, err
	}

	if !s.begin(sessionID) {
		return domain.Order{}, ErrSubmitting
	}
	defer s.end(sessionID)

	// the cart may have been emptied by a placement that finished meanwhile
	if len(cart.Items()) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	orderID, err := cart.CreateOrder(ctx, form)
	if err != nil {
		s.logger.Printf("checkout: place order session=%s error=%v", sessionID, err)
		return domain.Order{}, err
	}
	order, ok := cart.OrderDetails(orderID)
	if !ok {
		return domain.Order{}, fmt.Errorf("order %s missing after create: %w", orderID, domain.ErrNotFound)
	}
	s.logger.Printf("checkout: order placed session=%s order_id=%s total=%.2f", sessionID, orderID, order.Total)
	return order, nil
}

func (s *Service) begin(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.submitting[sessionID]; busy {
		return false
	}
	s.submitting[sessionID] = struct{}{}
	return true
}

func (s *Service) end(sessionID string) {
	s.mu.Lock()
	delete(s.submitting, sessionID)
	s.mu.Unlock()
}
