package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/domain"
	"storefront/internal/ledger"
)

func validForm() domain.CheckoutFormData {
	return domain.CheckoutFormData{
		FirstName:    "Asha",
		LastName:     "Rao",
		AddressLine1: "12 MG Road",
		PostalCode:   "560001",
		Locality:     "Bengaluru",
		State:        "Karnataka",
		Country:      domain.CountryIndia,
		Email:        "asha@example.com",
		Phone:        "9876543210",
		PAN:          "ABCDE1234F",
	}
}

func TestValidateForm_Valid(t *testing.T) {
	svc := New(nil)
	assert.NoError(t, svc.ValidateForm(validForm()))
}

func TestValidateForm_RequiredFields(t *testing.T) {
	svc := New(nil)
	err := svc.ValidateForm(domain.CheckoutFormData{Country: domain.CountryIndia, AddressLine1: "   "})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"firstName":    "First name is required",
		"lastName":     "Last name is required",
		"addressLine1": "Address is required",
		"postalCode":   "Postal code is required",
		"locality":     "Locality is required",
		"state":        "State is required",
		"email":        "Email is required",
		"phone":        "Phone number is required",
		"pan":          "PAN is required",
	}, verr.Fields)
}

func TestValidateForm_Formats(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CheckoutFormData)
		field  string
		msg    string
	}{
		{"email without dot", func(f *domain.CheckoutFormData) { f.Email = "asha@example" }, "email", "Please enter a valid email address"},
		{"short phone", func(f *domain.CheckoutFormData) { f.Phone = "98765" }, "phone", "Please enter a valid 10-digit phone number"},
		{"phone with letters", func(f *domain.CheckoutFormData) { f.Phone = "98765abcde" }, "phone", "Please enter a valid 10-digit phone number"},
		{"lowercase pan", func(f *domain.CheckoutFormData) { f.PAN = "abcde1234f" }, "pan", "Please enter a valid PAN number"},
		{"unknown country", func(f *domain.CheckoutFormData) { f.Country = "Mars" }, "country", "Please select a supported country"},
		{"state outside country", func(f *domain.CheckoutFormData) { f.State = "Texas" }, "state", "Please select a state in the chosen country"},
	}
	svc := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)

			var verr *ValidationError
			require.ErrorAs(t, svc.ValidateForm(f), &verr)
			assert.Equal(t, map[string]string{tt.field: tt.msg}, verr.Fields)
			assert.Contains(t, verr.Error(), tt.field)
		})
	}
}

func TestValidateForm_AddressLine2Optional(t *testing.T) {
	svc := New(nil)
	f := validForm()
	f.AddressLine2 = ""
	f.Country = domain.CountryUnitedKingdom
	f.State = "Wales"
	assert.NoError(t, svc.ValidateForm(f))
}

func TestSummary(t *testing.T) {
	svc := New(nil)
	items := []domain.LineItem{
		{ID: "A", Price: 100, Quantity: 2},
		{ID: "B", Price: 49.99, Quantity: 1},
	}

	got := svc.Summary(items, domain.CountryUnitedStates)
	assert.Equal(t, Summary{
		Country:   domain.CountryUnitedStates,
		Currency:  "$",
		ItemCount: 3,
		Subtotal:  249.99,
		Tax:       45,
		Total:     294.99,
	}, got)
}

func TestSummary_EmptyAndUnknownCountry(t *testing.T) {
	got := New(nil).Summary(nil, "")
	assert.Equal(t, "₹", got.Currency)
	assert.Zero(t, got.Subtotal)
	assert.Zero(t, got.Tax)
	assert.Zero(t, got.Total)
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "£", CurrencySymbol(domain.CountryUnitedKingdom))
	assert.Equal(t, "Rs", CurrencySymbol(domain.CountryPakistan))
	assert.Equal(t, "C$", CurrencySymbol(domain.CountryCanada))
	assert.Equal(t, "A$", CurrencySymbol(domain.CountryAustralia))
}

func newCart(t *testing.T) *ledger.Cart {
	t.Helper()
	c := ledger.NewCart(nil, ledger.Options{})
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load cart: %v", err)
	}
	return c
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	svc := New(nil)
	cart := newCart(t)
	cart.AddItem(ctx, domain.LineItem{ID: "A", Price: 100})
	cart.AddItem(ctx, domain.LineItem{ID: "A", Price: 100})

	order, err := svc.PlaceOrder(ctx, "s1", cart, validForm())
	require.NoError(t, err)
	assert.Equal(t, 200.0, order.Total)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Empty(t, cart.Items())

	_, err = svc.PlaceOrder(ctx, "s1", cart, validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_InvalidFormKeepsCart(t *testing.T) {
	ctx := context.Background()
	svc := New(nil)
	cart := newCart(t)
	cart.AddItem(ctx, domain.LineItem{ID: "A", Price: 100})

	f := validForm()
	f.Phone = ""
	_, err := svc.PlaceOrder(ctx, "s1", cart, f)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, cart.Items(), 1)
	assert.Empty(t, cart.Orders())
}

type blockingCart struct {
	items   []domain.LineItem
	entered chan struct{}
	release chan struct{}
	err     error
}

func (b *blockingCart) Items() []domain.LineItem { return b.items }

func (b *blockingCart) CreateOrder(context.Context, domain.CheckoutFormData) (string, error) {
	close(b.entered)
	<-b.release
	if b.err != nil {
		return "", b.err
	}
	return "ORD1", nil
}

func (b *blockingCart) OrderDetails(id string) (domain.Order, bool) {
	return domain.Order{OrderID: id}, id == "ORD1"
}

func TestPlaceOrder_RejectsConcurrentSubmit(t *testing.T) {
	ctx := context.Background()
	svc := New(nil)
	cart := &blockingCart{
		items:   []domain.LineItem{{ID: "A", Price: 1, Quantity: 1}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.PlaceOrder(ctx, "s1", cart, validForm())
		done <- err
	}()
	<-cart.entered

	_, err := svc.PlaceOrder(ctx, "s1", cart, validForm())
	assert.ErrorIs(t, err, ErrSubmitting)

	close(cart.release)
	require.NoError(t, <-done)
}

func TestPlaceOrder_PropagatesCreateFailure(t *testing.T) {
	ctx := context.Background()
	svc := New(nil)
	cart := &blockingCart{
		items:   []domain.LineItem{{ID: "A", Price: 1, Quantity: 1}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
		err:     errors.Join(ledger.ErrCreateOrder, errors.New("disk full")),
	}
	close(cart.release)

	_, err := svc.PlaceOrder(ctx, "s1", cart, validForm())
	assert.ErrorIs(t, err, ledger.ErrCreateOrder)

	// guard released after failure
	cart.entered = make(chan struct{})
	cart.err = nil
	_, err = svc.PlaceOrder(ctx, "s1", cart, validForm())
	assert.NoError(t, err)
}
