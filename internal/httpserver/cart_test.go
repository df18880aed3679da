package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/service/checkout"
)

const validCheckoutBody = `{
	"firstName":"Asha","lastName":"Rao","addressLine1":"12 MG Road","postalCode":"560001",
	"locality":"Bengaluru","state":"Karnataka","country":"India",
	"email":"asha@example.com","phone":"9876543210","pan":"ABCDE1234F"
}`

func TestCart_AddMergeUpdateRemove(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	env.do(http.MethodPost, "/cart/items", `{"productId":"1"}`, sid)
	env.do(http.MethodPost, "/cart/items", `{"productId":"1"}`, sid)
	rec := env.do(http.MethodPost, "/cart/items", `{"id":"custom","name":"Socks","price":5.5}`, sid)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	cart := decode[cartResponse](t, rec)
	if len(cart.Items) != 2 || cart.Items[0].Quantity != 2 || cart.Items[1].ID != "custom" {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if cart.Total != 205.5 || cart.ItemCount != 3 {
		t.Fatalf("unexpected totals %+v", cart)
	}

	rec = env.do(http.MethodPatch, "/cart/items/1", `{"quantity":5}`, sid)
	cart = decode[cartResponse](t, rec)
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %+v", cart.Items[0])
	}

	rec = env.do(http.MethodPatch, "/cart/items/1", `{"quantity":0}`, sid)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected permissive 200, got %d", rec.Code)
	}
	if cart = decode[cartResponse](t, rec); cart.Items[0].Quantity != 5 {
		t.Fatalf("quantity below 1 must be ignored, got %+v", cart.Items[0])
	}

	rec = env.do(http.MethodDelete, "/cart/items/custom", "", sid)
	if cart = decode[cartResponse](t, rec); len(cart.Items) != 1 {
		t.Fatalf("expected 1 item after remove, got %+v", cart.Items)
	}

	rec = env.do(http.MethodDelete, "/cart", "", sid)
	if cart = decode[cartResponse](t, rec); len(cart.Items) != 0 || cart.Total != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestCart_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	if rec := env.do(http.MethodPost, "/cart/items", `{}`, sid); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty item, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/cart/items", `{"productId":"missing"}`, sid); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPatch, "/cart/items/1", `{}`, sid); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quantity, got %d", rec.Code)
	}
}

func TestCart_SessionsIsolated(t *testing.T) {
	env := newTestEnv(t)
	a := env.newSession(t)
	b := env.newSession(t)

	env.do(http.MethodPost, "/cart/items", `{"productId":"1"}`, a)
	cart := decode[cartResponse](t, env.do(http.MethodGet, "/cart", "", b))
	if len(cart.Items) != 0 {
		t.Fatalf("session b must not see session a's cart: %+v", cart)
	}
}

func TestCartSummary(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)
	env.do(http.MethodPost, "/cart/items", `{"productId":"1"}`, sid)

	got := decode[checkout.Summary](t, env.do(http.MethodGet, "/cart/summary?country=Canada", "", sid))
	if got.Currency != "C$" || got.Subtotal != 100 || got.Tax != 18 || got.Total != 118 {
		t.Fatalf("unexpected summary %+v", got)
	}

	got = decode[checkout.Summary](t, env.do(http.MethodGet, "/cart/summary", "", sid))
	if got.Currency != "₹" || got.Country != domain.CountryIndia {
		t.Fatalf("expected India default, got %+v", got)
	}
}

func TestCheckout_PlaceOrderAndLookup(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	if rec := env.do(http.MethodPost, "/checkout", validCheckoutBody, sid); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", rec.Code)
	}

	env.do(http.MethodPost, "/cart/items", `{"productId":"1"}`, sid)
	env.do(http.MethodPost, "/cart/items", `{"productId":"1"}`, sid)

	rec := env.do(http.MethodPost, "/checkout", validCheckoutBody, sid)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	order := decode[domain.Order](t, rec)
	if !strings.HasPrefix(order.OrderID, "ORD") || order.Total != 200 || order.Status != domain.OrderStatusConfirmed {
		t.Fatalf("unexpected order %+v", order)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order items %+v", order.Items)
	}

	cart := decode[cartResponse](t, env.do(http.MethodGet, "/cart", "", sid))
	if len(cart.Items) != 0 {
		t.Fatalf("cart must be empty after checkout, got %+v", cart)
	}

	env.do(http.MethodPost, "/cart/items", `{"productId":"2"}`, sid)

	rec = env.do(http.MethodGet, "/orders/"+order.OrderID, "", sid)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if again := decode[domain.Order](t, rec); again.Total != 200 || len(again.Items) != 1 {
		t.Fatalf("order snapshot changed: %+v", again)
	}

	orders := decode[struct {
		Orders []domain.Order `json:"orders"`
	}](t, env.do(http.MethodGet, "/orders", "", sid))
	if len(orders.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders.Orders))
	}

	if rec := env.do(http.MethodGet, "/orders/ORDMISSING", "", sid); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	other := env.newSession(t)
	if rec := env.do(http.MethodGet, "/orders/"+order.OrderID, "", other); rec.Code != http.StatusNotFound {
		t.Fatalf("orders must be scoped to their session, got %d", rec.Code)
	}
}

func TestCheckout_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)
	env.do(http.MethodPost, "/cart/items", `{"productId":"1"}`, sid)

	body := strings.Replace(validCheckoutBody, `"phone":"9876543210"`, `"phone":"123"`, 1)
	rec := env.do(http.MethodPost, "/checkout", body, sid)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, rec)
	if resp.Fields["phone"] == "" || len(resp.Fields) != 1 {
		t.Fatalf("expected phone field error, got %+v", resp.Fields)
	}

	cart := decode[cartResponse](t, env.do(http.MethodGet, "/cart", "", sid))
	if len(cart.Items) != 1 {
		t.Fatalf("cart must survive a rejected checkout")
	}
}

func TestWishlist(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)

	env.do(http.MethodPost, "/wishlist/items", `{"productId":"1"}`, sid)
	env.do(http.MethodPost, "/wishlist/items", `{"productId":"1"}`, sid)
	rec := env.do(http.MethodPost, "/wishlist/items", `{"productId":"2"}`, sid)
	w := decode[wishlistResponse](t, rec)
	if len(w.Items) != 2 || w.Items[0].Quantity != 2 {
		t.Fatalf("unexpected wishlist %+v", w)
	}

	w = decode[wishlistResponse](t, env.do(http.MethodDelete, "/wishlist/items/1", "", sid))
	if len(w.Items) != 2 || w.Items[0].Quantity != 1 {
		t.Fatalf("expected decrement, got %+v", w)
	}
	w = decode[wishlistResponse](t, env.do(http.MethodDelete, "/wishlist/items/1", "", sid))
	if len(w.Items) != 1 {
		t.Fatalf("expected removal at zero, got %+v", w)
	}

	cart := decode[cartResponse](t, env.do(http.MethodGet, "/cart", "", sid))
	if len(cart.Items) != 0 {
		t.Fatalf("wishlist must not touch the cart")
	}

	w = decode[wishlistResponse](t, env.do(http.MethodDelete, "/wishlist", "", sid))
	if len(w.Items) != 0 {
		t.Fatalf("expected empty wishlist, got %+v", w)
	}
}

func TestEndSession(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)
	env.do(http.MethodPost, "/cart/items", `{"productId":"1"}`, sid)

	rec := env.do(http.MethodDelete, "/session", "", sid)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if env.sessions.Len() != 0 {
		t.Fatalf("expected session to be released")
	}

	// persisted state is reloaded on the next request
	cart := decode[cartResponse](t, env.do(http.MethodGet, "/cart", "", sid))
	if len(cart.Items) != 1 {
		t.Fatalf("expected persisted cart after reload, got %+v", cart)
	}
}

func TestEndSession_Forget(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)
	env.do(http.MethodPost, "/cart/items", `{"productId":"1"}`, sid)

	if rec := env.do(http.MethodDelete, "/session?forget=true", "", sid); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	cart := decode[cartResponse](t, env.do(http.MethodGet, "/cart", "", sid))
	if len(cart.Items) != 0 {
		t.Fatalf("expected erased cart, got %+v", cart)
	}
}
