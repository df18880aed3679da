package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	"storefront/internal/ledger"
)

type cartResponse struct {
	Items     []domain.LineItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
	Loading   bool              `json:"loading"`
}

type wishlistResponse struct {
	Items []domain.LineItem `json:"items"`
}

// addItemRequest accepts either a catalog product id or a full line item.
type addItemRequest struct {
	ProductID string  `json:"productId"`
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price" binding:"gte=0"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func cartView(cart *ledger.Cart) cartResponse {
	items := cart.Items()
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return cartResponse{
		Items:     items,
		Total:     ledger.Total(items),
		ItemCount: count,
		Loading:   cart.IsLoading(),
	}
}

func (h *handlers) resolveItem(c *gin.Context) (domain.LineItem, bool) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return domain.LineItem{}, false
	}
	if id := strings.TrimSpace(req.ProductID); id != "" {
		item, err := h.deps.ProductSvc.LineItem(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err)
			return domain.LineItem{}, false
		}
		return item, true
	}
	if strings.TrimSpace(req.ID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId or id is required"})
		return domain.LineItem{}, false
	}
	return domain.LineItem{
		ID:       req.ID,
		Name:     req.Name,
		Price:    req.Price,
		Image:    req.Image,
		Category: req.Category,
	}, true
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartView(sessionFrom(c).Cart))
}

func (h *handlers) addCartItem(c *gin.Context) {
	item, ok := h.resolveItem(c)
	if !ok {
		return
	}
	cart := sessionFrom(c).Cart
	cart.AddItem(c.Request.Context(), item)
	c.JSON(http.StatusOK, cartView(cart))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}
	cart := sessionFrom(c).Cart
	if err := cart.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	cart := sessionFrom(c).Cart
	cart.RemoveItem(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, cartView(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	cart := sessionFrom(c).Cart
	cart.ClearCart(c.Request.Context())
	c.JSON(http.StatusOK, cartView(cart))
}

func (h *handlers) cartSummary(c *gin.Context) {
	country := domain.Country(c.DefaultQuery("country", string(domain.CountryIndia)))
	c.JSON(http.StatusOK, h.deps.CheckoutSvc.Summary(sessionFrom(c).Cart.Items(), country))
}

func (h *handlers) placeOrder(c *gin.Context) {
	var form domain.CheckoutFormData
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s := sessionFrom(c)
	order, err := h.deps.CheckoutSvc.PlaceOrder(c.Request.Context(), s.ID, s.Cart, form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handlers) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": sessionFrom(c).Cart.Orders()})
}

func (h *handlers) getOrder(c *gin.Context) {
	order, ok := sessionFrom(c).Cart.OrderDetails(c.Param("orderId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) getWishlist(c *gin.Context) {
	c.JSON(http.StatusOK, wishlistResponse{Items: sessionFrom(c).Wishlist.Items()})
}

func (h *handlers) addWishlistItem(c *gin.Context) {
	item, ok := h.resolveItem(c)
	if !ok {
		return
	}
	w := sessionFrom(c).Wishlist
	w.AddItem(c.Request.Context(), item)
	c.JSON(http.StatusOK, wishlistResponse{Items: w.Items()})
}

func (h *handlers) removeWishlistItem(c *gin.Context) {
	w := sessionFrom(c).Wishlist
	w.RemoveItem(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, wishlistResponse{Items: w.Items()})
}

func (h *handlers) clearWishlist(c *gin.Context) {
	w := sessionFrom(c).Wishlist
	w.Clear(c.Request.Context())
	c.JSON(http.StatusOK, wishlistResponse{Items: w.Items()})
}

// endSession releases the session; with ?forget=true its stored cart, orders and wishlist are erased too.
func (h *handlers) endSession(c *gin.Context) {
	id := sessionFrom(c).ID
	if c.Query("forget") == "true" {
		if err := h.deps.Sessions.Forget(c.Request.Context(), id); err != nil {
			h.writeError(c, err)
			return
		}
	} else {
		h.deps.Sessions.End(id)
	}
	c.SetCookie(h.deps.SessionCookie, "", -1, "/", "", h.deps.SessionCookieSecure, true)
	c.Status(http.StatusNoContent)
}
