package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

const maxOrderIDAttempts = 5

// Cart owns the live cart items and the order history of one session.
type Cart struct {
	mu     sync.Mutex
	store  slotStore
	opts   Options
	logger *log.Logger

	items   []domain.LineItem
	orders  []domain.Order
	loading bool
	seq     uint64

	observers observers
}

// NewCart returns a ledger in the loading state. Call Load to read the persisted slots.
// A nil store keeps the ledger in memory only.
func NewCart(store slotStore, opts Options) *Cart {
	opts = opts.withDefaults()
	return &Cart{
		store:   store,
		opts:    opts,
		logger:  opts.Logger,
		items:   []domain.LineItem{},
		orders:  []domain.Order{},
		loading: true,
	}
}

// Load replaces the in-memory state with the persisted cart and orders and clears the loading flag.
// When the store cannot be read the ledger is left untouched and still loading, and the error wraps ErrLoad.
func (c *Cart) Load(ctx context.Context) error {
	items, err := readSlot[domain.LineItem](ctx, c.store, c.opts.key(CartSlot), c.logger, "cart ledger")
	if err != nil {
		return err
	}
	orders, err := readSlot[domain.Order](ctx, c.store, c.opts.key(OrdersSlot), c.logger, "cart ledger")
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.items = items
	c.orders = orders
	c.loading = false
	e := c.eventLocked(EventLoaded)
	c.mu.Unlock()

	c.logger.Printf("cart ledger: loaded namespace=%s items=%d orders=%d", c.opts.Namespace, len(items), len(orders))
	c.observers.notify(e)
	return nil
}

// IsLoading reports whether Load has not completed yet.
func (c *Cart) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Items returns a copy of the live cart in insertion order.
func (c *Cart) Items() []domain.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CloneItems(c.items)
}

// Orders returns copies of all orders, oldest first.
func (c *Cart) Orders() []domain.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Order, len(c.orders))
	for i, o := range c.orders {
		out[i] = o.Clone()
	}
	return out
}

// Subscribe registers fn for every successful mutation. The returned func unregisters it.
func (c *Cart) Subscribe(fn func(Event)) func() {
	return c.observers.subscribe(fn)
}

// AddItem increments the quantity of an existing entry by one, or appends the
// item with quantity 1. The quantity carried by item is ignored.
func (c *Cart) AddItem(ctx context.Context, item domain.LineItem) {
	c.mu.Lock()
	merged := false
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		item.Quantity = 1
		c.items = append(c.items, item)
	}
	c.saveItemsLocked(ctx)
	e := c.eventLocked(EventItemAdded)
	c.mu.Unlock()

	c.observers.notify(e)
}

// RemoveItem deletes the entry with the given id. Unknown ids are ignored.
func (c *Cart) RemoveItem(ctx context.Context, id string) {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	c.saveItemsLocked(ctx)
	e := c.eventLocked(EventItemRemoved)
	c.mu.Unlock()

	c.observers.notify(e)
}

// UpdateQuantity sets the quantity of an existing entry. Quantities below 1 leave
// the cart untouched; in strict mode they also return ErrInvalidQuantity.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		if c.opts.Strict {
			return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
		}
		return nil
	}

	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}
	c.items[idx].Quantity = quantity
	c.saveItemsLocked(ctx)
	e := c.eventLocked(EventQuantityUpdated)
	c.mu.Unlock()

	c.observers.notify(e)
	return nil
}

// ClearCart empties the live cart. Order history is kept.
func (c *Cart) ClearCart(ctx context.Context) {
	c.mu.Lock()
	c.items = []domain.LineItem{}
	c.saveItemsLocked(ctx)
	e := c.eventLocked(EventCartCleared)
	c.mu.Unlock()

	c.observers.notify(e)
}

// Total returns the sum of price times quantity over the live cart.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Total(c.items)
}

// CreateOrder snapshots the cart into a confirmed order, records it and then
// clears the cart. The cart is cleared only after the order history has been
// written; if that write fails the cart and history are left as they were and
// the error wraps ErrCreateOrder.
func (c *Cart) CreateOrder(ctx context.Context, form domain.CheckoutFormData) (string, error) {
	c.mu.Lock()

	orderID, err := c.nextOrderIDLocked()
	if err != nil {
		c.mu.Unlock()
		c.logger.Printf("cart ledger: create order namespace=%s error=%v", c.opts.Namespace, err)
		return "", fmt.Errorf("%w: %w", ErrCreateOrder, err)
	}

	order := domain.Order{
		OrderID:   orderID,
		Items:     domain.CloneItems(c.items),
		FormData:  form,
		Total:     Total(c.items),
		OrderDate: c.opts.Now().UTC().Format(orderDateLayout),
		Status:    domain.OrderStatusConfirmed,
	}

	orders := make([]domain.Order, len(c.orders), len(c.orders)+1)
	copy(orders, c.orders)
	orders = append(orders, order)
	if err := writeSlot(ctx, c.store, c.opts.key(OrdersSlot), orders); err != nil {
		c.mu.Unlock()
		c.logger.Printf("cart ledger: save orders namespace=%s order_id=%s error=%v", c.opts.Namespace, orderID, err)
		return "", fmt.Errorf("%w: %w", ErrCreateOrder, err)
	}
	c.orders = orders

	c.items = []domain.LineItem{}
	c.saveItemsLocked(ctx)
	e := c.eventLocked(EventOrderCreated)
	created := order.Clone()
	e.Order = &created
	c.mu.Unlock()

	c.logger.Printf("cart ledger: order created namespace=%s order_id=%s items=%d total=%.2f", c.opts.Namespace, orderID, len(order.Items), order.Total)
	c.observers.notify(e)
	return orderID, nil
}

// OrderDetails looks up an order by exact id.
func (c *Cart) OrderDetails(orderID string) (domain.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.orders {
		if o.OrderID == orderID {
			return o.Clone(), true
		}
	}
	return domain.Order{}, false
}

// Close drops every observer. The ledger must not be used afterwards.
func (c *Cart) Close() {
	c.observers.reset()
}

func (c *Cart) indexLocked(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// saveItemsLocked persists the cart. A failed write is logged; the in-memory change stands.
func (c *Cart) saveItemsLocked(ctx context.Context) {
	if err := writeSlot(ctx, c.store, c.opts.key(CartSlot), c.items); err != nil {
		c.logger.Printf("cart ledger: save items namespace=%s error=%v", c.opts.Namespace, err)
	}
}

// eventLocked stamps the next sequence number and copies the items for observers.
func (c *Cart) eventLocked(kind EventKind) Event {
	c.seq++
	return Event{Kind: kind, Seq: c.seq, Items: domain.CloneItems(c.items)}
}

func (c *Cart) nextOrderIDLocked() (string, error) {
	for i := 0; i < maxOrderIDAttempts; i++ {
		id, err := c.opts.IDs.NewOrderID()
		if err != nil {
			return "", err
		}
		if !c.hasOrderLocked(id) {
			return id, nil
		}
	}
	return "", errors.New("order id collision")
}

func (c *Cart) hasOrderLocked(id string) bool {
	for _, o := range c.orders {
		if o.OrderID == id {
			return true
		}
	}
	return false
}

// Total sums price times quantity in decimal arithmetic.
func Total(items []domain.LineItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	f, _ := sum.Float64()
	return f
}
