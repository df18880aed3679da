package ledger

import (
	"sync"

	"storefront/internal/domain"
)

type EventKind string

const (
	EventItemAdded       EventKind = "item_added"
	EventItemRemoved     EventKind = "item_removed"
	EventQuantityUpdated EventKind = "quantity_updated"
	EventCartCleared     EventKind = "cart_cleared"
	EventOrderCreated    EventKind = "order_created"
	EventWishlistChanged EventKind = "wishlist_changed"
	EventLoaded          EventKind = "loaded"
)

// Event is delivered to observers after a mutation has been applied.
// Items is a copy of the collection after the change; Order is set only for EventOrderCreated.
//
// Observers run outside the ledger lock, so concurrent mutations may deliver
// their events out of order. Seq increases by one per change within a ledger
// and is assigned under the lock: an observer that keeps state should ignore
// an event whose Seq is not greater than the last one it applied.
type Event struct {
	Kind  EventKind
	Seq   uint64
	Items []domain.LineItem
	Order *domain.Order
}

type subscriber struct {
	id int
	fn func(Event)
}

type observers struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

func (o *observers) subscribe(fn func(Event)) func() {
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscriber{id: id, fn: fn})
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, s := range o.subs {
				if s.id == id {
					o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// notify runs outside the ledger lock so observers may read the ledger.
func (o *observers) notify(e Event) {
	o.mu.Lock()
	subs := make([]subscriber, len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(e)
	}
}

func (o *observers) reset() {
	o.mu.Lock()
	o.subs = nil
	o.mu.Unlock()
}
