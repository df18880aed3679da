package ledger

import (
	"context"
	"log"
	"sync"

	"storefront/internal/domain"
)

// Wishlist holds favourited items with quantity semantics.
type Wishlist struct {
	mu     sync.Mutex
	store  slotStore
	opts   Options
	logger *log.Logger

	items   []domain.LineItem
	loading bool
	seq     uint64

	observers observers
}

// NewWishlist returns a wishlist ledger. With a nil store it lives for the session only.
func NewWishlist(store slotStore, opts Options) *Wishlist {
	opts = opts.withDefaults()
	return &Wishlist{
		store:   store,
		opts:    opts,
		logger:  opts.Logger,
		items:   []domain.LineItem{},
		loading: true,
	}
}

// Load reads the persisted wishlist. On a store failure the wishlist stays loading and the error wraps ErrLoad.
func (w *Wishlist) Load(ctx context.Context) error {
	items, err := readSlot[domain.LineItem](ctx, w.store, w.opts.key(WishlistSlot), w.logger, "wishlist ledger")
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.items = items
	w.loading = false
	e := w.eventLocked(EventLoaded)
	w.mu.Unlock()

	w.observers.notify(e)
	return nil
}

func (w *Wishlist) IsLoading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

func (w *Wishlist) Items() []domain.LineItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.CloneItems(w.items)
}

func (w *Wishlist) Subscribe(fn func(Event)) func() {
	return w.observers.subscribe(fn)
}

// AddItem merges by id exactly like the cart.
func (w *Wishlist) AddItem(ctx context.Context, item domain.LineItem) {
	w.mu.Lock()
	merged := false
	for i := range w.items {
		if w.items[i].ID == item.ID {
			w.items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		item.Quantity = 1
		w.items = append(w.items, item)
	}
	w.saveLocked(ctx)
	e := w.eventLocked(EventWishlistChanged)
	w.mu.Unlock()

	w.observers.notify(e)
}

// RemoveItem takes one unit off the entry and drops it when nothing is left.
func (w *Wishlist) RemoveItem(ctx context.Context, id string) {
	w.mu.Lock()
	idx := -1
	for i := range w.items {
		if w.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return
	}
	if w.items[idx].Quantity <= 1 {
		w.items = append(w.items[:idx:idx], w.items[idx+1:]...)
	} else {
		w.items[idx].Quantity--
	}
	w.saveLocked(ctx)
	e := w.eventLocked(EventWishlistChanged)
	w.mu.Unlock()

	w.observers.notify(e)
}

func (w *Wishlist) Clear(ctx context.Context) {
	w.mu.Lock()
	w.items = []domain.LineItem{}
	w.saveLocked(ctx)
	e := w.eventLocked(EventWishlistChanged)
	w.mu.Unlock()

	w.observers.notify(e)
}

func (w *Wishlist) Close() {
	w.observers.reset()
}

func (w *Wishlist) saveLocked(ctx context.Context) {
	if err := writeSlot(ctx, w.store, w.opts.key(WishlistSlot), w.items); err != nil {
		w.logger.Printf("wishlist ledger: save items namespace=%s error=%v", w.opts.Namespace, err)
	}
}

func (w *Wishlist) eventLocked(kind EventKind) Event {
	w.seq++
	return Event{Kind: kind, Seq: w.seq, Items: domain.CloneItems(w.items)}
}
