// Package ledger holds the per-session cart and wishlist state together with
// their persisted mirrors.
//
// Every mutation rewrites the whole affected collection to its slot in the
// backing store. Orders are append-only: nothing in this package edits or
// removes an order once it has been written.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"storefront/internal/domain"
)

// Slot names. A non-empty Options.Namespace is prepended as "<namespace>:<slot>".
const (
	CartSlot     = "cart-items"
	OrdersSlot   = "orders"
	WishlistSlot = "wishlist-items"
)

// orderDateLayout is RFC 3339 with millisecond precision; UTC values sort lexically.
const orderDateLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	// ErrCreateOrder is returned when an order could not be durably recorded.
	ErrCreateOrder = errors.New("failed to create order")
	// ErrLoad is returned by Load when the store could not be read. Missing and
	// malformed slots are not errors; they load as empty collections.
	ErrLoad = errors.New("failed to load ledger")
	// ErrInvalidQuantity is returned by UpdateQuantity in strict mode for quantities below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type slotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Options configures a ledger. The zero value is a permissive, un-namespaced
// ledger with UUIDv7 order ids and a discarding logger.
type Options struct {
	Namespace string
	// Strict makes UpdateQuantity report ErrInvalidQuantity instead of ignoring the call.
	Strict bool
	IDs    IDGenerator
	Now    func() time.Time
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.IDs == nil {
		o.IDs = UUIDOrderIDs{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	return o
}

func (o Options) key(slot string) string {
	if o.Namespace == "" {
		return slot
	}
	return o.Namespace + ":" + slot
}

// readSlot decodes a JSON array slot. Missing and malformed data yield an empty
// collection; any other read failure is returned so callers never mistake an
// unreachable store for an empty one.
func readSlot[T any](ctx context.Context, store slotStore, key string, logger *log.Logger, component string) ([]T, error) {
	out := []T{}
	if store == nil {
		return out, nil
	}
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return out, nil
		}
		logger.Printf("%s: load key=%s error=%v", component, key, err)
		return nil, fmt.Errorf("%w: read %s: %w", ErrLoad, key, err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	var decoded []T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		logger.Printf("%s: load key=%s malformed data ignored error=%v", component, key, err)
		return out, nil
	}
	if decoded == nil {
		return out, nil
	}
	return decoded, nil
}

func writeSlot[T any](ctx context.Context, store slotStore, key string, values []T) error {
	if store == nil {
		return nil
	}
	if values == nil {
		values = []T{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw)
}
