// Package session keeps one cart and one wishlist ledger per browser session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"storefront/internal/ledger"
	"storefront/internal/storage"
)

var (
	ErrInvalidID = errors.New("invalid session id")
	// ErrUnavailable is returned when a session's ledgers could not be read from the store.
	ErrUnavailable = errors.New("session storage unavailable")
)

const defaultLoadTimeout = 5 * time.Second

// Session bundles the ledgers owned by one visitor.
type Session struct {
	ID       string
	Cart     *ledger.Cart
	Wishlist *ledger.Wishlist
}

type Options struct {
	// Store backs both ledgers. Nil keeps every session in memory only.
	Store           storage.Store
	Strict          bool
	PersistWishlist bool
	// IdleTTL is how long an untouched session stays resident. Zero disables sweeping.
	IdleTTL time.Duration
	// OnLoad runs once per resident session after its ledgers have loaded.
	OnLoad []func(*Session)
	// LoadTimeout bounds the shared first load of a session. Zero means five seconds.
	LoadTimeout time.Duration
	Logger *log.Logger
	Now    func() time.Time
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

type Manager struct {
	opts   Options
	logger *log.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
	group    singleflight.Group
}

func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	return &Manager{
		opts:     opts,
		logger:   opts.Logger,
		sessions: make(map[string]*entry),
	}
}

// NewID returns a fresh random session id.
func (m *Manager) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("new session id: %w", err)
	}
	return id.String(), nil
}

// Get returns the resident session for id, loading its ledgers on first use.
// Concurrent first calls for the same id share one load, which is detached from
// the caller's cancellation. A session whose load failed is not kept, and the
// error wraps ErrUnavailable.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	if s := m.touch(id); s != nil {
		return s, nil
	}

	v, err, _ := m.group.Do(id, func() (any, error) {
		if s := m.touch(id); s != nil {
			return s, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.opts.LoadTimeout)
		defer cancel()

		s := m.build(id)
		if err := m.load(loadCtx, s); err != nil {
			s.Cart.Close()
			s.Wishlist.Close()
			m.logger.Printf("session: load id=%s error=%v", id, err)
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		for _, hook := range m.opts.OnLoad {
			hook(s)
		}

		m.mu.Lock()
		m.sessions[id] = &entry{session: s, lastSeen: m.opts.Now()}
		m.mu.Unlock()
		m.logger.Printf("session: loaded id=%s", id)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// End releases the session's observers and drops it from memory. Persisted slots are kept.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.release(id, e)
	return true
}

// endIfIdle ends the session only if it is still idle at now. The check and the
// removal happen under one lock so a session handed out by touch is never torn down.
func (m *Manager) endIfIdle(id string, now time.Time) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok || now.Sub(e.lastSeen) <= m.opts.IdleTTL {
		m.mu.Unlock()
		return false
	}
	delete(m.sessions, id)
	m.mu.Unlock()
	m.release(id, e)
	return true
}

func (m *Manager) release(id string, e *entry) {
	e.session.Cart.Close()
	e.session.Wishlist.Close()
	m.logger.Printf("session: ended id=%s", id)
}

// Forget ends the session and erases its persisted slots.
func (m *Manager) Forget(ctx context.Context, id string) error {
	m.End(id)
	if m.opts.Store == nil {
		return nil
	}
	for _, slot := range []string{ledger.CartSlot, ledger.OrdersSlot, ledger.WishlistSlot} {
		if err := m.opts.Store.Delete(ctx, id+":"+slot); err != nil {
			return fmt.Errorf("forget session %s slot %s: %w", id, slot, err)
		}
	}
	m.logger.Printf("session: forgotten id=%s", id)
	return nil
}

// Sweep ends every session idle for longer than IdleTTL and returns how many were ended.
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	n := 0
	for _, id := range m.idleIDs(now) {
		if m.endIfIdle(id, now) {
			n++
		}
	}
	if n > 0 {
		m.logger.Printf("session: swept count=%d", n)
	}
	return n
}

func (m *Manager) idleIDs(now time.Time) []string {
	var ids []string
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.opts.IdleTTL {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len reports how many sessions are resident.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) touch(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil
	}
	e.lastSeen = m.opts.Now()
	return e.session
}

func (m *Manager) load(ctx context.Context, s *Session) error {
	if err := s.Cart.Load(ctx); err != nil {
		return err
	}
	return s.Wishlist.Load(ctx)
}

func (m *Manager) build(id string) *Session {
	opts := ledger.Options{
		Namespace: id,
		Strict:    m.opts.Strict,
		Logger:    m.logger,
		Now:       m.opts.Now,
	}
	var wishlistStore storage.Store
	if m.opts.PersistWishlist {
		wishlistStore = m.opts.Store
	}
	return &Session{
		ID:       id,
		Cart:     ledger.NewCart(m.opts.Store, opts),
		Wishlist: ledger.NewWishlist(wishlistStore, opts),
	}
}
