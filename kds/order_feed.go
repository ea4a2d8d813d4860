package kds

import (
	"sort"
	"sync"

	"github.com/menudigital/backend/models"
)

// OrderEventType distinguishes change-feed events applied to the feed.
type OrderEventType string

const (
	OrderInserted OrderEventType = "inserted"
	OrderUpdated  OrderEventType = "updated"
)

type OrderEvent struct {
	Type  OrderEventType
	Order models.Order
}

// Feed is the kitchen's read-through cache of active orders for one
// restaurant: an initial snapshot ordered oldest-first, then a pure
// reduction over insert/update events applied in arrival order. The
// database remains the source of truth; the feed is a best-effort mirror.
type Feed struct {
	mu     sync.Mutex
	orders []models.Order
}

// NewFeed seeds the feed from a snapshot of non-terminal orders. The
// snapshot is sorted by creation time ascending so the oldest ticket is
// always first (FIFO kitchen queue).
func NewFeed(snapshot []models.Order) *Feed {
	orders := make([]models.Order, 0, len(snapshot))
	for _, o := range snapshot {
		if !models.IsTerminalStatus(o.Status) {
			orders = append(orders, o)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return &Feed{orders: orders}
}

// Apply folds one event into the feed. Inserts are admitted only for the
// two "new order" statuses; anything else (e.g. pending_payment awaiting
// its gateway notification) is ignored until an update brings it in.
// Updates replace the cached order in place, remove it when it reaches a
// terminal status, or append it when it newly becomes visible.
func (f *Feed) Apply(ev OrderEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch ev.Type {
	case OrderInserted:
		if !models.AdmitsToKitchen(ev.Order.Status) {
			return
		}
		if f.find(ev.Order.ID) >= 0 {
			return
		}
		f.orders = append(f.orders, ev.Order)

	case OrderUpdated:
		i := f.find(ev.Order.ID)
		if models.IsTerminalStatus(ev.Order.Status) {
			if i >= 0 {
				f.orders = append(f.orders[:i], f.orders[i+1:]...)
			}
			return
		}
		if i >= 0 {
			f.orders[i] = ev.Order
			return
		}
		// First sighting, e.g. pending_payment -> paid.
		if models.AdmitsToKitchen(ev.Order.Status) || ev.Order.Status == models.OrderStatusCooking || ev.Order.Status == models.OrderStatusReady {
			f.orders = append(f.orders, ev.Order)
		}
	}
}

// Snapshot returns the active orders, oldest first.
func (f *Feed) Snapshot() []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, len(f.orders))
	copy(out, f.orders)
	return out
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// find returns the index of the order or -1. Callers hold the lock.
func (f *Feed) find(id uint) int {
	for i, o := range f.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// SnapshotFunc loads the active orders of a restaurant from the store of
// record, oldest first.
type SnapshotFunc func(restaurantID string) ([]models.Order, error)

// Registry owns one Feed per restaurant, created lazily from a snapshot on
// first use and kept current by dispatched change events.
type Registry struct {
	mu       sync.Mutex
	feeds    map[string]*Feed
	snapshot SnapshotFunc
}

func NewRegistry(snapshot SnapshotFunc) *Registry {
	return &Registry{feeds: make(map[string]*Feed), snapshot: snapshot}
}

// Feed returns the restaurant's feed, loading the initial snapshot if this
// is the first access.
func (r *Registry) Feed(restaurantID string) (*Feed, error) {
	r.mu.Lock()
	if f, ok := r.feeds[restaurantID]; ok {
		r.mu.Unlock()
		return f, nil
	}
	r.mu.Unlock()

	// Snapshot outside the lock; the DB call can be slow.
	orders, err := r.snapshot(restaurantID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.feeds[restaurantID]; ok {
		return f, nil
	}
	f := NewFeed(orders)
	r.feeds[restaurantID] = f
	return f, nil
}

// Dispatch applies an event to the restaurant's feed if one is live. Feeds
// that were never requested are not materialized just to receive events;
// they will snapshot fresh on first use.
func (r *Registry) Dispatch(ev OrderEvent) {
	r.mu.Lock()
	f, ok := r.feeds[ev.Order.RestaurantID]
	r.mu.Unlock()
	if ok {
		f.Apply(ev)
	}
}
