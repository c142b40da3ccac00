package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tirestock-platform/api/internal/domain"
)

type Collection string

const (
	CollectionTires        Collection = "tires"
	CollectionTransactions Collection = "transactions"
	CollectionVehicles     Collection = "vehicles"
)

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Notification is one change event from the backing store. It carries no
// row data; subscribers react by refetching.
type Notification struct {
	Collection Collection `json:"collection"`
	Kind       ChangeKind `json:"kind"`
}

// FetchFunc pulls the full current contents of one collection.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// RefetchPolicy produces the snapshot delivered after a change. prev is the
// last delivered snapshot, so incremental strategies are possible; the
// default is FullReload.
type RefetchPolicy[T any] func(ctx context.Context, prev []T) ([]T, error)

func FullReload[T any](fetch FetchFunc[T]) RefetchPolicy[T] {
	return func(ctx context.Context, _ []T) ([]T, error) {
		return fetch(ctx)
	}
}

// Mirror keeps one collection's client-side snapshot current. Subscribers
// get the full collection immediately and again after every change. A
// failed refetch delivers nothing and keeps the previous snapshot; this
// layer has no error channel.
//
// Delivered slices are shared snapshots: consumers must not mutate them.
type Mirror[T any] struct {
	policy RefetchPolicy[T]

	mu       sync.Mutex
	snapshot []T
	subs     map[int]func([]T)
	nextSub  int
}

func NewMirror[T any](policy RefetchPolicy[T]) *Mirror[T] {
	return &Mirror[T]{policy: policy, subs: make(map[int]func([]T))}
}

// Subscribe registers fn and synchronously delivers a fresh snapshot. The
// returned function cancels the subscription; it does not interrupt an
// in-flight refetch.
func (m *Mirror[T]) Subscribe(ctx context.Context, fn func([]T)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	m.Refresh(ctx)

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Refresh refetches the collection and delivers it to every subscriber.
func (m *Mirror[T]) Refresh(ctx context.Context) {
	m.mu.Lock()
	prev := m.snapshot
	m.mu.Unlock()

	snapshot, err := m.policy(ctx, prev)
	if err != nil {
		return
	}

	m.mu.Lock()
	m.snapshot = snapshot
	fns := make([]func([]T), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Snapshot returns the last delivered collection.
func (m *Mirror[T]) Snapshot() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Fetchers wires the hub to the store, one full-collection fetch per
// mirrored collection.
type Fetchers struct {
	Tires        FetchFunc[domain.Tire]
	Transactions FetchFunc[domain.Transaction]
	Vehicles     FetchFunc[domain.Vehicle]
}

// Hub routes change notifications to the three collection mirrors and fans
// the raw notifications out to watchers (the SSE endpoint). Each
// collection's subscription is independent; no cross-collection ordering is
// guaranteed.
type Hub struct {
	logger       *slog.Logger
	tires        *Mirror[domain.Tire]
	transactions *Mirror[domain.Transaction]
	vehicles     *Mirror[domain.Vehicle]

	mu          sync.Mutex
	watchers    map[int]chan Notification
	nextWatcher int
}

func NewHub(f Fetchers, logger *slog.Logger) *Hub {
	return &Hub{
		logger:       logger,
		tires:        NewMirror(FullReload(f.Tires)),
		transactions: NewMirror(FullReload(f.Transactions)),
		vehicles:     NewMirror(FullReload(f.Vehicles)),
		watchers:     make(map[int]chan Notification),
	}
}

func (h *Hub) Tires() *Mirror[domain.Tire]               { return h.tires }
func (h *Hub) Transactions() *Mirror[domain.Transaction] { return h.transactions }
func (h *Hub) Vehicles() *Mirror[domain.Vehicle]         { return h.vehicles }

// Dispatch handles one notification: the matching mirror refetches and the
// notification is forwarded to watchers. Slow watchers drop events rather
// than block the listener; they recover on the next refetch.
func (h *Hub) Dispatch(ctx context.Context, n Notification) {
	switch n.Collection {
	case CollectionTires:
		h.tires.Refresh(ctx)
	case CollectionTransactions:
		h.transactions.Refresh(ctx)
	case CollectionVehicles:
		h.vehicles.Refresh(ctx)
	default:
		h.logger.Warn("unknown_change_collection", "collection", string(n.Collection))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.watchers {
		select {
		case ch <- n:
		default:
		}
	}
}

// RefreshAll refetches every mirror. Called after bulk operations and after
// the listener reconnects, when notifications may have been missed.
func (h *Hub) RefreshAll(ctx context.Context) {
	h.tires.Refresh(ctx)
	h.transactions.Refresh(ctx)
	h.vehicles.Refresh(ctx)
}

// Watch returns a channel of raw notifications and a cancel function.
func (h *Hub) Watch() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)

	h.mu.Lock()
	id := h.nextWatcher
	h.nextWatcher++
	h.watchers[id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.watchers, id)
		h.mu.Unlock()
	}
}
