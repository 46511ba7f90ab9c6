package usecase

import (
	"sync"
	"time"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/service/directory"
	"github.com/slotcast-dev/slotcast/pkg/service/opsnotify"
	"github.com/slotcast-dev/slotcast/pkg/service/schedule"
)

// UseCases orchestrates the booking system: workspace lifecycle, availability
// planning, broadcast dispatch and inbound reply handling.
type UseCases struct {
	registry   *model.WorkspaceRegistry
	stores     interfaces.StoreFactory
	dirBuilder *directory.Builder
	planner    *schedule.Planner
	gateway    interfaces.Gateway
	replay     interfaces.ReplayCache
	notifier   *opsnotify.Notifier
	now        func() time.Time

	mu         sync.Mutex
	storesByWS map[types.WorkspaceID]interfaces.RecordStore
}

// Option is a functional option for UseCases configuration
type Option func(*UseCases)

// WithGateway sets the outbound messaging gateway.
func WithGateway(gw interfaces.Gateway) Option {
	return func(uc *UseCases) {
		uc.gateway = gw
	}
}

// WithReplayCache sets the inbound message deduplication cache.
func WithReplayCache(cache interfaces.ReplayCache) Option {
	return func(uc *UseCases) {
		uc.replay = cache
	}
}

// WithNotifier sets the operator notification channel.
func WithNotifier(n *opsnotify.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// New creates the use case layer.
func New(registry *model.WorkspaceRegistry, stores interfaces.StoreFactory, dirBuilder *directory.Builder, planner *schedule.Planner, opts ...Option) *UseCases {
	uc := &UseCases{
		registry:   registry,
		stores:     stores,
		dirBuilder: dirBuilder,
		planner:    planner,
		now:        time.Now,
		storesByWS: make(map[types.WorkspaceID]interfaces.RecordStore),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCases) store(id types.WorkspaceID) (interfaces.RecordStore, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	store, ok := uc.storesByWS[id]
	return store, ok
}

func (uc *UseCases) setStore(id types.WorkspaceID, store interfaces.RecordStore) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.storesByWS[id] = store
}

func (uc *UseCases) removeStore(id types.WorkspaceID) (interfaces.RecordStore, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	store, ok := uc.storesByWS[id]
	delete(uc.storesByWS, id)
	return store, ok
}
