package ecs

import (
	"github.com/phanxgames/cadence"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LifecycleEventType is the Donburi event type for cadence lifecycle events.
var LifecycleEventType = events.NewEventType[cadence.LifecycleEvent]()

type donburiStore struct {
	world donburi.World
	// skipUpdates drops per-frame EventUpdate events.
	skipUpdates bool
}

// StoreOption configures a Donburi store.
type StoreOption func(*donburiStore)

// WithoutUpdates drops per-frame progress events, forwarding only state
// changes and stage boundaries.
func WithoutUpdates() StoreOption {
	return func(s *donburiStore) { s.skipUpdates = true }
}

// NewDonburiStore creates an EventStore backed by a Donburi world.
// Lifecycle events are published to LifecycleEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World, opts ...StoreOption) cadence.EventStore {
	s := &donburiStore{world: world}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *donburiStore) EmitEvent(event cadence.LifecycleEvent) {
	if s.skipUpdates && event.Type == cadence.EventUpdate {
		return
	}
	LifecycleEventType.Publish(s.world, event)
}
