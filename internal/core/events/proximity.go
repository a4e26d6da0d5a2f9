// Package events binds world proximity events to the in-process bus.
package events

import (
	"github.com/Antinowhere/VOXEL-FISH/internal/core/events/bus"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/world"
)

const (
	TopicWorld         = "world"
	TypeSharkProximity = "shark.proximity"
)

// NewProximity wraps a world event for the bus. The source is the session
// whose world raised it.
func NewProximity(sessionID string, e world.ProximityEvent) bus.Event {
	return bus.NewEvent(TypeSharkProximity, sessionID, e, nil)
}

// ProximityFrom unwraps an event built by NewProximity.
func ProximityFrom(e bus.Event) (world.ProximityEvent, bool) {
	if e == nil || e.Type() != TypeSharkProximity {
		return world.ProximityEvent{}, false
	}
	p, ok := e.Data().(world.ProximityEvent)
	return p, ok
}

// Publisher returns a world.ProximityHandler that forwards every event to the
// world topic. Handler failures are logged, never returned to the world.
func Publisher(b bus.EventBus, sessionID string, logger log.Log) world.ProximityHandler {
	return func(e world.ProximityEvent) {
		if err := b.PublishToTopic(TopicWorld, NewProximity(sessionID, e)); err != nil {
			logger.Error("Proximity handler failed",
				log.String("session_id", sessionID),
				log.String("shark_id", e.SharkID),
				log.Error(err))
		}
	}
}

// SubscribeLogger installs the diagnostic consumer: one warn line per event.
// A shark lingering near the goldfish repeats the same message every tick, so
// the line bypasses sampling.
func SubscribeLogger(b bus.EventBus, logger log.Log) (bus.Subscription, error) {
	logger = logger.Unsampled()
	return b.SubscribeTopic(TopicWorld, TypeSharkProximity, func(e bus.Event) error {
		p, ok := ProximityFrom(e)
		if !ok {
			return nil
		}
		logger.Warn("Shark attack!",
			log.String("session_id", e.Source()),
			log.String("shark_id", p.SharkID),
			log.Float64("distance", p.Distance),
			log.Uint64("tick", p.Tick))
		return nil
	})
}
