package bus

import "time"

// EventBus is an in-process pub/sub bus used to fan world events out to
// independent consumers.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string within a topic.
// - Synchronous delivery in subscription order, in the publisher's goroutine.
// - Error aggregation: handler errors are joined and returned from publish.
//
// All methods are safe for concurrent use. Handlers must not publish to or
// subscribe on the same bus from inside delivery.
type EventBus interface {
	// CreateTopic declares a topic. Repeat declarations are idempotent.
	CreateTopic(name string, config TopicConfig) error
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	PublishToTopic(topic string, event Event) error

	AddObserver(obs EventBusObserver)
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

// EventHandler is invoked once per delivered event.
type EventHandler func(event Event) error

// Subscription is a registered handler bound to one topic and event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// TopicConfig describes topic-level settings (reserved).
type TopicConfig struct{}

// EventBusObserver is notified about deliveries. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
	Topics            uint64
}
