package bus

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
	meta    map[string]any
}

func (e simpleEvent) Type() string             { return e.typeStr }
func (e simpleEvent) Source() string           { return e.source }
func (e simpleEvent) Timestamp() time.Time     { return e.ts }
func (e simpleEvent) Data() any                { return e.data }
func (e simpleEvent) Metadata() map[string]any { return e.meta }

// NewEvent creates a basic Event stamped with the current time.
func NewEvent(typ, src string, data any, metadata map[string]any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data, meta: metadata}
}

type subscription struct {
	id        string
	topic     string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }
func (s *subscription) Cancel() error {
	if s.active.CompareAndSwap(true, false) && s.cancel != nil {
		s.cancel()
	}
	return nil
}

type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: topic -> eventType -> subscriptions in registration order
	handlers  map[string]map[string][]*subscription
	topics    map[string]TopicConfig
	metrics   EventBusMetrics
	observers []EventBusObserver
}

// New creates an empty in-memory EventBus.
func New() EventBus {
	return &inMemoryBus{
		handlers: make(map[string]map[string][]*subscription),
		topics:   make(map[string]TopicConfig),
	}
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	if event == nil {
		return ErrNilEvent
	}

	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	subs := append([]*subscription(nil), b.handlers[topic][etype]...)
	observers := append([]EventBusObserver(nil), b.observers...)
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(topic, etype, event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	elapsed := time.Since(start)
	for _, obs := range observers {
		obs.OnDelivered(topic, etype, delivered, all, elapsed)
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(delivered)
	if all != nil {
		b.metrics.Errors++
	}
	b.mu.Unlock()

	return all
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureTopicLocked(topic, TopicConfig{})

	s := &subscription{id: uuid.NewString(), topic: topic, eventType: eventType, handler: handler}
	s.active.Store(true)
	s.cancel = func() { b.remove(s) }

	b.handlers[topic][eventType] = append(b.handlers[topic][eventType], s)
	return s, nil
}

func (b *inMemoryBus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[s.topic][s.eventType]
	for i, candidate := range subs {
		if candidate == s {
			b.handlers[s.topic][s.eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (b *inMemoryBus) CreateTopic(name string, config TopicConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureTopicLocked(name, config)
	return nil
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	if obs == nil {
		return
	}
	b.mu.Lock()
	b.observers = append(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m := b.metrics
	m.Topics = uint64(len(b.topics))
	for _, byType := range b.handlers {
		for _, list := range byType {
			m.SubscribersActive += uint64(len(list))
		}
	}
	return m
}

func (b *inMemoryBus) ensureTopicLocked(topic string, config TopicConfig) {
	if _, ok := b.topics[topic]; !ok {
		b.topics[topic] = config
	}
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[string][]*subscription)
	}
}
