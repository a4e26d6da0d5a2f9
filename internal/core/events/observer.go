package events

import (
	"time"

	"github.com/Antinowhere/VOXEL-FISH/internal/core/events/bus"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
)

// slowDelivery is how long a synchronous delivery may hold up a world tick
// before it is reported.
const slowDelivery = 5 * time.Millisecond

// DeliveryLogger traces bus deliveries at debug level and warns when
// handlers stall the publishing tick.
type DeliveryLogger struct {
	logger log.Log
}

var _ bus.EventBusObserver = (*DeliveryLogger)(nil)

func NewDeliveryLogger(logger log.Log) *DeliveryLogger {
	return &DeliveryLogger{logger: logger}
}

func (d *DeliveryLogger) OnPublish(string, string, bus.Event) {}

func (d *DeliveryLogger) OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration) {
	fields := []log.Field{
		log.String("topic", topic),
		log.String("event_type", eventType),
		log.Int("handlers", handlers),
		log.Duration("duration", duration),
	}
	if err != nil {
		fields = append(fields, log.Error(err))
	}
	if duration > slowDelivery {
		d.logger.Warn("Slow event delivery", fields...)
		return
	}
	d.logger.Debug("Event delivered", fields...)
}

// LogMetrics writes the bus totals as one info line.
func LogMetrics(b bus.EventBus, logger log.Log) {
	m := b.GetMetrics()
	logger.Info("Event bus totals",
		log.Uint64("published", m.Published),
		log.Uint64("delivered_handlers", m.DeliveredHandlers),
		log.Uint64("errors", m.Errors),
		log.Uint64("subscribers", m.SubscribersActive),
		log.Uint64("topics", m.Topics))
}
