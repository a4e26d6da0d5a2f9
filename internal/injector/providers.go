package injector

import (
	"io/fs"
	"os"

	"github.com/google/wire"

	"github.com/Antinowhere/VOXEL-FISH/internal/config"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/events"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/events/bus"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
	"github.com/Antinowhere/VOXEL-FISH/internal/server"
)

// ServerSet builds a ready-to-start server from a loaded config.
var ServerSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideAssets,
	server.NewServer,
)

func ProvideLogger(cfg config.Config) log.Log {
	return log.New(cfg.Log.Level)
}

// ProvideBus creates the event bus with the diagnostic proximity logger
// already subscribed and deliveries traced.
func ProvideBus(logger log.Log) (bus.EventBus, error) {
	b := bus.New()
	b.AddObserver(events.NewDeliveryLogger(logger.With(log.String("component", "bus"))))
	if err := b.CreateTopic(events.TopicWorld, bus.TopicConfig{}); err != nil {
		return nil, err
	}
	if _, err := events.SubscribeLogger(b, logger.With(log.String("component", "proximity"))); err != nil {
		return nil, err
	}
	return b, nil
}

func ProvideAssets(cfg config.Config) fs.FS {
	return os.DirFS(cfg.Server.PublicDir)
}
