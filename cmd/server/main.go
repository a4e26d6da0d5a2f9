package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Antinowhere/VOXEL-FISH/internal/config"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
	"github.com/Antinowhere/VOXEL-FISH/internal/injector"
	"github.com/Antinowhere/VOXEL-FISH/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "voxelfish.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(2)
	}

	srv, err := injector.InitializeServer(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building server:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, srv); err != nil {
		log.Provide().Error("Server exited", log.Error(err))
		_ = log.Provide().Sync()
		os.Exit(1)
	}
	_ = log.Provide().Sync()
}

func run(ctx context.Context, srv *server.Server) error {
	if err := srv.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Wait)
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(stopCtx); err != nil && !errors.Is(err, server.ErrServerNotRunning) {
			return err
		}
		return nil
	})

	return g.Wait()
}
