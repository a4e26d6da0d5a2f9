package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go/http3"
	"golang.org/x/sync/errgroup"

	"github.com/Antinowhere/VOXEL-FISH/internal/config"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/events"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/events/bus"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
)

const (
	wsPath    = "/ws"
	scenePath = "/api/scene"
)

// Server serves the browser client and runs one world per websocket session.
type Server struct {
	config config.Config
	logger log.Log
	bus    bus.EventBus
	assets fs.FS

	handler http.Handler
	http    *http.Server
	h3      *http3.Server
	addr    net.Addr

	// Session management
	sessions     sync.Map // map[string]*Session
	sessionCount atomic.Int64
	sessionGroup sync.WaitGroup

	// Sessions run under baseCtx. Each Start gets a fresh one.
	baseMu     sync.Mutex
	baseCtx    context.Context
	cancelBase context.CancelFunc
	group      *errgroup.Group

	// Server state
	running atomic.Bool
	closed  atomic.Bool
}

// NewServer wires routes over assets. Nothing is bound until Start.
func NewServer(cfg config.Config, logger log.Log, b bus.EventBus, assets fs.FS) *Server {
	if logger == nil {
		logger = log.Provide()
	}

	s := &Server{
		config: cfg,
		logger: logger.With(log.String("component", "server")),
		bus:    b,
		assets: assets,
	}
	s.resetBase()
	s.handler = s.routes()

	s.logger.Info("Server created",
		log.String("listen_addr", cfg.Server.Addr()),
		log.String("public_dir", cfg.Server.PublicDir),
		log.Bool("http3", cfg.HTTP3.Enabled))

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+wsPath, s.handleWebSocket)
	mux.Handle("GET "+scenePath, newSceneHandler(s.logger))
	mux.Handle("/", NewStaticHandler(s.assets, s.config.Server.Index, s.logger))
	return s.withAltSvc(withRequestLog(s.logger, mux))
}

// resetBase replaces the session context and returns its cancel func.
func (s *Server) resetBase() context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	s.baseMu.Lock()
	previous := s.cancelBase
	s.baseCtx, s.cancelBase = ctx, cancel
	s.baseMu.Unlock()
	if previous != nil {
		previous()
	}
	return cancel
}

func (s *Server) sessionContext() context.Context {
	s.baseMu.Lock()
	defer s.baseMu.Unlock()
	return s.baseCtx
}

func (s *Server) endSessions() {
	s.baseMu.Lock()
	cancel := s.cancelBase
	s.baseMu.Unlock()
	cancel()
}

// Handler exposes the route table, mostly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Start binds the listeners and begins serving in the background. Bind
// failures are returned here; later serve failures surface from Wait.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.addr = ln.Addr()

	s.group = new(errgroup.Group)
	// A previous Stop cancelled the old session context.
	cancel := s.resetBase()
	// Sessions end when the caller's context does, even before Stop.
	context.AfterFunc(ctx, cancel)

	s.http = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.config.HTTP3.Enabled {
		if err = s.startHTTP3(ln.Addr()); err != nil {
			_ = ln.Close()
			s.running.Store(false)
			return err
		}
	}

	s.group.Go(func() error {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
			return err
		}
		return nil
	})

	s.logger.Info("Server listening", log.String("addr", s.addr.String()))

	return nil
}

func (s *Server) startHTTP3(tcpAddr net.Addr) error {
	tlsConf, err := s.tlsConfig()
	if err != nil {
		return err
	}

	conn, err := net.ListenPacket("udp", tcpAddr.String())
	if err != nil {
		s.logger.Error("Failed to create QUIC listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}

	s.h3 = &http3.Server{
		Handler:   s.handler,
		TLSConfig: http3.ConfigureTLSConfig(tlsConf),
		Port:      tcpAddr.(*net.TCPAddr).Port,
	}

	s.group.Go(func() error {
		if err := s.h3.Serve(conn); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("HTTP/3 server failed", log.Error(err))
			return err
		}
		return nil
	})

	s.logger.Info("HTTP/3 listening", log.String("addr", conn.LocalAddr().String()))
	return nil
}

func (s *Server) tlsConfig() (*tls.Config, error) {
	if s.config.HTTP3.CertFile != "" && s.config.HTTP3.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.config.HTTP3.CertFile, s.config.HTTP3.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS certificate: %w", err)
		}
		return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS13}, nil
	}
	s.logger.Warn("Using a generated self-signed certificate for HTTP/3")
	return selfSignedTLSConfig()
}

// Wait blocks until every listener has stopped and returns the first serve error.
func (s *Server) Wait() error {
	if s.group == nil {
		return ErrServerNotRunning
	}
	return s.group.Wait()
}

// Addr is the bound TCP address, valid after Start.
func (s *Server) Addr() net.Addr { return s.addr }

// Sessions is the number of open websocket sessions.
func (s *Server) Sessions() int64 { return s.sessionCount.Load() }

// Stop closes listeners, ends every session and waits for them to finish or
// for ctx to expire.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server", log.Int64("sessions", s.sessionCount.Load()))

	s.endSessions()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.h3 != nil {
		if err := s.h3.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.sessionGroup.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	if s.bus != nil {
		events.LogMetrics(s.bus, s.logger)
	}
	s.logger.Info("Server stopped")

	return errors.Join(errs...)
}

// Close stops the server if needed and marks it unusable.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info("Closing server")

	if s.running.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}

	s.logger.Info("Server closed")
	return nil
}
