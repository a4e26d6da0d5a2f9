package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is required by the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("%T does not support hijacking", r.ResponseWriter)
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func withRequestLog(logger log.Log, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("Request served",
			log.String("method", r.Method),
			log.String("path", r.URL.Path),
			log.Int("status", rec.status),
			log.Duration("elapsed", time.Since(start)))
	})
}

// withAltSvc advertises the HTTP/3 endpoint on every response once it is up.
func (s *Server) withAltSvc(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.h3 != nil && r.ProtoMajor < 3 {
			if err := s.h3.SetQUICHeaders(w.Header()); err != nil {
				s.logger.Debug("Cannot set Alt-Svc", log.Error(err))
			}
		}
		next.ServeHTTP(w, r)
	})
}
