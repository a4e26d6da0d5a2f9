package server

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
)

// StaticHandler serves files from a public root. Any path that does not name
// a regular file gets the index document instead, so client-side routes
// resolve to the single-page app.
type StaticHandler struct {
	assets fs.FS
	index  string
	logger log.Log

	mu    sync.RWMutex
	etags map[string]etagEntry
}

type etagEntry struct {
	modTime time.Time
	size    int64
	etag    string
}

func NewStaticHandler(assets fs.FS, index string, logger log.Log) *StaticHandler {
	if logger == nil {
		logger = log.Provide()
	}
	return &StaticHandler{
		assets: assets,
		index:  strings.TrimPrefix(path.Clean("/"+index), "/"),
		logger: logger,
		etags:  make(map[string]etagEntry),
	}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = h.index
	}

	if !h.serveFile(w, r, name) && !h.serveFile(w, r, path.Join(name, h.index)) {
		if !h.serveFile(w, r, h.index) {
			h.logger.Error("Cannot serve index document",
				log.String("index", h.index),
				log.Error(ErrIndexMissing))
			http.NotFound(w, r)
		}
	}
}

// serveFile writes name if it is a regular file and reports whether it did.
func (h *StaticHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}

	info, err := fs.Stat(h.assets, name)
	if err != nil || !info.Mode().IsRegular() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("Stat failed", log.String("path", name), log.Error(err))
		}
		return false
	}

	data, err := fs.ReadFile(h.assets, name)
	if err != nil {
		h.logger.Warn("Read failed", log.String("path", name), log.Error(err))
		return false
	}

	w.Header().Set("ETag", h.etag(name, info, data))
	http.ServeContent(w, r, info.Name(), info.ModTime(), bytes.NewReader(data))
	return true
}

func (h *StaticHandler) etag(name string, info fs.FileInfo, data []byte) string {
	h.mu.RLock()
	entry, ok := h.etags[name]
	h.mu.RUnlock()
	if ok && entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		return entry.etag
	}

	entry = etagEntry{
		modTime: info.ModTime(),
		size:    info.Size(),
		etag:    fmt.Sprintf(`"%016x"`, xxhash.Sum64(data)),
	}
	h.mu.Lock()
	h.etags[name] = entry
	h.mu.Unlock()
	return entry.etag
}
