package server

import (
	"encoding/json"
	"net/http"

	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/scene"
)

type sceneHandler struct {
	body []byte
	err  error
}

// newSceneHandler encodes the scene once; it never changes at runtime.
func newSceneHandler(logger log.Log) *sceneHandler {
	body, err := json.Marshal(scene.Default())
	if err != nil {
		logger.Error("Failed to encode scene", log.Error(err))
	}
	return &sceneHandler{body: body, err: err}
}

func (h *sceneHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	if h.err != nil {
		http.Error(w, "scene unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(h.body)
}
