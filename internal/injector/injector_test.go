package injector

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antinowhere/VOXEL-FISH/internal/config"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
)

func TestInitializeServerServesPublicDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("reef"), 0o600))

	cfg := config.Default()
	cfg.Server.PublicDir = dir
	cfg.Log.Level = log.LevelError

	srv, err := InitializeServer(cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/some/route", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reef", rec.Body.String())
}
