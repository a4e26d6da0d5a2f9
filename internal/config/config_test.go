package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/world"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, "public", cfg.Server.PublicDir)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg := Default()
	err := Decode(strings.NewReader(`
server:
  port: 8080
  host: 127.0.0.1
log:
  level: debug
world:
  sharks: 5
  drift: oscillate
  seed: 11
`), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, "index.html", cfg.Server.Index, "untouched keys keep defaults")
	assert.Equal(t, log.LevelDebug, cfg.Log.Level)
	assert.Equal(t, 5, cfg.World.Sharks)
	assert.Equal(t, 20, cfg.World.SmallFish)
	assert.Equal(t, world.DriftOscillate, cfg.World.Drift)

	opts := cfg.World.Options()
	assert.Equal(t, int64(11), opts.Seed)
	assert.Equal(t, world.DriftOscillate, opts.Drift)
	assert.Equal(t, 15.0, opts.PointerScaleX)
}

func TestDecodeRejectsUnknownKeysAndValues(t *testing.T) {
	cfg := Default()
	assert.Error(t, Decode(strings.NewReader("server:\n  prot: 1\n"), &cfg))

	cfg = Default()
	assert.Error(t, Decode(strings.NewReader("world:\n  drift: teleport\n"), &cfg))

	cfg = Default()
	assert.Error(t, Decode(strings.NewReader("log:\n  level: loud\n"), &cfg))
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg := Default()
	require.NoError(t, Decode(strings.NewReader(""), &cfg))
	assert.Equal(t, Default(), cfg)
}

func TestPortEnvOverride(t *testing.T) {
	env := map[string]string{EnvPort: "4123"}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 4123, cfg.Server.Port)

	env[EnvPort] = "http"
	assert.ErrorIs(t, cfg.ApplyEnv(lookup), ErrInvalidConfig)

	delete(env, EnvPort)
	cfg = Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv(EnvPort, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "voxelfish.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\nworld:\n  tick_rate: 30\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 30, cfg.World.TickRate)

	t.Setenv(EnvPort, "7000")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvPort, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port":        func(c *Config) { c.Server.Port = 70000 },
		"public dir":  func(c *Config) { c.Server.PublicDir = "" },
		"tick rate":   func(c *Config) { c.World.TickRate = 0 },
		"counts":      func(c *Config) { c.World.Sharks = -1 },
		"threshold":   func(c *Config) { c.World.ProximityThreshold = 0 },
		"send buffer": func(c *Config) { c.Server.SendBuffer = 0 },
		"http3 certs": func(c *Config) { c.HTTP3.Enabled = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	cfg := Default()
	cfg.HTTP3.Enabled = true
	cfg.HTTP3.SelfSigned = true
	assert.NoError(t, cfg.Validate())
}
