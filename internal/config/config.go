package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/world"
)

// EnvPort overrides Server.Port when set.
const EnvPort = "PORT"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full server configuration, usually read from YAML.
type Config struct {
	Server ServerConfig `yaml:"server"`
	HTTP3  HTTP3Config  `yaml:"http3"`
	Log    LogConfig    `yaml:"log"`
	World  WorldConfig  `yaml:"world"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	PublicDir string `yaml:"public_dir"`
	Index     string `yaml:"index"`
	// SendBuffer is the number of frames queued per session before frames
	// are dropped for a slow client.
	SendBuffer int `yaml:"send_buffer"`
}

// HTTP3Config enables a QUIC listener next to the TCP one on the same port.
type HTTP3Config struct {
	Enabled    bool   `yaml:"enabled"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	SelfSigned bool   `yaml:"self_signed"`
}

type LogConfig struct {
	Level log.Level `yaml:"level"`
}

type WorldConfig struct {
	Sharks             int             `yaml:"sharks"`
	SmallFish          int             `yaml:"small_fish"`
	TickRate           int             `yaml:"tick_rate"`
	Seed               int64           `yaml:"seed"`
	Drift              world.DriftMode `yaml:"drift"`
	ProximityThreshold float64         `yaml:"proximity_threshold"`
	PointerScaleX      float64         `yaml:"pointer_scale_x"`
	PointerScaleY      float64         `yaml:"pointer_scale_y"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:       3000,
			PublicDir:  "public",
			Index:      "index.html",
			SendBuffer: 8,
		},
		Log: LogConfig{Level: log.LevelInfo},
		World: WorldConfig{
			Sharks:             world.DefaultSharks,
			SmallFish:          world.DefaultSmallFish,
			TickRate:           60,
			Drift:              world.DriftAccumulate,
			ProximityThreshold: world.DefaultProximityThreshold,
			PointerScaleX:      world.DefaultPointerScaleX,
			PointerScaleY:      world.DefaultPointerScaleY,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides. An
// empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("open config %s: %w", path, err)
		default:
			defer f.Close()
			if err = Decode(f, &cfg); err != nil {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode merges YAML from r into cfg. Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv applies environment overrides through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	raw, ok := lookup(EnvPort)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a port", ErrInvalidConfig, EnvPort, raw)
	}
	c.Server.Port = port
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.PublicDir == "" {
		errs = append(errs, errors.New("server.public_dir is empty"))
	}
	if c.Server.Index == "" {
		errs = append(errs, errors.New("server.index is empty"))
	}
	if c.Server.SendBuffer <= 0 {
		errs = append(errs, fmt.Errorf("server.send_buffer must be positive, got %d", c.Server.SendBuffer))
	}
	if c.HTTP3.Enabled && !c.HTTP3.SelfSigned && (c.HTTP3.CertFile == "" || c.HTTP3.KeyFile == "") {
		errs = append(errs, errors.New("http3 needs cert_file and key_file, or self_signed"))
	}
	if c.World.Sharks < 0 || c.World.SmallFish < 0 {
		errs = append(errs, errors.New("world actor counts must not be negative"))
	}
	if c.World.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("world.tick_rate must be positive, got %d", c.World.TickRate))
	}
	if c.World.ProximityThreshold <= 0 {
		errs = append(errs, errors.New("world.proximity_threshold must be positive"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Addr is the host:port the HTTP listeners bind to.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Options converts the world section into world.Options. A zero seed means
// every session gets a different layout.
func (c WorldConfig) Options() world.Options {
	opts := world.DefaultOptions()
	opts.Sharks = c.Sharks
	opts.SmallFish = c.SmallFish
	opts.Seed = c.Seed
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	opts.Drift = c.Drift
	opts.ProximityThreshold = c.ProximityThreshold
	opts.PointerScaleX = c.PointerScaleX
	opts.PointerScaleY = c.PointerScaleY
	return opts
}
