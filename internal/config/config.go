// Package config resolves the static startup configuration: listen
// address, authentication mode, and the world bootstrap parameters.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConnectionMode selects how the gateway authenticates clients. It
// affects the protocol layer only, never core semantics.
type ConnectionMode string

const (
	ModeOnline     ConnectionMode = "online"
	ModeOffline    ConnectionMode = "offline"
	ModeBungeeCord ConnectionMode = "bungeecord"
	ModeVelocity   ConnectionMode = "velocity"
)

type Config struct {
	ListenAddr              string         `yaml:"listen_addr"`
	ConnectionMode          ConnectionMode `yaml:"connection_mode"`
	VelocitySecret          string         `yaml:"velocity_secret"`
	PreventProxyConnections bool           `yaml:"prevent_proxy_connections"`
	DataDir                 string         `yaml:"data_dir"`

	World World `yaml:"world"`
}

type World struct {
	ChunkRadius   int `yaml:"chunk_radius"`
	SurfaceRadius int `yaml:"surface_radius"`
	GroundY       int `yaml:"ground_y"`
	TickRateHz    int `yaml:"tick_rate_hz"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":25565"
	}
	if c.ConnectionMode == "" {
		c.ConnectionMode = ModeOnline
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.World.ChunkRadius <= 0 {
		c.World.ChunkRadius = 5
	}
	if c.World.SurfaceRadius <= 0 {
		c.World.SurfaceRadius = 25
	}
	if c.World.GroundY <= 0 {
		c.World.GroundY = 64
	}
	if c.World.TickRateHz <= 0 {
		c.World.TickRateHz = 20
	}
}

// Validate rejects unknown modes and a velocity mode without its shared
// secret.
func (c *Config) Validate() error {
	switch c.ConnectionMode {
	case ModeOnline, ModeOffline, ModeBungeeCord:
	case ModeVelocity:
		if c.VelocitySecret == "" {
			return fmt.Errorf("config: velocity connection mode requires velocity_secret")
		}
	default:
		return fmt.Errorf("config: unknown connection_mode %q", c.ConnectionMode)
	}
	return nil
}

// Load reads a yaml config file, applies defaults and validates.
func Load(path string) (Config, error) {
	var c Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}
