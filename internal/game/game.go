// Package game runs the interaction core: the tick pipeline that applies
// player-intent events to the shared block grid and the per-client
// sessions.
package game

import (
	"fmt"
	"log"
	"sync/atomic"

	"blockyard.gg/internal/game/block"
	"blockyard.gg/internal/game/event"
	"blockyard.gg/internal/game/session"
	"blockyard.gg/internal/game/world"
	"blockyard.gg/internal/protocol"
)

const greeting = "Welcome to Blockyard! Build something cool."

// Config fixes the bootstrap terrain and the tick rate.
type Config struct {
	ChunkRadius   int
	SurfaceRadius int
	GroundY       int
	TickRateHz    int
}

func (c *Config) applyDefaults() {
	if c.ChunkRadius <= 0 {
		c.ChunkRadius = 5
	}
	if c.SurfaceRadius <= 0 {
		c.SurfaceRadius = 25
	}
	if c.GroundY <= 0 {
		c.GroundY = 64
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
}

// Delta is one applied grid mutation, reported to the protocol layer for
// broadcast.
type Delta struct {
	Pos   world.Vec3i
	State block.State
}

// DeltaLogger receives the deltas applied during a tick.
type DeltaLogger interface {
	WriteTick(tick uint64, blocks []protocol.BlockDelta) error
}

// JoinRequest attaches a freshly accepted session. The response is sent
// after the lifecycle handler has run, so the welcome reflects the
// attached state.
type JoinRequest struct {
	Session *session.Session
	Resp    chan protocol.WelcomeMsg
}

// Game owns the world grid and the session store. All state is mutated
// only inside Step, which the Run loop invokes once per tick.
type Game struct {
	cfg Config
	log *log.Logger

	registry *world.Registry
	world    *world.World
	sessions *session.Store

	tick   atomic.Uint64
	stepMS atomic.Int64 // last step duration, microseconds

	join  chan JoinRequest
	leave chan string
	inbox chan event.Gameplay
	stop  chan struct{}

	deltaLog DeltaLogger
}

// New bootstraps the grid and validates the single-world invariant. The
// bootstrap runs exactly once, before any client can connect.
func New(cfg Config, logger *log.Logger) (*Game, error) {
	cfg.applyDefaults()
	if cfg.GroundY+1 >= world.ChunkHeight {
		return nil, fmt.Errorf("game: ground_y %d leaves no room to spawn (height %d)", cfg.GroundY, world.ChunkHeight)
	}

	registry := world.NewRegistry()
	w := world.New()
	world.Bootstrap(w, world.BootstrapConfig{
		ChunkRadius:   cfg.ChunkRadius,
		SurfaceRadius: cfg.SurfaceRadius,
		GroundY:       cfg.GroundY,
		Ground:        block.GrassBlock,
	})
	registry.Add(w)

	active, err := registry.Active()
	if err != nil {
		return nil, err
	}

	return &Game{
		cfg:      cfg,
		log:      logger,
		registry: registry,
		world:    active,
		sessions: session.NewStore(),
		join:     make(chan JoinRequest, 16),
		leave:    make(chan string, 16),
		inbox:    make(chan event.Gameplay, 256),
		stop:     make(chan struct{}),
	}, nil
}

// Join is the transport's attach channel.
func (g *Game) Join() chan<- JoinRequest { return g.join }

// Leave is the transport's detach channel.
func (g *Game) Leave() chan<- string { return g.leave }

// Inbox receives gameplay intents from the transport.
func (g *Game) Inbox() chan<- event.Gameplay { return g.inbox }

// SetDeltaLogger installs the per-tick delta sink. Call before Run.
func (g *Game) SetDeltaLogger(l DeltaLogger) { g.deltaLog = l }

// World exposes the grid for tests and the transport's read paths.
func (g *Game) World() *world.World { return g.world }

// Sessions exposes the session store for tests.
func (g *Game) Sessions() *session.Store { return g.sessions }

// CurrentTick returns the tick counter.
func (g *Game) CurrentTick() uint64 { return g.tick.Load() }

// Config returns the effective configuration.
func (g *Game) Config() Config { return g.cfg }

// Metrics is a point-in-time runtime snapshot for the metrics endpoint.
type Metrics struct {
	Tick         uint64
	Sessions     int
	LoadedChunks int
	StepMS       float64
}

func (g *Game) MetricsSnapshot() Metrics {
	return Metrics{
		Tick:         g.tick.Load(),
		Sessions:     g.sessions.Len(),
		LoadedChunks: g.world.LoadedChunks(),
		StepMS:       float64(g.stepMS.Load()) / 1000.0,
	}
}

func (g *Game) welcomeFor(s *session.Session) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       s.ID,
		GameMode:        s.Mode.String(),
		Spawn:           [3]float64{s.Pos.X, s.Pos.Y, s.Pos.Z},
		WorldParams: protocol.WorldParams{
			TickRateHz:    g.cfg.TickRateHz,
			ChunkSize:     [3]int{world.ChunkSize, world.ChunkHeight, world.ChunkSize},
			ChunkRadius:   g.cfg.ChunkRadius,
			SurfaceRadius: g.cfg.SurfaceRadius,
			GroundY:       g.cfg.GroundY,
		},
	}
}
