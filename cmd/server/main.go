package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockyard.gg/internal/config"
	"blockyard.gg/internal/deltalog"
	"blockyard.gg/internal/game"
	"blockyard.gg/internal/protocol"
	"blockyard.gg/internal/transport/ws"
)

func main() {
	var (
		addr        = flag.String("addr", "", "listen address (overrides config)")
		configPath  = flag.String("config", "", "path to config yaml (optional)")
		mode        = flag.String("connection_mode", "", "authentication mode: online|offline|bungeecord|velocity (overrides config)")
		secret      = flag.String("secret", "", "velocity shared secret (overrides config)")
		preventProx = flag.Bool("prevent_proxy_connections", false, "in online mode, validate the client's IP address upstream")
		dataDir     = flag.String("data", "", "runtime data directory (overrides config)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *mode != "" {
		cfg.ConnectionMode = config.ConnectionMode(*mode)
	}
	if *secret != "" {
		cfg.VelocitySecret = *secret
	}
	if *preventProx {
		cfg.PreventProxyConnections = true
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("%v", err)
	}

	schemas, err := protocol.NewValidator()
	if err != nil {
		logger.Fatalf("compile schemas: %v", err)
	}

	g, err := game.New(game.Config{
		ChunkRadius:   cfg.World.ChunkRadius,
		SurfaceRadius: cfg.World.SurfaceRadius,
		GroundY:       cfg.World.GroundY,
		TickRateHz:    cfg.World.TickRateHz,
	}, logger)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	deltaLog := deltalog.New(cfg.DataDir)
	defer deltaLog.Close()
	g.SetDeltaLogger(deltaLog)

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := g.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := g.MetricsSnapshot()

		fmt.Fprintf(rw, "# HELP blockyard_world_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE blockyard_world_tick gauge\n")
		fmt.Fprintf(rw, "blockyard_world_tick %d\n", m.Tick)

		fmt.Fprintf(rw, "# HELP blockyard_sessions Current number of connected sessions.\n")
		fmt.Fprintf(rw, "# TYPE blockyard_sessions gauge\n")
		fmt.Fprintf(rw, "blockyard_sessions %d\n", m.Sessions)

		fmt.Fprintf(rw, "# HELP blockyard_loaded_chunks Loaded chunk count.\n")
		fmt.Fprintf(rw, "# TYPE blockyard_loaded_chunks gauge\n")
		fmt.Fprintf(rw, "blockyard_loaded_chunks %d\n", m.LoadedChunks)

		fmt.Fprintf(rw, "# HELP blockyard_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE blockyard_step_ms gauge\n")
		fmt.Fprintf(rw, "blockyard_step_ms %.3f\n", m.StepMS)
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(g, cfg, schemas, logger).Handler())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (connection_mode=%s)", cfg.ListenAddr, cfg.ConnectionMode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
