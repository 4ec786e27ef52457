package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/scribeflow/backend/internal/config"
	"github.com/scribeflow/backend/internal/demo"
	"github.com/scribeflow/backend/internal/frontend"
	"github.com/scribeflow/backend/internal/gamification"
	"github.com/scribeflow/backend/internal/ws"
)

func main() {
	demoMode := flag.Bool("demo", false, "Feed the engine synthetic sessions and feature events")
	devMode := flag.Bool("dev", false, "Development mode (serve overlay from filesystem)")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	stateDir := flag.String("state-dir", "", "Override gamification state directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *stateDir != "" {
		cfg.State.Dir = *stateDir
	}

	store := gamification.NewStore(cfg.State.Dir)
	engine := gamification.NewEngine(store)

	broadcaster := ws.NewBroadcaster(engine)
	engine.OnProgress(broadcaster.Progress)
	engine.OnAchievement(broadcaster.AchievementUnlocked)

	frontendDir := ""
	if *devMode {
		exe, _ := os.Executable()
		frontendDir = filepath.Join(filepath.Dir(exe), "..", "..", "frontend")
		// If running with go run, the exe path is in a temp dir, use CWD instead
		if _, err := os.Stat(frontendDir); os.IsNotExist(err) {
			cwd, _ := os.Getwd()
			frontendDir = filepath.Join(cwd, "..", "frontend")
		}
	}

	// Embedded overlay handler: when built with -tags embed, serves from binary.
	// Otherwise falls back to serving from the filesystem.
	var embeddedHandler http.Handler
	if !*devMode {
		embeddedHandler = frontend.Handler()
		if embeddedHandler == nil {
			cwd, _ := os.Getwd()
			fallback := filepath.Join(cwd, "..", "frontend")
			if _, err := os.Stat(fallback); err == nil {
				log.Printf("No embedded overlay, falling back to: %s", fallback)
				embeddedHandler = http.FileServer(http.Dir(fallback))
			}
		}
	}

	server := ws.NewServer(engine, broadcaster, frontendDir, *devMode, embeddedHandler, cfg.AllowedOrigins, cfg.AuthToken)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *demoMode {
		log.Println("Starting in demo mode")
		gen := demo.NewGenerator(engine)
		go gen.Run(ctx, cfg.Demo.Interval)
	}

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		os.Exit(0)
	}()

	if err := ws.ListenAndServe(cfg.Server.Host, cfg.Server.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
