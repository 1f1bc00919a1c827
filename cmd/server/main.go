package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"hideseek-arcade/internal/config"
	"hideseek-arcade/internal/game"
	"hideseek-arcade/internal/server"
	"hideseek-arcade/internal/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	addr := flag.String("addr", config.GetEnv("HIDESEEK_ADDR", ":8080"), "HTTP listen address")
	dbPath := flag.String("db", config.GetEnv("HIDESEEK_DB", "hideseek.db"), "SQLite database path")
	webDir := flag.String("web", config.GetEnv("HIDESEEK_WEB", ""), "Path to browser client directory (default: ../web)")
	tickMs := flag.Int("tick", config.GetEnvInt("HIDESEEK_TICK_MS", 16), "Simulation tick in milliseconds")
	straight := flag.Bool("straight", config.GetEnvBool("HIDESEEK_STRAIGHT", false), "Straight up/down shots instead of aimed ones")
	flag.Parse()

	if *webDir == "" {
		exe, _ := os.Executable()
		*webDir = filepath.Join(filepath.Dir(exe), "..", "web")
		// Fallback for development
		if _, err := os.Stat(*webDir); os.IsNotExist(err) {
			*webDir = "../web"
		}
		// If still doesn't exist, serve the API only
		if _, err := os.Stat(*webDir); os.IsNotExist(err) {
			*webDir = ""
		}
	}

	db, err := store.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	analytics := store.NewAnalytics(db)
	defer analytics.Stop()

	cfg := game.DefaultConfig()
	cfg.TickInterval = time.Duration(max(*tickMs, 1)) * time.Millisecond
	cfg.StraightShots = *straight

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(ctx, cfg, db, analytics)
	srv := &http.Server{Addr: *addr, Handler: server.SetupRoutes(hub, *webDir)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(ctx)
	})
	g.Go(func() error {
		log.Printf("Server starting on %s", *addr)
		if *webDir != "" {
			log.Printf("Serving client files from %s", *webDir)
		}
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Printf("Shutting down with %d sessions...", hub.Sessions().Count())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server: %v", err)
	}
}
