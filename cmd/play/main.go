package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"hideseek-arcade/internal/audio"
	"hideseek-arcade/internal/config"
	"hideseek-arcade/internal/game"
	"hideseek-arcade/internal/store"
	"hideseek-arcade/internal/term"
)

func main() {
	user := flag.String("user", config.GetEnv("HIDESEEK_USER", config.GetEnv("USER", "player")), "Username the run is scored under")
	dbPath := flag.String("db", config.GetEnv("HIDESEEK_DB", "hideseek.db"), "SQLite database path")
	soundDir := flag.String("sounds", config.GetEnv("HIDESEEK_SOUNDS", ""), "Directory of cue WAV files (default: synthesized tones)")
	volume := flag.Int("volume", config.GetEnvInt("HIDESEEK_VOLUME", 80), "Volume 0-100")
	mute := flag.Bool("mute", config.GetEnvBool("HIDESEEK_MUTE", false), "Disable sound")
	straight := flag.Bool("straight", config.GetEnvBool("HIDESEEK_STRAIGHT", false), "Straight up/down shots instead of aimed ones")
	logPath := flag.String("log", config.GetEnv("HIDESEEK_LOG", "hideseek.log"), "Log file; the terminal is taken by the game")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	db, err := store.OpenDB(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.RegisterUser(ctx, *user); err != nil {
		fmt.Fprintf(os.Stderr, "register %s: %v\n", *user, err)
		os.Exit(1)
	}

	player := audio.New(audio.Config{Dir: *soundDir, Volume: float64(min(max(*volume, 0), 100)) / 100, Muted: *mute})
	if !*mute {
		if err := player.Init(); err != nil {
			// Non-fatal, game can run without sound
			log.Printf("Audio initialization failed: %v", err)
		}
	}
	defer player.Close()

	cfg := game.DefaultConfig()
	cfg.StraightShots = *straight

	newRun := func(ctx context.Context, l game.Listener) (*game.Session, error) {
		initial := store.LoadStats(ctx, db, *user)
		return game.NewSession(cfg, *user, initial, game.Ports{
			Listener: l,
			Audio:    player,
			Stats:    db,
		}), nil
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	app, err := term.New(term.Options{
		Screen:       screen,
		NewRun:       newRun,
		Leaderboard:  db.TopStats,
		Saver:        db,
		ReleaseAfter: 150 * time.Millisecond,
	})
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		log.Printf("play: %v", err)
	}
}
