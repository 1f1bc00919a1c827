// Package term is a local terminal frontend for a game session.
// Terminals report key presses but not releases, so a held direction is
// kept active for a short window after its last repeat.
package term

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"hideseek-arcade/internal/game"
)

const (
	defaultRelease  = 150 * time.Millisecond
	releaseTick     = 20 * time.Millisecond
	requestTimeout  = 3 * time.Second
	leaderboardSize = 15
)

type mode int

const (
	modePlay mode = iota
	modePaused
	modeOver
	modeBoard
)

// RunFactory creates a fresh session reporting to l
type RunFactory func(ctx context.Context, l game.Listener) (*game.Session, error)

// Options configures an App
type Options struct {
	Screen       tcell.Screen
	NewRun       RunFactory
	Leaderboard  func(ctx context.Context, limit int) ([]game.Stats, error)
	Saver        game.StatsWriter // stores an unfinished run on quit, optional
	ReleaseAfter time.Duration
}

// overEvent is posted from the clock goroutine when a run ends
type overEvent struct{}

// App draws snapshots and turns keys and clicks into session commands
type App struct {
	screen  tcell.Screen
	newRun  RunFactory
	board   func(ctx context.Context, limit int) ([]game.Stats, error)
	saver   game.StatsWriter
	release time.Duration

	// touched only by the event loop
	sess     *game.Session
	mode     mode
	back     mode
	held     [4]time.Time
	intent   game.Intent
	rows     []game.Stats
	boardErr error
	buttons  tcell.ButtonMask

	mu    sync.Mutex
	last  game.Snapshot
	final game.Stats
	cause game.Cause
}

// New creates an App. The screen must already be initialized.
func New(opts Options) (*App, error) {
	if opts.Screen == nil || opts.NewRun == nil {
		return nil, errors.New("term: screen and run factory are required")
	}
	release := opts.ReleaseAfter
	if release <= 0 {
		release = defaultRelease
	}
	return &App{
		screen:  opts.Screen,
		newRun:  opts.NewRun,
		board:   opts.Leaderboard,
		saver:   opts.Saver,
		release: release,
	}, nil
}

// OnUpdate keeps the latest frame and wakes the event loop to draw it
func (a *App) OnUpdate(s game.Snapshot) {
	a.mu.Lock()
	a.last = s
	a.mu.Unlock()
	a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// OnGameOver records the final stats and wakes the event loop
func (a *App) OnGameOver(final game.Stats, cause game.Cause) {
	a.mu.Lock()
	a.final = final
	a.cause = cause
	a.mu.Unlock()
	a.screen.PostEvent(tcell.NewEventInterrupt(overEvent{}))
}

// Run starts a session and processes input until the user quits or ctx ends
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse()
	a.screen.HideCursor()
	if err := a.startRun(ctx); err != nil {
		return err
	}
	defer a.quit(ctx)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(releaseTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.handleEvent(ctx, ev) {
				return nil
			}
		case now := <-ticker.C:
			a.applyIntent(now)
		}
	}
}

func (a *App) startRun(ctx context.Context) error {
	sess, err := a.newRun(ctx, a)
	if err != nil {
		return err
	}
	sess.SetSprites(-1, len(alienGlyphs), len(obstacleColors))
	if a.sess != nil {
		a.sess.Stop()
	}
	a.sess = sess
	a.held = [4]time.Time{}
	a.intent = game.Intent{}
	a.mu.Lock()
	a.last = sess.Snapshot()
	a.mu.Unlock()
	a.mode = modePlay
	sess.Start()
	a.draw()
	return nil
}

// quit stops the current run and stores it if it never reached defeat
func (a *App) quit(ctx context.Context) {
	if a.sess == nil {
		return
	}
	a.sess.Stop()
	if over, _ := a.sess.Over(); over || a.saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requestTimeout)
	defer cancel()
	if err := a.saver.UpdateStats(ctx, a.sess.Stats()); err != nil {
		log.Printf("term: save stats for %s: %v", a.sess.Username(), err)
	}
}

// handleEvent returns false when the app should exit
func (a *App) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		if _, ok := ev.Data().(overEvent); ok {
			if a.mode == modeBoard {
				a.back = modeOver
			} else {
				a.mode = modeOver
			}
		}
		a.draw()

	case *tcell.EventResize:
		a.screen.Sync()
		a.draw()

	case *tcell.EventMouse:
		// drags repeat the held buttons, so fire only on the press
		pressed := ev.Buttons() &^ a.buttons
		a.buttons = ev.Buttons()
		if pressed&tcell.Button1 != 0 && a.mode == modePlay {
			x, y := a.toField(ev.Position())
			a.sess.ShootAt(x, y)
		}

	case *tcell.EventKey:
		return a.handleKey(ctx, ev)
	}
	return true
}

func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if a.mode == modeBoard {
			a.closeBoard()
			return true
		}
		return false
	case tcell.KeyLeft:
		a.press(game.Left)
		return true
	case tcell.KeyRight:
		a.press(game.Right)
		return true
	case tcell.KeyUp:
		a.press(game.Up)
		return true
	case tcell.KeyDown:
		a.press(game.Down)
		return true
	case tcell.KeyEnter:
		if a.mode == modeOver {
			a.restart(ctx)
		}
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'a', 'h':
		a.press(game.Left)
	case 'd', 'l':
		a.press(game.Right)
	case 'w', 'k':
		a.press(game.Up)
	case 's', 'j':
		a.press(game.Down)
	case ' ':
		if a.mode == modePlay {
			a.sess.Shoot()
		}
	case 'p':
		a.togglePause()
	case 'b':
		if a.mode == modeBoard {
			a.closeBoard()
		} else {
			a.openBoard(ctx)
		}
	case 'n':
		if a.mode == modeOver {
			a.restart(ctx)
		}
	}
	return true
}

func (a *App) restart(ctx context.Context) {
	if err := a.startRun(ctx); err != nil {
		log.Printf("term: new run: %v", err)
	}
}

// press marks d as held now; the opposite direction is released at once
func (a *App) press(d game.Direction) {
	if a.mode != modePlay {
		return
	}
	now := time.Now()
	a.held[d] = now
	a.held[opposite(d)] = time.Time{}
	a.applyIntent(now)
}

func opposite(d game.Direction) game.Direction {
	switch d {
	case game.Left:
		return game.Right
	case game.Right:
		return game.Left
	case game.Up:
		return game.Down
	default:
		return game.Up
	}
}

// applyIntent pushes the held directions to the session when they change
func (a *App) applyIntent(now time.Time) {
	if a.sess == nil {
		return
	}
	active := func(d game.Direction) bool {
		return !a.held[d].IsZero() && now.Sub(a.held[d]) < a.release
	}
	in := game.Intent{
		Left:  active(game.Left),
		Right: active(game.Right),
		Up:    active(game.Up),
		Down:  active(game.Down),
	}
	if in == a.intent {
		return
	}
	a.intent = in
	a.sess.SetIntent(in)
}

func (a *App) togglePause() {
	switch a.mode {
	case modePlay:
		a.sess.Stop()
		a.held = [4]time.Time{}
		a.applyIntent(time.Now())
		a.mode = modePaused
	case modePaused:
		if a.sess.Start() {
			a.mode = modePlay
		}
	}
	a.draw()
}

func (a *App) openBoard(ctx context.Context) {
	if a.board == nil {
		return
	}
	if a.mode == modePlay {
		a.sess.Stop()
		a.held = [4]time.Time{}
		a.applyIntent(time.Now())
	}
	a.back = a.mode
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	a.rows, a.boardErr = a.board(ctx, leaderboardSize)
	if a.boardErr != nil {
		log.Printf("term: leaderboard: %v", a.boardErr)
	}
	a.mode = modeBoard
	a.draw()
}

func (a *App) closeBoard() {
	a.mode = a.back
	if a.mode == modePlay && !a.sess.Start() {
		a.mode = modeOver
	}
	a.draw()
}
