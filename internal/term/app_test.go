package term

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"hideseek-arcade/internal/game"
)

type fakeSaver struct {
	mu    sync.Mutex
	saved []game.Stats
}

func (f *fakeSaver) UpdateStats(_ context.Context, s game.Stats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, s)
	return nil
}

// newTestApp returns an app on an 80x25 simulation screen. Runs tick once
// an hour so tests drive them with Step.
func newTestApp(t *testing.T, board func(context.Context, int) ([]game.Stats, error)) (*App, tcell.SimulationScreen, *fakeSaver) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 25)
	t.Cleanup(screen.Fini)

	saver := &fakeSaver{}
	newRun := func(_ context.Context, l game.Listener) (*game.Session, error) {
		cfg := game.DefaultConfig()
		cfg.TickInterval = time.Hour
		cfg.InitialObstacles = 0
		return game.NewSession(cfg, "tess", game.Stats{Ammo: 3}, game.Ports{Listener: l}), nil
	}
	a, err := New(Options{Screen: screen, NewRun: newRun, Leaderboard: board, Saver: saver})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.startRun(context.Background()); err != nil {
		t.Fatalf("start run: %v", err)
	}
	t.Cleanup(func() { a.sess.Stop() })
	return a, screen, saver
}

func screenText(s tcell.SimulationScreen) string {
	w, h := s.Size()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := s.GetContent(x, y)
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func char(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestNewRequiresScreenAndFactory(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected an error without a screen")
	}
}

func TestDrawsPlayerAndStatus(t *testing.T) {
	_, screen, _ := newTestApp(t, nil)

	// player box 375..424 x 275..324 lands on columns 37..42, rows 12..13
	if r, _, _, _ := screen.GetContent(37, 12); r != playerGlyph {
		t.Errorf("expected player glyph at 37,12, got %q", r)
	}
	if r, _, _, _ := screen.GetContent(42, 13); r != playerGlyph {
		t.Errorf("expected player glyph at 42,13, got %q", r)
	}
	if r, _, _, _ := screen.GetContent(36, 12); r == playerGlyph {
		t.Error("player drawn outside its box")
	}
	status := strings.SplitN(screenText(screen), "\n", 2)[0]
	if !strings.Contains(status, "tess") || !strings.Contains(status, "ammo 3") {
		t.Errorf("unexpected status line %q", status)
	}
}

func TestHeldKeyReleasesAfterWindow(t *testing.T) {
	a, _, _ := newTestApp(t, nil)
	ctx := context.Background()

	a.handleEvent(ctx, key(tcell.KeyLeft))
	a.sess.Step()
	if x := a.sess.Snapshot().Player.X; x != 370 {
		t.Fatalf("expected x=370 after one held tick, got %d", x)
	}

	a.applyIntent(time.Now().Add(time.Second))
	a.sess.Step()
	if x := a.sess.Snapshot().Player.X; x != 370 {
		t.Errorf("released key should stop movement, got x=%d", x)
	}
}

func TestOppositeKeyReleasesAtOnce(t *testing.T) {
	a, _, _ := newTestApp(t, nil)
	ctx := context.Background()

	a.handleEvent(ctx, char('a'))
	a.handleEvent(ctx, char('d'))
	if a.intent.Left || !a.intent.Right {
		t.Errorf("expected only right held, got %+v", a.intent)
	}
	a.handleEvent(ctx, char('w'))
	if !a.intent.Up || !a.intent.Right {
		t.Errorf("perpendicular keys should combine, got %+v", a.intent)
	}
}

func TestClickAndSpaceShoot(t *testing.T) {
	a, _, _ := newTestApp(t, nil)
	ctx := context.Background()

	a.handleEvent(ctx, tcell.NewEventMouse(10, 5, tcell.Button1, tcell.ModNone))
	if got := a.sess.Stats().Ammo; got != 2 {
		t.Fatalf("click should fire, ammo=%d", got)
	}
	a.handleEvent(ctx, char(' '))
	if got := a.sess.Stats().Ammo; got != 1 {
		t.Fatalf("space should fire, ammo=%d", got)
	}
	if n := len(a.sess.Snapshot().Bullets); n != 2 {
		t.Errorf("expected 2 bullets, got %d", n)
	}

	// button release events carry no buttons
	a.handleEvent(ctx, tcell.NewEventMouse(10, 5, tcell.ButtonNone, tcell.ModNone))
	if got := a.sess.Stats().Ammo; got != 1 {
		t.Errorf("mouse move should not fire, ammo=%d", got)
	}
}

func TestHeldButtonFiresOnce(t *testing.T) {
	a, _, _ := newTestApp(t, nil)
	ctx := context.Background()

	a.handleEvent(ctx, tcell.NewEventMouse(10, 5, tcell.Button1, tcell.ModNone))
	a.handleEvent(ctx, tcell.NewEventMouse(11, 5, tcell.Button1, tcell.ModNone))
	a.handleEvent(ctx, tcell.NewEventMouse(12, 6, tcell.Button1, tcell.ModNone))
	if got := a.sess.Stats().Ammo; got != 2 {
		t.Fatalf("dragging with the button held should fire once, ammo=%d", got)
	}

	a.handleEvent(ctx, tcell.NewEventMouse(12, 6, tcell.ButtonNone, tcell.ModNone))
	a.handleEvent(ctx, tcell.NewEventMouse(12, 6, tcell.Button1, tcell.ModNone))
	if got := a.sess.Stats().Ammo; got != 1 {
		t.Errorf("a new press should fire again, ammo=%d", got)
	}
}

func TestSpaceFiresTowardAlienEdge(t *testing.T) {
	a, _, _ := newTestApp(t, nil)
	ctx := context.Background()

	a.handleEvent(ctx, char(' '))
	a.sess.Step()
	bullets := a.sess.Snapshot().Bullets
	if len(bullets) != 1 {
		t.Fatalf("expected one bullet, got %d", len(bullets))
	}
	// no aliens yet, so the shot heads for the edge they climb from
	if b := bullets[0]; b.X != 395 || b.Y <= 295 {
		t.Errorf("space should fire toward the bottom edge, got (%d, %d)", b.X, b.Y)
	}
}

func TestToFieldCentresCell(t *testing.T) {
	a, _, _ := newTestApp(t, nil)

	// 80 columns over 800px, 24 rows over 600px
	x, y := a.toField(0, 1)
	if x != 5 || y != 12 {
		t.Errorf("expected 5,12, got %d,%d", x, y)
	}
	x, y = a.toField(40, 13)
	if x != 405 || y != 312 {
		t.Errorf("expected 405,312, got %d,%d", x, y)
	}
}

func TestPauseToggle(t *testing.T) {
	a, screen, _ := newTestApp(t, nil)
	ctx := context.Background()

	a.handleEvent(ctx, char('p'))
	if a.mode != modePaused || a.sess.Running() {
		t.Fatal("p should pause the run")
	}
	if !strings.Contains(screenText(screen), "PAUSED") {
		t.Error("status should show PAUSED")
	}
	a.handleEvent(ctx, char(' '))
	if got := a.sess.Stats().Ammo; got != 3 {
		t.Error("paused run should not fire")
	}

	a.handleEvent(ctx, char('p'))
	if a.mode != modePlay || !a.sess.Running() {
		t.Error("p again should resume")
	}
}

func TestGameOverScreenAndRestart(t *testing.T) {
	a, screen, _ := newTestApp(t, nil)
	ctx := context.Background()
	first := a.sess

	a.OnGameOver(game.Stats{Username: "tess", Score: 40, Ammo: 2, AmmoMissed: 1}, game.CauseEnemyBullet)
	a.handleEvent(ctx, tcell.NewEventInterrupt(overEvent{}))
	if a.mode != modeOver {
		t.Fatal("expected over mode")
	}
	text := screenText(screen)
	if !strings.Contains(text, "GAME OVER") || !strings.Contains(text, "score 40") || !strings.Contains(text, "shot down") {
		t.Errorf("unexpected over screen:\n%s", text)
	}

	a.handleEvent(ctx, char('n'))
	if a.mode != modePlay || a.sess == first {
		t.Error("n should start a new run")
	}
}

func TestLeaderboardScreen(t *testing.T) {
	rows := []game.Stats{{Username: "ann", Score: 90}, {Username: "tess", Score: 10}}
	var gotLimit int
	board := func(_ context.Context, limit int) ([]game.Stats, error) {
		gotLimit = limit
		return rows, nil
	}
	a, screen, _ := newTestApp(t, board)
	ctx := context.Background()

	a.handleEvent(ctx, char('b'))
	if a.mode != modeBoard || a.sess.Running() {
		t.Fatal("b should open the board and pause the run")
	}
	if gotLimit != leaderboardSize {
		t.Errorf("expected limit %d, got %d", leaderboardSize, gotLimit)
	}
	text := screenText(screen)
	if !strings.Contains(text, "LEADERBOARD") || !strings.Contains(text, "ann") {
		t.Errorf("unexpected board:\n%s", text)
	}

	a.handleEvent(ctx, key(tcell.KeyEscape))
	if a.mode != modePlay || !a.sess.Running() {
		t.Error("escape should return to the running game")
	}
}

func TestLeaderboardError(t *testing.T) {
	board := func(context.Context, int) ([]game.Stats, error) {
		return nil, errors.New("db down")
	}
	a, screen, _ := newTestApp(t, board)

	a.handleEvent(context.Background(), char('b'))
	if !strings.Contains(screenText(screen), "leaderboard unavailable") {
		t.Error("expected an unavailable notice")
	}
}

func TestQuitSavesUnfinishedRun(t *testing.T) {
	a, _, saver := newTestApp(t, nil)
	ctx := context.Background()

	a.handleEvent(ctx, char(' '))
	if a.handleEvent(ctx, char('q')) {
		t.Fatal("q should exit")
	}
	a.quit(ctx)

	if len(saver.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(saver.saved))
	}
	if got := saver.saved[0]; got.Username != "tess" || got.Ammo != 2 {
		t.Errorf("unexpected saved stats %+v", got)
	}
	if a.sess.Running() {
		t.Error("quit should stop the run")
	}
}
