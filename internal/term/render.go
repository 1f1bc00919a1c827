package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"hideseek-arcade/internal/game"
)

var (
	alienGlyphs    = []rune{'V', 'W', 'Y'}
	obstacleColors = []tcell.Color{tcell.ColorGray, tcell.ColorOlive, tcell.ColorTeal}

	stylePlayer    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleAlien     = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleShot      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleEnemyShot = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleStatus    = tcell.StyleDefault.Reverse(true)
	styleTitle     = tcell.StyleDefault.Bold(true)
)

const (
	playerGlyph      = '▲'
	playerShotGlyph  = '|'
	enemyShotGlyph   = '•'
	statusLineHeight = 1
)

// viewport maps field pixels onto the cells below the status line
type viewport struct {
	cols, rows int
	fw, fh     int
}

func (a *App) viewport(snap game.Snapshot) viewport {
	w, h := a.screen.Size()
	return viewport{
		cols: max(w, 1),
		rows: max(h-statusLineHeight, 1),
		fw:   max(snap.Width, 1),
		fh:   max(snap.Height, 1),
	}
}

func (v viewport) cell(x, y int) (int, int) {
	return x * v.cols / v.fw, statusLineHeight + y*v.rows/v.fh
}

// toField converts a clicked cell to the field point at its centre
func (a *App) toField(cx, cy int) (int, int) {
	a.mu.Lock()
	v := a.viewport(a.last)
	a.mu.Unlock()
	cy = max(cy-statusLineHeight, 0)
	x := cx*v.fw/v.cols + v.fw/(2*v.cols)
	y := cy*v.fh/v.rows + v.fh/(2*v.rows)
	return x, y
}

func (a *App) fill(v viewport, b game.BoxState, r rune, st tcell.Style) {
	x0, y0 := v.cell(b.X, b.Y)
	x1, y1 := v.cell(b.X+b.W-1, b.Y+b.H-1)
	for y := max(y0, statusLineHeight); y <= y1 && y < v.rows+statusLineHeight; y++ {
		for x := max(x0, 0); x <= x1 && x < v.cols; x++ {
			a.screen.SetContent(x, y, r, nil, st)
		}
	}
}

func (a *App) text(x, y int, s string, st tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, st)
		x++
	}
}

func (a *App) centered(y int, s string, st tcell.Style) {
	w, _ := a.screen.Size()
	a.text(max((w-len([]rune(s)))/2, 0), y, s, st)
}

func obstacleGlyph(hp int) rune {
	switch {
	case hp > 16:
		return '█'
	case hp > 8:
		return '▓'
	default:
		return '▒'
	}
}

func pick[T any](list []T, i int) T {
	if i < 0 || i >= len(list) {
		return list[0]
	}
	return list[i]
}

func (a *App) draw() {
	a.mu.Lock()
	snap := a.last
	final, cause := a.final, a.cause
	a.mu.Unlock()

	a.screen.Clear()
	switch a.mode {
	case modeBoard:
		a.drawBoard()
	case modeOver:
		a.drawOver(final, cause)
	default:
		a.drawField(snap)
	}
	a.screen.Show()
}

func (a *App) drawField(snap game.Snapshot) {
	v := a.viewport(snap)
	for _, o := range snap.Obstacles {
		st := tcell.StyleDefault.Foreground(pick(obstacleColors, o.Sprite))
		a.fill(v, o.BoxState, obstacleGlyph(o.HP), st)
	}
	for _, al := range snap.Aliens {
		a.fill(v, al, pick(alienGlyphs, al.Sprite), styleAlien)
	}
	for _, b := range snap.Bullets {
		x, y := v.cell(b.X+b.W/2, b.Y+b.H/2)
		if y < statusLineHeight || y >= v.rows+statusLineHeight || x < 0 || x >= v.cols {
			continue
		}
		if b.Enemy {
			a.screen.SetContent(x, y, enemyShotGlyph, nil, styleEnemyShot)
		} else {
			a.screen.SetContent(x, y, playerShotGlyph, nil, styleShot)
		}
	}
	a.fill(v, snap.Player.BoxState, playerGlyph, stylePlayer)

	status := fmt.Sprintf(" %s  score %d  ammo %d  missed %d ",
		a.username(), snap.Player.Score, snap.Player.Ammo, snap.Player.AmmoMissed)
	if a.mode == modePaused {
		status += " PAUSED "
	}
	status += " [p]ause [b]oard [q]uit"
	for x := 0; x < v.cols; x++ {
		a.screen.SetContent(x, 0, ' ', nil, styleStatus)
	}
	a.text(0, 0, status, styleStatus)
}

func (a *App) username() string {
	if a.sess == nil {
		return ""
	}
	return a.sess.Username()
}

func causeText(c game.Cause) string {
	switch c {
	case game.CauseAlienCollision:
		return "rammed by an alien"
	case game.CauseEnemyBullet:
		return "shot down"
	default:
		return "run ended"
	}
}

func (a *App) drawOver(final game.Stats, cause game.Cause) {
	_, h := a.screen.Size()
	y := max(h/2-2, 0)
	a.centered(y, "GAME OVER", styleTitle)
	a.centered(y+1, causeText(cause), tcell.StyleDefault)
	a.centered(y+2, fmt.Sprintf("score %d  ammo %d  missed %d", final.Score, final.Ammo, final.AmmoMissed), tcell.StyleDefault)
	a.centered(y+4, "[n] new run  [b] leaderboard  [q] quit", tcell.StyleDefault)
}

func (a *App) drawBoard() {
	a.centered(0, "LEADERBOARD", styleTitle)
	if a.boardErr != nil {
		a.centered(2, "leaderboard unavailable", tcell.StyleDefault)
		return
	}
	a.text(2, 2, fmt.Sprintf("%-4s %-16s %8s %6s %6s", "#", "player", "score", "ammo", "miss"), styleTitle)
	for i, s := range a.rows {
		st := tcell.StyleDefault
		if s.Username == a.username() {
			st = stylePlayer
		}
		a.text(2, 3+i, fmt.Sprintf("%-4d %-16s %8d %6d %6d", i+1, s.Username, s.Score, s.Ammo, s.AmmoMissed), st)
	}
	_, h := a.screen.Size()
	a.centered(h-1, "[b] or [esc] back", tcell.StyleDefault)
}
