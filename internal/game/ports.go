package game

//go:generate go tool mockgen -destination=./mocks/ports_mock.go -package=mocks . Listener,Audio,StatsWriter

import "context"

// Stats is the per-user record that crosses the session boundary to storage
type Stats struct {
	Username   string `json:"username" msgpack:"username"`
	Score      int    `json:"score" msgpack:"score"`
	AmmoMissed int    `json:"ammoMissed" msgpack:"ammoMissed"`
	Ammo       int    `json:"ammo" msgpack:"ammo"`
}

// Cue names a sound effect
type Cue string

const (
	CuePlayerShoot    Cue = "sfx_laser1.wav"
	CueEnemyShoot     Cue = "sfx_laser2.wav"
	CueAlienDestroyed Cue = "sfx_twoTone.wav"
	CueDefeat         Cue = "sfx_lose.wav"
)

// Cause explains how a session ended
type Cause int

const (
	CauseNone Cause = iota
	CauseAlienCollision
	CauseEnemyBullet
)

func (c Cause) String() string {
	switch c {
	case CauseAlienCollision:
		return "alien_collision"
	case CauseEnemyBullet:
		return "enemy_bullet"
	default:
		return "none"
	}
}

// Listener receives frame and terminal events from the simulation goroutine.
// Implementations must not block for long; OnUpdate is called once per tick.
type Listener interface {
	OnUpdate(s Snapshot)
	OnGameOver(final Stats, cause Cause)
}

// Audio plays named cues, fire and forget
type Audio interface {
	Play(cue Cue)
}

// StatsWriter persists final stats when a session ends
type StatsWriter interface {
	UpdateStats(ctx context.Context, s Stats) error
}

type nopListener struct{}

func (nopListener) OnUpdate(Snapshot) {}
func (nopListener) OnGameOver(Stats, Cause) {}

type nopAudio struct{}

func (nopAudio) Play(Cue) {}

type nopWriter struct{}

func (nopWriter) UpdateStats(context.Context, Stats) error { return nil }
