package game

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// saveTimeout bounds the final stats write on defeat
const saveTimeout = 3 * time.Second

// Direction is one movement axis flag
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Ports bundles the external collaborators of a session. Nil fields become no-ops.
type Ports struct {
	Listener Listener
	Audio    Audio
	Stats    StatsWriter
	Rand     Rand
}

// Session ties the world, spawn policy, resolver and clock together for one player
type Session struct {
	cfg      Config
	username string

	mu       sync.RWMutex
	world    *World
	spawner  *Spawner
	resolver *Resolver
	tick     uint64
	over     bool
	paused   bool
	cause    Cause

	moves [4]atomic.Bool

	clock    *Clock
	listener Listener
	audio    Audio
	writer   StatsWriter

	doneOnce sync.Once
	done     chan struct{}
}

// NewSession creates a session for username, seeded from initial stats
func NewSession(cfg Config, username string, initial Stats, ports Ports) *Session {
	s := &Session{
		cfg:      cfg,
		username: username,
		world:    NewWorld(cfg),
		listener: ports.Listener,
		audio:    ports.Audio,
		writer:   ports.Stats,
		done:     make(chan struct{}),
	}
	if s.listener == nil {
		s.listener = nopListener{}
	}
	if s.audio == nil {
		s.audio = nopAudio{}
	}
	if s.writer == nil {
		s.writer = nopWriter{}
	}
	s.spawner = NewSpawner(cfg, ports.Rand)
	s.resolver = NewResolver(cfg, s.spawner)
	s.world.Player.Seed(initial)
	s.spawner.Populate(s.world)
	s.clock = NewClock(cfg.TickInterval, cfg.JoinTimeout, s.step)
	return s
}

// SetSprites configures visual variants for newly spawned entities
func (s *Session) SetSprites(player, aliens, obstacles int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.Player.Sprite = player
	s.spawner.SetSprites(aliens, obstacles)
}

// Username returns the session owner
func (s *Session) Username() string {
	return s.username
}

// Start begins ticking. A second call while running is a no-op.
func (s *Session) Start() bool {
	s.mu.RLock()
	over := s.over
	s.mu.RUnlock()
	if over {
		return false
	}
	started := s.clock.Start()
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	return started
}

// Stop halts ticking and waits for the current tick to finish.
// Shots are refused until the next Start.
func (s *Session) Stop() bool {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	return s.clock.Stop()
}

// Running reports whether the clock is ticking
func (s *Session) Running() bool {
	return s.clock.Running()
}

// Done is closed once the session reaches defeat
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Over reports whether the session has ended and why
func (s *Session) Over() (bool, Cause) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.over, s.cause
}

// SetMove turns a movement flag on or off
func (s *Session) SetMove(d Direction, on bool) {
	if d < Left || d > Down {
		return
	}
	s.moves[d].Store(on)
}

// SetIntent replaces all movement flags at once
func (s *Session) SetIntent(in Intent) {
	s.moves[Left].Store(in.Left)
	s.moves[Right].Store(in.Right)
	s.moves[Up].Store(in.Up)
	s.moves[Down].Store(in.Down)
}

func (s *Session) intent() Intent {
	return Intent{
		Left:  s.moves[Left].Load(),
		Right: s.moves[Right].Load(),
		Up:    s.moves[Up].Load(),
		Down:  s.moves[Down].Load(),
	}
}

// ShootAt fires the player's weapon toward (x, y).
// Returns false when the player is out of ammo or the session is paused or over.
func (s *Session) ShootAt(x, y int) bool {
	return s.fire(func(p *Player) (*Bullet, bool) {
		if s.cfg.StraightShots {
			return p.Shoot()
		}
		return p.ShootAt(x, y)
	})
}

// Shoot fires without a target: at the nearest alien, or toward the edge
// aliens climb from when none is on the field. Straight mode fires straight.
func (s *Session) Shoot() bool {
	return s.fire(func(p *Player) (*Bullet, bool) {
		if s.cfg.StraightShots {
			return p.Shoot()
		}
		x, y := s.aim()
		return p.ShootAt(x, y)
	})
}

// aim must be called with s.mu held
func (s *Session) aim() (int, int) {
	px, py := s.world.Player.Bounds().Center()
	tx, ty := px, float64(s.cfg.Field.H)
	if s.cfg.AlienDY > 0 {
		ty = 0
	}
	best := -1.0
	for _, a := range s.world.Aliens {
		ax, ay := a.Bounds().Center()
		d := (ax-px)*(ax-px) + (ay-py)*(ay-py)
		if best < 0 || d < best {
			best, tx, ty = d, ax, ay
		}
	}
	return int(tx), int(ty)
}

func (s *Session) fire(shoot func(p *Player) (*Bullet, bool)) bool {
	s.mu.Lock()
	if s.over || s.paused {
		s.mu.Unlock()
		return false
	}
	b, ok := shoot(s.world.Player)
	if ok {
		s.world.Bullets = append(s.world.Bullets, b)
	}
	s.mu.Unlock()

	if ok {
		s.audio.Play(CuePlayerShoot)
	}
	return ok
}

// Snapshot returns a copy of the current world
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.world.Snapshot(s.tick)
	snap.Over = s.over
	return snap
}

// Stats returns the player's current persisted view
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.Player.Stats(s.username)
}

// Step runs one tick synchronously. Returns false once the session is over.
func (s *Session) Step() bool {
	return s.step()
}

// update advances the world one tick under the write lock
func (s *Session) update() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over {
		return Outcome{}, false
	}

	p := s.world.Player
	preX, preY := p.X, p.Y
	p.Move(s.intent(), s.world.Field)

	out := s.resolver.Resolve(s.world, preX, preY)
	s.tick++
	if out.Defeat {
		s.over = true
		s.cause = out.Cause
	}
	return out, true
}

func (s *Session) step() bool {
	out, ok := s.update()
	if !ok {
		return false
	}

	for _, c := range out.Cues {
		s.audio.Play(c)
	}

	if out.Defeat {
		s.finish(out.Cause)
		return false
	}

	s.listener.OnUpdate(s.Snapshot())
	return true
}

// finish persists the final stats and notifies the listener exactly once
func (s *Session) finish(cause Cause) {
	s.doneOnce.Do(func() {
		final := s.Stats()
		s.audio.Play(CueDefeat)

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := s.writer.UpdateStats(ctx, final); err != nil {
			log.Printf("session %s: save stats failed: %v", s.username, err)
		}
		cancel()

		s.listener.OnGameOver(final, cause)
		close(s.done)
	})
}
