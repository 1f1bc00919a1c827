package game

import "math/rand/v2"

// Rand is the random source used by the spawn policy
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Spawner places obstacles and aliens and rolls the per-tick trials
type Spawner struct {
	cfg             Config
	rng             Rand
	alienSprites    int
	obstacleSprites int
}

// NewSpawner creates a spawner. A nil rng uses the auto-seeded global source.
func NewSpawner(cfg Config, rng Rand) *Spawner {
	if rng == nil {
		rng = globalRand{}
	}
	return &Spawner{cfg: cfg, rng: rng}
}

// SetSprites sets how many visual variants exist for aliens and obstacles.
// Zero leaves new entities without a sprite.
func (s *Spawner) SetSprites(aliens, obstacles int) {
	s.alienSprites = max(aliens, 0)
	s.obstacleSprites = max(obstacles, 0)
}

func (s *Spawner) intN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.IntN(n)
}

func (s *Spawner) sprite(n int) int {
	if n <= 0 {
		return -1
	}
	return s.rng.IntN(n)
}

// SpawnObstacle tries to place one obstacle clear of the player.
// Gives up silently after the configured number of attempts.
func (s *Spawner) SpawnObstacle(w *World) bool {
	cfg := s.cfg
	band := w.Field.H - cfg.ObstacleTopMargin - cfg.ObstacleBottomMargin
	player := w.Player.Bounds()
	for attempt := 0; attempt < cfg.ObstacleAttempts; attempt++ {
		x := s.intN(w.Field.W - cfg.ObstacleW)
		y := s.intN(band) + cfg.ObstacleTopMargin
		candidate := Rect{X: x, Y: y, W: cfg.ObstacleW, H: cfg.ObstacleH}
		if candidate.Intersects(player) {
			continue
		}
		o := NewObstacle(cfg, x, y)
		o.Sprite = s.sprite(s.obstacleSprites)
		w.Obstacles = append(w.Obstacles, o)
		return true
	}
	return false
}

// Populate places the initial obstacles
func (s *Spawner) Populate(w *World) int {
	placed := 0
	for i := 0; i < s.cfg.InitialObstacles; i++ {
		if s.SpawnObstacle(w) {
			placed++
		}
	}
	return placed
}

// MaybeSpawnAlien rolls the per-tick alien trial and spawns at the bottom edge on success
func (s *Spawner) MaybeSpawnAlien(w *World) bool {
	if s.intN(s.cfg.AlienSpawnRoll) >= s.cfg.AlienSpawnChance {
		return false
	}
	x := s.intN(w.Field.W - s.cfg.AlienW)
	a := NewAlien(s.cfg, x, w.Field.H)
	a.Sprite = s.sprite(s.alienSprites)
	w.Aliens = append(w.Aliens, a)
	return true
}

// AlienShoots rolls one alien's per-tick shooting trial
func (s *Spawner) AlienShoots() bool {
	return s.intN(s.cfg.AlienShootRoll) < s.cfg.AlienShootChance
}
