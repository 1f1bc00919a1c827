package game

// World holds every entity of one session
type World struct {
	Field     Field
	Player    *Player
	Aliens    []*Alien
	Bullets   []*Bullet
	Obstacles []*Obstacle
}

// NewWorld creates a world with a centered player and no other entities
func NewWorld(cfg Config) *World {
	return &World{
		Field:  cfg.Field,
		Player: NewPlayer(cfg),
	}
}

// BoxState is the render view of a plain entity
type BoxState struct {
	X      int `json:"x" msgpack:"x"`
	Y      int `json:"y" msgpack:"y"`
	W      int `json:"w" msgpack:"w"`
	H      int `json:"h" msgpack:"h"`
	Sprite int `json:"s" msgpack:"s"`
}

// BulletState is the render view of a bullet
type BulletState struct {
	BoxState
	Enemy bool `json:"e" msgpack:"e"`
}

// ObstacleState is the render view of an obstacle
type ObstacleState struct {
	BoxState
	HP int `json:"hp" msgpack:"hp"`
}

// PlayerState is the render view of the player
type PlayerState struct {
	BoxState
	Ammo       int `json:"ammo" msgpack:"ammo"`
	Score      int `json:"sc" msgpack:"sc"`
	AmmoMissed int `json:"miss" msgpack:"miss"`
}

// Snapshot is a read-only copy of the world for renderers
type Snapshot struct {
	Tick      uint64          `json:"tick" msgpack:"tick"`
	Width     int             `json:"fw" msgpack:"fw"`
	Height    int             `json:"fh" msgpack:"fh"`
	Player    PlayerState     `json:"p" msgpack:"p"`
	Aliens    []BoxState      `json:"a" msgpack:"a"`
	Bullets   []BulletState   `json:"b" msgpack:"b"`
	Obstacles []ObstacleState `json:"o" msgpack:"o"`
	Over      bool            `json:"over,omitempty" msgpack:"over,omitempty"`
}

func boxOf(b *Body) BoxState {
	return BoxState{X: b.X, Y: b.Y, W: b.W, H: b.H, Sprite: b.Sprite}
}

// Snapshot copies the world into render state
func (w *World) Snapshot(tick uint64) Snapshot {
	s := Snapshot{
		Tick:   tick,
		Width:  w.Field.W,
		Height: w.Field.H,
		Player: PlayerState{
			BoxState:   boxOf(&w.Player.Body),
			Ammo:       w.Player.Ammo,
			Score:      w.Player.Score,
			AmmoMissed: w.Player.AmmoMissed,
		},
		Aliens:    make([]BoxState, 0, len(w.Aliens)),
		Bullets:   make([]BulletState, 0, len(w.Bullets)),
		Obstacles: make([]ObstacleState, 0, len(w.Obstacles)),
	}
	for _, a := range w.Aliens {
		s.Aliens = append(s.Aliens, boxOf(&a.Body))
	}
	for _, b := range w.Bullets {
		s.Bullets = append(s.Bullets, BulletState{BoxState: boxOf(&b.Body), Enemy: b.Enemy()})
	}
	for _, o := range w.Obstacles {
		s.Obstacles = append(s.Obstacles, ObstacleState{BoxState: boxOf(&o.Body), HP: o.HP})
	}
	return s
}
