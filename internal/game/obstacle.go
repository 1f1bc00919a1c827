package game

// Obstacle is a stationary meteor that absorbs bullets
type Obstacle struct {
	Body
	HP int
}

// NewObstacle creates an obstacle with full hp
func NewObstacle(cfg Config, x, y int) *Obstacle {
	return &Obstacle{
		Body: Body{X: x, Y: y, W: cfg.ObstacleW, H: cfg.ObstacleH, Sprite: -1},
		HP:   cfg.ObstacleHP,
	}
}

// Hit takes one point of hp regardless of who fired
func (o *Obstacle) Hit() {
	o.HP--
}

// Destroyed reports whether hp is exhausted
func (o *Obstacle) Destroyed() bool {
	return o.HP <= 0
}
