package game

import "math"

// Alien advances across the field in a straight line and fires at the player
type Alien struct {
	Body
	DX, DY int

	bulletW     int
	bulletH     int
	bulletSpeed float64
	straightDY  int
	straight    bool
}

// NewAlien creates an alien at (x, y)
func NewAlien(cfg Config, x, y int) *Alien {
	return &Alien{
		Body:        Body{X: x, Y: y, W: cfg.AlienW, H: cfg.AlienH, Sprite: -1},
		DX:          cfg.AlienDX,
		DY:          cfg.AlienDY,
		bulletW:     cfg.BulletW,
		bulletH:     cfg.BulletH,
		bulletSpeed: cfg.EnemyBulletSpeed,
		straightDY:  cfg.StraightEnemySpeed,
		straight:    cfg.StraightShots,
	}
}

// Move translates the alien by its velocity
func (a *Alien) Move() {
	a.X += a.DX
	a.Y += a.DY
}

// ShootAt fires an enemy bullet at the target's center
func (a *Alien) ShootAt(target Rect) *Bullet {
	cx, cy := a.Bounds().Center()
	if a.straight {
		return NewStraightBullet(cx, cy, a.bulletW, a.bulletH, a.straightDY, true)
	}
	tx, ty := target.Center()
	angle := math.Atan2(ty-cy, tx-cx)
	return NewBullet(cx, cy, a.bulletW, a.bulletH,
		math.Cos(angle)*a.bulletSpeed, math.Sin(angle)*a.bulletSpeed, true)
}

// Gone reports whether the alien has moved past the far edge
func (a *Alien) Gone() bool {
	return a.Y+a.H < 0
}
