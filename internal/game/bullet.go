package game

// Bullet is a projectile fired by the player or an alien
type Bullet struct {
	Body
	VX, VY float64

	fx, fy   float64 // fractional position
	straight bool
	dy       int
	enemy    bool
}

// NewBullet creates a vector bullet centered on (cx, cy)
func NewBullet(cx, cy float64, w, h int, vx, vy float64, enemy bool) *Bullet {
	b := &Bullet{
		Body:  Body{W: w, H: h, Sprite: -1},
		VX:    vx,
		VY:    vy,
		fx:    cx - float64(w)/2,
		fy:    cy - float64(h)/2,
		enemy: enemy,
	}
	b.sync()
	return b
}

// NewStraightBullet creates a bullet that travels dy pixels per tick along the y axis
func NewStraightBullet(cx, cy float64, w, h, dy int, enemy bool) *Bullet {
	b := NewBullet(cx, cy, w, h, 0, float64(dy), enemy)
	b.straight = true
	b.dy = dy
	return b
}

// Enemy reports whether an alien fired the bullet
func (b *Bullet) Enemy() bool {
	return b.enemy
}

// Straight reports whether the bullet uses single-axis movement
func (b *Bullet) Straight() bool {
	return b.straight
}

// Position returns the fractional position
func (b *Bullet) Position() (float64, float64) {
	return b.fx, b.fy
}

// Move advances the bullet one tick
func (b *Bullet) Move() {
	if b.straight {
		b.Y += b.dy
		b.fy = float64(b.Y)
		return
	}
	b.fx += b.VX
	b.fy += b.VY
	b.sync()
}

func (b *Bullet) sync() {
	b.X = int(b.fx)
	b.Y = int(b.fy)
}
