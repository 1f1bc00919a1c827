package game

import "math"

// Intent is the set of movement flags held by the frontend
type Intent struct {
	Left, Right, Up, Down bool
}

// Player is the ship controlled by the user
type Player struct {
	Body
	Ammo       int
	Score      int
	AmmoMissed int // enemy shots dodged

	speed       int
	bulletW     int
	bulletH     int
	bulletSpeed float64
	straightDY  int
}

// NewPlayer creates a player centered in the field
func NewPlayer(cfg Config) *Player {
	return &Player{
		Body: Body{
			X:      cfg.Field.W/2 - cfg.PlayerW/2,
			Y:      cfg.Field.H/2 - cfg.PlayerH/2,
			W:      cfg.PlayerW,
			H:      cfg.PlayerH,
			Sprite: -1,
		},
		speed:       cfg.PlayerSpeed,
		bulletW:     cfg.BulletW,
		bulletH:     cfg.BulletH,
		bulletSpeed: cfg.PlayerBulletSpeed,
		straightDY:  cfg.StraightPlayerSpeed,
	}
}

// Seed copies persisted stats into the player
func (p *Player) Seed(s Stats) {
	p.Score = max(s.Score, 0)
	p.AmmoMissed = max(s.AmmoMissed, 0)
	p.Ammo = max(s.Ammo, 0)
}

// Move applies one tick of movement, clamped to the field
func (p *Player) Move(in Intent, f Field) {
	if in.Left {
		p.X -= p.speed
	}
	if in.Right {
		p.X += p.speed
	}
	if in.Up {
		p.Y -= p.speed
	}
	if in.Down {
		p.Y += p.speed
	}
	if in.Left || in.Right {
		p.X = Clamp(p.X, 0, f.W-p.W)
	}
	if in.Up || in.Down {
		p.Y = Clamp(p.Y, 0, f.H-p.H)
	}
}

// ShootAt fires toward (tx, ty). Returns false when out of ammo.
func (p *Player) ShootAt(tx, ty int) (*Bullet, bool) {
	if p.Ammo <= 0 {
		return nil, false
	}
	cx, cy := p.Bounds().Center()
	angle := math.Atan2(float64(ty)-cy, float64(tx)-cx)
	p.Ammo--
	return NewBullet(cx, cy, p.bulletW, p.bulletH,
		math.Cos(angle)*p.bulletSpeed, math.Sin(angle)*p.bulletSpeed, false), true
}

// Shoot fires a straight bullet along the y axis
func (p *Player) Shoot() (*Bullet, bool) {
	if p.Ammo <= 0 {
		return nil, false
	}
	cx, cy := p.Bounds().Center()
	p.Ammo--
	return NewStraightBullet(cx, cy, p.bulletW, p.bulletH, p.straightDY, false), true
}

// AddAmmo grants ammo; negative amounts are ignored
func (p *Player) AddAmmo(n int) {
	if n > 0 {
		p.Ammo += n
	}
}

// AddScore adds points to the score
func (p *Player) AddScore(n int) {
	if n > 0 {
		p.Score += n
	}
}

// Dodged records an enemy bullet that left the field
func (p *Player) Dodged() {
	p.AddAmmo(1)
	p.AmmoMissed++
}

// Stats returns the persisted view of the player
func (p *Player) Stats(username string) Stats {
	return Stats{
		Username:   username,
		Score:      p.Score,
		AmmoMissed: p.AmmoMissed,
		Ammo:       p.Ammo,
	}
}
