package game

import "testing"

func TestSessionShootAimsAtNearestAlien(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialObstacles = 0
	s := NewSession(cfg, "ivy", Stats{Ammo: 2}, Ports{Rand: &scriptRand{}})
	s.world.Aliens = []*Alien{NewAlien(cfg, 700, 560), NewAlien(cfg, 100, 400)}

	if !s.Shoot() {
		t.Fatal("expected a shot")
	}
	b := s.world.Bullets[0]
	if b.VX >= 0 || b.VY <= 0 {
		t.Errorf("shot should head for the nearer alien down and left, got (%v, %v)", b.VX, b.VY)
	}

	s.world.Aliens = nil
	if !s.Shoot() {
		t.Fatal("expected a second shot")
	}
	b = s.world.Bullets[1]
	if b.VY < cfg.PlayerBulletSpeed-1e-9 {
		t.Errorf("with no aliens the shot should head for the bottom edge, got (%v, %v)", b.VX, b.VY)
	}
}

func TestSessionShootStraightMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialObstacles = 0
	cfg.StraightShots = true
	s := NewSession(cfg, "ivy", Stats{Ammo: 1}, Ports{Rand: &scriptRand{}})
	s.world.Aliens = []*Alien{NewAlien(cfg, 100, 400)}

	if !s.Shoot() {
		t.Fatal("expected a shot")
	}
	if b := s.world.Bullets[0]; !b.Straight() {
		t.Error("straight mode should ignore aliens")
	}
}
