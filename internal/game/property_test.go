package game

import (
	"testing"

	"pgregory.net/rapid"
)

// rapidRand lets rapid drive every spawn and trial roll so failures shrink
type rapidRand struct {
	t *rapid.T
}

func (r rapidRand) IntN(n int) int {
	return rapid.IntRange(0, n-1).Draw(r.t, "roll")
}

func TestPropertyAmmoNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := DefaultConfig()
		seed := Stats{Ammo: rapid.IntRange(0, 5).Draw(t, "ammo")}
		s := NewSession(cfg, "prop", seed, Ports{Rand: rapidRand{t}})

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "shoot") {
				s.ShootAt(rapid.IntRange(0, cfg.Field.W).Draw(t, "tx"), rapid.IntRange(0, cfg.Field.H).Draw(t, "ty"))
			}
			s.SetIntent(Intent{
				Left:  rapid.Bool().Draw(t, "left"),
				Right: rapid.Bool().Draw(t, "right"),
				Up:    rapid.Bool().Draw(t, "up"),
				Down:  rapid.Bool().Draw(t, "down"),
			})
			alive := s.Step()
			if ammo := s.Stats().Ammo; ammo < 0 {
				t.Fatalf("ammo went negative: %d", ammo)
			}
			if !alive {
				return
			}
		}
	})
}

func TestPropertyObstacleHPMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := DefaultConfig()
		cfg.ObstacleHP = rapid.IntRange(1, 3).Draw(t, "hp")
		w := NewWorld(cfg)
		sp := NewSpawner(cfg, rapidRand{t})
		sp.Populate(w)
		r := NewResolver(cfg, sp)

		seen := make(map[*Obstacle]int)
		for _, o := range w.Obstacles {
			seen[o] = o.HP
		}

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			for j := rapid.IntRange(0, 3).Draw(t, "volley"); j > 0; j-- {
				x := rapid.IntRange(0, cfg.Field.W).Draw(t, "bx")
				y := rapid.IntRange(0, cfg.Field.H).Draw(t, "by")
				w.Bullets = append(w.Bullets, NewStraightBullet(float64(x), float64(y), cfg.BulletW, cfg.BulletH, 0, rapid.Bool().Draw(t, "enemy")))
			}

			before := len(w.Obstacles)
			out := r.Resolve(w, w.Player.X, w.Player.Y)

			if out.Replaced > out.Destroyed {
				t.Fatalf("replaced %d obstacles for %d destroyed", out.Replaced, out.Destroyed)
			}
			if !out.Defeat && len(w.Obstacles) != before-out.Destroyed+out.Replaced {
				t.Fatalf("obstacle count %d, expected %d-%d+%d", len(w.Obstacles), before, out.Destroyed, out.Replaced)
			}

			current := make(map[*Obstacle]bool, len(w.Obstacles))
			for _, o := range w.Obstacles {
				current[o] = true
				if prev, ok := seen[o]; ok && o.HP > prev {
					t.Fatalf("obstacle hp rose from %d to %d", prev, o.HP)
				}
				if o.HP <= 0 {
					t.Fatalf("obstacle with hp %d still in the world", o.HP)
				}
				seen[o] = o.HP
			}
			for o := range seen {
				if !current[o] {
					if o.HP > 0 {
						t.Fatalf("obstacle removed with hp %d", o.HP)
					}
					delete(seen, o)
				}
			}

			if out.Defeat {
				return
			}
		}
	})
}
