package game

// Outcome summarises one resolved tick
type Outcome struct {
	Defeat    bool
	Cause     Cause
	Cues      []Cue
	Kills     int
	Dodged    int
	Destroyed int // obstacles removed
	Replaced  int // replacement obstacles actually placed
}

func (o *Outcome) cue(c Cue) {
	o.Cues = append(o.Cues, c)
}

// Resolver applies every pairwise interaction for one tick in a fixed order
type Resolver struct {
	cfg     Config
	spawner *Spawner
}

// NewResolver creates a resolver backed by the given spawn policy
func NewResolver(cfg Config, spawner *Spawner) *Resolver {
	return &Resolver{cfg: cfg, spawner: spawner}
}

// Resolve runs the tick after the player has moved from (preX, preY).
// Processing stops as soon as the player is defeated.
func (r *Resolver) Resolve(w *World, preX, preY int) Outcome {
	var out Outcome

	r.blockPlayer(w, preX, preY)
	r.spawner.MaybeSpawnAlien(w)

	if r.updateAliens(w, &out) {
		return out
	}
	pending := r.updateBullets(w, &out)
	if out.Defeat {
		return out
	}
	for i := 0; i < pending; i++ {
		if r.spawner.SpawnObstacle(w) {
			out.Replaced++
		}
	}
	return out
}

// blockPlayer rolls the player back on the first obstacle it overlaps
func (r *Resolver) blockPlayer(w *World, preX, preY int) {
	for _, o := range w.Obstacles {
		if w.Player.Collides(&o.Body) {
			w.Player.Rollback(preX, preY)
			return
		}
	}
}

// updateAliens moves, blocks, expires and fires every alien. Returns true on defeat.
func (r *Resolver) updateAliens(w *World, out *Outcome) bool {
	snapshot := append([]*Alien(nil), w.Aliens...)
	gone := make(map[*Alien]bool)

	for _, a := range snapshot {
		oldX, oldY := a.X, a.Y
		a.Move()

		blocked := false
		for _, o := range w.Obstacles {
			if a.Collides(&o.Body) {
				a.Rollback(oldX, oldY)
				blocked = true
				break
			}
		}

		if !blocked && a.Collides(&w.Player.Body) {
			out.Defeat = true
			out.Cause = CauseAlienCollision
			w.Aliens = without(w.Aliens, gone)
			return true
		}

		if a.Gone() {
			gone[a] = true
			continue
		}

		if r.spawner.AlienShoots() {
			w.Bullets = append(w.Bullets, a.ShootAt(w.Player.Bounds()))
			out.cue(CueEnemyShoot)
		}
	}

	w.Aliens = without(w.Aliens, gone)
	return false
}

// updateBullets moves and resolves every bullet. Returns the number of
// obstacles destroyed, each owed one replacement spawn.
func (r *Resolver) updateBullets(w *World, out *Outcome) int {
	snapshot := append([]*Bullet(nil), w.Bullets...)
	dead := make(map[*Bullet]bool)
	killed := make(map[*Alien]bool)
	destroyed := make(map[*Obstacle]bool)
	pending := 0
	margin := r.cfg.BulletExitMargin

	for _, b := range snapshot {
		b.Move()

		if b.Enemy() {
			if w.Field.Outside(b.Bounds(), margin) {
				w.Player.Dodged()
				out.Dodged++
				dead[b] = true
				continue
			}
			if b.Collides(&w.Player.Body) {
				out.Defeat = true
				out.Cause = CauseEnemyBullet
				break
			}
		} else {
			for _, a := range w.Aliens {
				if killed[a] {
					continue
				}
				if b.Collides(&a.Body) {
					killed[a] = true
					w.Player.AddScore(r.cfg.KillScore)
					out.Kills++
					out.cue(CueAlienDestroyed)
					dead[b] = true
					break
				}
			}
			if !dead[b] && w.Field.Outside(b.Bounds(), margin) {
				dead[b] = true
			}
		}

		if dead[b] {
			continue
		}
		for _, o := range w.Obstacles {
			if destroyed[o] {
				continue
			}
			if b.Collides(&o.Body) {
				o.Hit()
				dead[b] = true
				if o.Destroyed() {
					destroyed[o] = true
					out.Destroyed++
					pending++
				}
				break
			}
		}
	}

	w.Bullets = without(w.Bullets, dead)
	w.Aliens = without(w.Aliens, killed)
	w.Obstacles = without(w.Obstacles, destroyed)
	return pending
}

// without filters list in place, dropping every element marked in drop
func without[T comparable](list []T, drop map[T]bool) []T {
	if len(drop) == 0 {
		return list
	}
	kept := list[:0]
	for _, v := range list {
		if !drop[v] {
			kept = append(kept, v)
		}
	}
	clear(list[len(kept):])
	return kept
}
