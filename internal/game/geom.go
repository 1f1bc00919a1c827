package game

// Rect is an axis-aligned bounding box in field pixels
type Rect struct {
	X, Y int
	W, H int
}

// Intersects reports whether two boxes overlap on both axes.
// Boxes that only touch along an edge do not collide.
func (r Rect) Intersects(o Rect) bool {
	if r.W <= 0 || r.H <= 0 || o.W <= 0 || o.H <= 0 {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Center returns the box center in fractional pixels
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// Body is the geometry shared by every spatial entity
type Body struct {
	X, Y   int
	W, H   int
	Sprite int // frontend asset index, -1 when none
}

// Bounds returns the body's bounding box
func (b *Body) Bounds() Rect {
	return Rect{X: b.X, Y: b.Y, W: b.W, H: b.H}
}

// Collides checks if two bodies overlap
func (b *Body) Collides(o *Body) bool {
	return b.Bounds().Intersects(o.Bounds())
}

// Rollback restores a position saved before this tick's move
func (b *Body) Rollback(x, y int) {
	b.X = x
	b.Y = y
}

// Field is the playable area
type Field struct {
	W, H int
}

// Outside reports whether r lies beyond the field edges by more than margin on any side
func (f Field) Outside(r Rect, margin int) bool {
	return r.X < -margin || r.X > f.W+margin || r.Y < -margin || r.Y > f.H+margin
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
