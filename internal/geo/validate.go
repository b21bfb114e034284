package geo

import "math"

const (
	maxSearchRadius = 50
	angleStepDeg    = 15
)

// IsValidPosition reports whether the point is inside the safe envelope and
// clear of every obstacle. Pure; safe for concurrent readers.
func IsValidPosition(x, y float64, obstacles []Obstacle) bool {
	if x < SafeMin || x > SafeMax || y < SafeMin || y > SafeMax {
		return false
	}
	for _, o := range obstacles {
		if o.Collides(x, y) {
			return false
		}
	}
	return true
}

// NearestSafePosition returns the input unchanged when it is already valid.
// Otherwise it spirals outward, radius 1..50 in unit steps with 24 angular
// samples per ring, and returns the first valid candidate. Radius ascends and
// angle ascends within a ring, so the result is reproducible for a given
// obstacle set. Falls back to the workspace center when the search exhausts.
func NearestSafePosition(x, y float64, obstacles []Obstacle) (float64, float64) {
	if IsValidPosition(x, y, obstacles) {
		return x, y
	}
	for radius := 1.0; radius <= maxSearchRadius; radius++ {
		for deg := 0; deg < 360; deg += angleStepDeg {
			rad := float64(deg) * math.Pi / 180
			cx := x + radius*math.Cos(rad)
			cy := y + radius*math.Sin(rad)
			if IsValidPosition(cx, cy, obstacles) {
				return cx, cy
			}
		}
	}
	return CenterX, CenterY
}
