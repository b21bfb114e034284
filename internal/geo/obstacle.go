// Static obstacle shapes and the bounded workspace
package geo

import "math"

// Shape identifies the geometry of an obstacle.
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeCircle    Shape = "circle"
)

// Workspace safe envelope on a 0-100 normalized axis. Positions outside
// [SafeMin, SafeMax] on either axis are invalid regardless of obstacles.
const (
	SafeMin = 5.0
	SafeMax = 95.0

	// CenterX/CenterY is the guaranteed-free fallback position. Workspace
	// layouts must keep the center clear of obstacles.
	CenterX = 50.0
	CenterY = 50.0

	// Buffer is added to every obstacle's extent during collision tests.
	Buffer = 2.0
)

// Obstacle is a static workspace obstacle. Rectangles use X/Y as the
// lower-left corner plus Width/Height; circles use X/Y as the center plus
// Radius. Immutable once fetched for a session.
type Obstacle struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Shape        Shape   `json:"shape"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	Radius       float64 `json:"radius,omitempty"`
	BufferMargin float64 `json:"buffer_margin,omitempty"`
}

// Collides reports whether the point lies within the obstacle inflated by
// its buffer margin. Obstacles without an explicit margin use the uniform
// workspace Buffer.
func (o Obstacle) Collides(x, y float64) bool {
	b := o.BufferMargin
	if b <= 0 {
		b = Buffer
	}
	switch o.Shape {
	case ShapeRectangle:
		return x >= o.X-b && x <= o.X+o.Width+b &&
			y >= o.Y-b && y <= o.Y+o.Height+b
	case ShapeCircle:
		return math.Hypot(x-o.X, y-o.Y) <= o.Radius+b
	}
	return false
}
