package geo

import "testing"

func TestIsValidPosition_Envelope(t *testing.T) {
	cases := []struct {
		x, y float64
		want bool
	}{
		{4.9, 50, false},
		{95.1, 50, false},
		{50, 4.9, false},
		{50, 95.1, false},
		{5, 5, true},
		{95, 95, true},
		{50, 50, true},
	}
	for _, c := range cases {
		if got := IsValidPosition(c.x, c.y, nil); got != c.want {
			t.Errorf("IsValidPosition(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestIsValidPosition_RectangleObstacle(t *testing.T) {
	obstacles := []Obstacle{
		{ID: 1, Name: "crate", Shape: ShapeRectangle, X: 15, Y: 35, Width: 25, Height: 30},
	}

	if IsValidPosition(20, 40, obstacles) {
		t.Error("point inside rectangle should be invalid")
	}
	if !IsValidPosition(10, 10, obstacles) {
		t.Error("point clear of rectangle should be valid")
	}
	// Buffer inflates the rectangle by 2 units on each side.
	if IsValidPosition(14, 40, obstacles) {
		t.Error("point inside buffer zone should be invalid")
	}
	if !IsValidPosition(12, 40, obstacles) {
		t.Error("point just outside buffer zone should be valid")
	}
}

func TestIsValidPosition_CircleObstacle(t *testing.T) {
	obstacles := []Obstacle{
		{ID: 2, Name: "column", Shape: ShapeCircle, X: 50, Y: 50, Radius: 10},
	}

	if IsValidPosition(50, 50, obstacles) {
		t.Error("circle center should be invalid")
	}
	if IsValidPosition(50, 61.9, obstacles) {
		t.Error("point within radius+buffer should be invalid")
	}
	if !IsValidPosition(50, 62.1, obstacles) {
		t.Error("point beyond radius+buffer should be valid")
	}
}

func TestNearestSafePosition_Idempotent(t *testing.T) {
	x, y := NearestSafePosition(30, 70, nil)
	if x != 30 || y != 70 {
		t.Errorf("valid input must be returned unchanged, got (%v, %v)", x, y)
	}
}

func TestNearestSafePosition_AlwaysValid(t *testing.T) {
	obstacles := []Obstacle{
		{Shape: ShapeRectangle, X: 15, Y: 35, Width: 25, Height: 30},
		{Shape: ShapeCircle, X: 70, Y: 70, Radius: 8},
	}
	starts := [][2]float64{
		{0, 0}, {20, 40}, {70, 70}, {100, 100}, {-10, 50}, {50, 120},
	}
	for _, s := range starts {
		x, y := NearestSafePosition(s[0], s[1], obstacles)
		if !IsValidPosition(x, y, obstacles) {
			t.Errorf("NearestSafePosition(%v, %v) returned invalid (%v, %v)", s[0], s[1], x, y)
		}
	}
}

func TestNearestSafePosition_Deterministic(t *testing.T) {
	obstacles := []Obstacle{
		{Shape: ShapeCircle, X: 50, Y: 50, Radius: 5},
	}
	x1, y1 := NearestSafePosition(50, 50, obstacles)
	x2, y2 := NearestSafePosition(50, 50, obstacles)
	if x1 != x2 || y1 != y2 {
		t.Errorf("search not deterministic: (%v,%v) vs (%v,%v)", x1, y1, x2, y2)
	}
}

func TestNearestSafePosition_CenterFallback(t *testing.T) {
	// A ring of buffered circles boxing in a far corner point outside the
	// envelope leaves no candidate within range on the corner side.
	x, y := NearestSafePosition(-200, -200, nil)
	if x != CenterX || y != CenterY {
		t.Errorf("expected center fallback, got (%v, %v)", x, y)
	}
}
