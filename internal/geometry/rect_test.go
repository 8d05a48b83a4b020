package geometry

import "testing"

func TestSplitVerticalNoGapNoOverlap(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	left, right := SplitVertical(r, 0.5)

	if left.Width+right.Width != r.Width {
		t.Fatalf("widths do not sum: %d + %d != %d", left.Width, right.Width, r.Width)
	}
	if left.X != r.X || right.X != left.X+left.Width {
		t.Fatalf("children are not adjacent: left=%+v right=%+v", left, right)
	}
	if left.Width != 960 || right.Width != 960 {
		t.Fatalf("expected 960/960 split, got %d/%d", left.Width, right.Width)
	}
}

func TestSplitVerticalOddWidthRemainderGoesRight(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 7, Height: 10}
	left, right := SplitVertical(r, 1.0/3.0)

	if left.Width+right.Width != 7 {
		t.Fatalf("widths do not sum: %d + %d != 7", left.Width, right.Width)
	}
	if left.Width != 2 {
		t.Fatalf("expected floor(7/3)=2, got %d", left.Width)
	}
}

func TestSplitHorizontalNoGapNoOverlap(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	top, bottom := SplitHorizontal(r, 0.5)

	if top.Height+bottom.Height != r.Height {
		t.Fatalf("heights do not sum: %d + %d != %d", top.Height, bottom.Height, r.Height)
	}
	if bottom.Y != top.Y+top.Height {
		t.Fatalf("children are not adjacent: top=%+v bottom=%+v", top, bottom)
	}
}

func TestEqualWithinTolerance(t *testing.T) {
	a := Rect{X: 100, Y: 100, Width: 500, Height: 400}
	b := Rect{X: 101, Y: 99, Width: 500, Height: 401}

	if !a.Equal(b, 1) {
		t.Fatalf("expected %+v to equal %+v within tolerance 1", a, b)
	}
	if a.Equal(b, 0) {
		t.Fatalf("expected %+v to not equal %+v within tolerance 0", a, b)
	}
}

func TestDirectionBetween(t *testing.T) {
	origin := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	right := Rect{X: 200, Y: 0, Width: 100, Height: 100}
	below := Rect{X: 0, Y: 200, Width: 100, Height: 100}

	if !DirectionBetween(origin, right, DirRight) {
		t.Fatalf("expected right candidate to be in direction Right")
	}
	if DirectionBetween(origin, right, DirDown) {
		t.Fatalf("right candidate should not be in direction Down")
	}
	if !DirectionBetween(origin, below, DirDown) {
		t.Fatalf("expected below candidate to be in direction Down")
	}
}

func TestManhattanDistance(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 300, Y: 400, Width: 100, Height: 100}

	// centers are (50,50) and (350,450): delta (300,400) -> 700
	if d := ManhattanDistance(a, b); d != 700 {
		t.Fatalf("expected distance 700, got %d", d)
	}
}

func TestOpposite(t *testing.T) {
	cases := []struct {
		d, want Direction
	}{
		{DirLeft, DirRight},
		{DirRight, DirLeft},
		{DirUp, DirDown},
		{DirDown, DirUp},
	}
	for _, c := range cases {
		if got := c.d.Opposite(); got != c.want {
			t.Fatalf("Opposite(%v) = %v, want %v", c.d, got, c.want)
		}
	}
}
