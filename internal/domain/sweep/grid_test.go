package sweep

import "testing"

func mustAxis(t *testing.T, name string, values []float64) SweepAxis {
	t.Helper()
	a, err := NewAxis(name, "", AxisSpec{Values: values})
	if err != nil {
		t.Fatalf("axis %s: %v", name, err)
	}
	return a
}

func testGrid(t *testing.T) Grid {
	t.Helper()
	g, err := NewGrid(
		mustAxis(t, AxisLength, []float64{0.13e-6, 0.5e-6}),
		mustAxis(t, AxisVGS, []float64{0, 0.75, 1.5}),
		mustAxis(t, AxisVDS, []float64{0.6}),
		mustAxis(t, AxisVBS, []float64{0}),
	)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func TestGrid_SizeIsAxisProduct(t *testing.T) {
	g := testGrid(t)
	if g.Size() != 2*3*1*1 {
		t.Errorf("size = %d, want 6", g.Size())
	}

	big, err := NewGrid(
		mustAxis(t, AxisLength, []float64{1, 2, 3}),
		mustAxis(t, AxisVGS, []float64{0, 1, 2, 3, 4}),
		mustAxis(t, AxisVDS, []float64{0, 1}),
		mustAxis(t, AxisVBS, []float64{0, -1, -2, -3}),
	)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if big.Size() != 3*5*2*4 {
		t.Errorf("size = %d, want %d", big.Size(), 3*5*2*4)
	}
}

func TestGrid_LinearRoundTrip(t *testing.T) {
	g := testGrid(t)
	for i := 0; i < g.Size(); i++ {
		ix := g.Point(i)
		if back := g.Linear(ix); back != i {
			t.Errorf("linear(point(%d)) = %d", i, back)
		}
	}
}

func TestGrid_PointsEnumeration(t *testing.T) {
	g := testGrid(t)
	points := g.Points()
	if len(points) != 6 {
		t.Fatalf("points = %d, want 6", len(points))
	}

	// First point is the grid origin.
	if points[0].Index != (Index{0, 0, 0, 0}) {
		t.Errorf("points[0].Index = %s", points[0].Index)
	}
	if points[0].Length != 0.13e-6 || points[0].VGS != 0 {
		t.Errorf("points[0] bias = (%g, %g)", points[0].Length, points[0].VGS)
	}

	// Last point carries the final axis values.
	last := points[5]
	if last.Index != (Index{1, 2, 0, 0}) {
		t.Errorf("points[5].Index = %s", last.Index)
	}
	if last.Length != 0.5e-6 || last.VGS != 1.5 || last.VDS != 0.6 || last.VBS != 0 {
		t.Errorf("points[5] bias = (%g, %g, %g, %g)", last.Length, last.VGS, last.VDS, last.VBS)
	}

	// Linear positions are self-describing.
	for i, p := range points {
		if p.Linear != i {
			t.Errorf("points[%d].Linear = %d", i, p.Linear)
		}
	}
}

func TestIndex_String(t *testing.T) {
	if got := (Index{1, 2, 0, 0}).String(); got != "(1,2,0,0)" {
		t.Errorf("String() = %q", got)
	}
}
