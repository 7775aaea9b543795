package sweep

import (
	"errors"
	"math"
	"testing"
)

func TestNewAxis_ExplicitValues(t *testing.T) {
	a, err := NewAxis(AxisLength, "m", AxisSpec{Values: []float64{0.13e-6, 0.5e-6, 1e-6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() != 3 {
		t.Errorf("len = %d, want 3", a.Len())
	}
}

func TestNewAxis_RangeExpansion(t *testing.T) {
	a, err := NewAxis(AxisVGS, "V", AxisSpec{Start: 0, Stop: 1.5, Step: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 0.5, 1.0, 1.5}
	if a.Len() != len(want) {
		t.Fatalf("len = %d, want %d", a.Len(), len(want))
	}
	for i, v := range want {
		if math.Abs(a.Values[i]-v) > 1e-12 {
			t.Errorf("values[%d] = %g, want %g", i, a.Values[i], v)
		}
	}
}

func TestNewAxis_DescendingRange(t *testing.T) {
	// PMOS convention: 0V down to -1.5V.
	a, err := NewAxis(AxisVGS, "V", AxisSpec{Start: 0, Stop: -1.5, Step: -0.75})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() != 3 {
		t.Errorf("len = %d, want 3", a.Len())
	}
	if a.Values[2] != -1.5 {
		t.Errorf("values[2] = %g, want -1.5", a.Values[2])
	}
}

func TestNewAxis_StepSignDisagrees(t *testing.T) {
	_, err := NewAxis(AxisVDS, "V", AxisSpec{Start: 0, Stop: 1.5, Step: -0.1})
	var invalid *InvalidAxisError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidAxisError", err)
	}
	if invalid.Axis != AxisVDS {
		t.Errorf("axis = %q, want %q", invalid.Axis, AxisVDS)
	}
}

func TestNewAxis_ZeroStepNonDegenerate(t *testing.T) {
	_, err := NewAxis(AxisVDS, "V", AxisSpec{Start: 0, Stop: 1.5, Step: 0})
	var invalid *InvalidAxisError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidAxisError", err)
	}
}

func TestNewAxis_SinglePoint(t *testing.T) {
	// vbs pinned at 0 is a legal one-point axis.
	a, err := NewAxis(AxisVBS, "V", AxisSpec{Start: 0, Stop: 0, Step: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() != 1 {
		t.Errorf("len = %d, want 1", a.Len())
	}
}

func TestNewAxis_EmptyValues(t *testing.T) {
	_, err := NewAxis(AxisVBS, "V", AxisSpec{Values: nil, Step: 0.1, Start: 1, Stop: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A zero spec collapses to the single point at 0, same as a pinned axis.
	a, err := NewAxis(AxisVBS, "V", AxisSpec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() != 1 || a.Values[0] != 0 {
		t.Errorf("axis = %v, want single 0 point", a.Values)
	}
}

func TestNewAxis_NotMonotonic(t *testing.T) {
	_, err := NewAxis(AxisVGS, "V", AxisSpec{Values: []float64{0, 0.5, 0.3}})
	var invalid *InvalidAxisError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidAxisError", err)
	}

	_, err = NewAxis(AxisVGS, "V", AxisSpec{Values: []float64{0, 0.5, 0.5}})
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidAxisError for repeated value", err)
	}
}
