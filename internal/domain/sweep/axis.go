package sweep

import (
	"fmt"
	"math"
)

// Canonical axis names, in table order.
const (
	AxisLength = "length"
	AxisVGS    = "vgs"
	AxisVDS    = "vds"
	AxisVBS    = "vbs"
)

// AxisSpec declares one sweep dimension, either as an explicit value list
// or as a start/stop/step range (inclusive of stop when it lands on a step).
type AxisSpec struct {
	Values []float64 `yaml:"values,omitempty"`
	Start  float64   `yaml:"start"`
	Stop   float64   `yaml:"stop"`
	Step   float64   `yaml:"step"`
}

// SweepAxis is one resolved dimension of the grid.
type SweepAxis struct {
	Name   string
	Unit   string
	Values []float64
}

// NewAxis resolves an AxisSpec into a validated axis.
func NewAxis(name, unit string, spec AxisSpec) (SweepAxis, error) {
	values := spec.Values
	if len(values) == 0 {
		expanded, err := expandRange(name, spec)
		if err != nil {
			return SweepAxis{}, err
		}
		values = expanded
	}

	if len(values) == 0 {
		return SweepAxis{}, &InvalidAxisError{Axis: name, Reason: "axis has zero points"}
	}
	if len(values) > 1 {
		ascending := values[1] > values[0]
		for i := 1; i < len(values); i++ {
			d := values[i] - values[i-1]
			if d == 0 || (d > 0) != ascending {
				return SweepAxis{}, &InvalidAxisError{
					Axis:   name,
					Reason: fmt.Sprintf("values not strictly monotonic at index %d", i),
				}
			}
		}
	}

	return SweepAxis{Name: name, Unit: unit, Values: values}, nil
}

// expandRange turns (start, stop, step) into an explicit value list.
func expandRange(name string, spec AxisSpec) ([]float64, error) {
	span := spec.Stop - spec.Start
	if spec.Step == 0 {
		if span == 0 {
			// Degenerate single-point axis, e.g. vbs fixed at 0.
			return []float64{spec.Start}, nil
		}
		return nil, &InvalidAxisError{Axis: name, Reason: "step is zero"}
	}
	if span != 0 && (span > 0) != (spec.Step > 0) {
		return nil, &InvalidAxisError{
			Axis:   name,
			Reason: fmt.Sprintf("step sign %+g disagrees with stop-start %+g", spec.Step, span),
		}
	}

	n := int(math.Floor(span/spec.Step+1e-9)) + 1
	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		values = append(values, spec.Start+float64(i)*spec.Step)
	}
	return values, nil
}

// Len returns the number of points on the axis.
func (a SweepAxis) Len() int { return len(a.Values) }
