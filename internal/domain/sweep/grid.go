package sweep

import "fmt"

// Index addresses one grid point as (length, vgs, vds, vbs) axis indices.
type Index [4]int

func (ix Index) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", ix[0], ix[1], ix[2], ix[3])
}

// Grid is the Cartesian product of the four sweep axes in canonical order.
type Grid struct {
	Length SweepAxis
	VGS    SweepAxis
	VDS    SweepAxis
	VBS    SweepAxis
}

// NewGrid validates and assembles the four axes into a grid.
func NewGrid(length, vgs, vds, vbs SweepAxis) (Grid, error) {
	g := Grid{Length: length, VGS: vgs, VDS: vds, VBS: vbs}
	for _, a := range g.Axes() {
		if a.Len() == 0 {
			return Grid{}, &InvalidAxisError{Axis: a.Name, Reason: "axis has zero points"}
		}
	}
	return g, nil
}

// Axes returns the axes in table order.
func (g Grid) Axes() [4]SweepAxis {
	return [4]SweepAxis{g.Length, g.VGS, g.VDS, g.VBS}
}

// Shape returns the per-axis lengths in table order.
func (g Grid) Shape() [4]int {
	return [4]int{g.Length.Len(), g.VGS.Len(), g.VDS.Len(), g.VBS.Len()}
}

// Size returns the total number of grid points.
func (g Grid) Size() int {
	return g.Length.Len() * g.VGS.Len() * g.VDS.Len() * g.VBS.Len()
}

// Point maps a linear index (row-major, vbs fastest) to its axis indices.
func (g Grid) Point(linear int) Index {
	sh := g.Shape()
	ix := Index{}
	ix[3] = linear % sh[3]
	linear /= sh[3]
	ix[2] = linear % sh[2]
	linear /= sh[2]
	ix[1] = linear % sh[1]
	ix[0] = linear / sh[1]
	return ix
}

// Linear maps axis indices back to the row-major linear index.
func (g Grid) Linear(ix Index) int {
	sh := g.Shape()
	return ((ix[0]*sh[1]+ix[1])*sh[2]+ix[2])*sh[3] + ix[3]
}

// Bias returns the concrete (length, vgs, vds, vbs) values at an index.
func (g Grid) Bias(ix Index) (length, vgs, vds, vbs float64) {
	return g.Length.Values[ix[0]], g.VGS.Values[ix[1]], g.VDS.Values[ix[2]], g.VBS.Values[ix[3]]
}

// Points enumerates every grid point in linear order.
func (g Grid) Points() []GridPoint {
	points := make([]GridPoint, g.Size())
	for i := range points {
		ix := g.Point(i)
		l, vgs, vds, vbs := g.Bias(ix)
		points[i] = GridPoint{
			Index:  ix,
			Linear: i,
			Length: l,
			VGS:    vgs,
			VDS:    vds,
			VBS:    vbs,
		}
	}
	return points
}

// GridPoint is one concrete combination of geometry and bias.
type GridPoint struct {
	Index  Index
	Linear int
	Length float64
	VGS    float64
	VDS    float64
	VBS    float64
}
