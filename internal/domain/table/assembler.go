package table

import (
	"fmt"
	"sync/atomic"

	"github.com/analogtools/gmsweep/internal/domain/sweep"
)

// Assembler folds per-point measurement records into the dense arena.
//
// The arena is pre-sized to the full grid shape at construction. Each
// record writes only its own disjoint coordinate slice, so concurrent
// Insert calls for distinct grid points need no lock; an atomic counter
// gates the seal barrier.
type Assembler struct {
	device      string
	description string
	grid        sweep.Grid
	quantities  []sweep.Quantity
	data        []float64
	filled      []atomic.Bool
	count       atomic.Int64
}

// NewAssembler allocates an empty arena for the given grid.
func NewAssembler(device, description string, grid sweep.Grid, quantities []sweep.Quantity) *Assembler {
	n := grid.Size()
	return &Assembler{
		device:      device,
		description: description,
		grid:        grid,
		quantities:  quantities,
		data:        make([]float64, n*len(quantities)),
		filled:      make([]atomic.Bool, n),
	}
}

// Insert places a record at its grid coordinates. Safe for concurrent use
// across distinct grid points.
func (a *Assembler) Insert(rec sweep.MeasurementRecord) error {
	linear := a.grid.Linear(rec.Point.Index)
	if linear < 0 || linear >= len(a.filled) {
		return fmt.Errorf("table: index %s outside grid", rec.Point.Index)
	}
	base := linear * len(a.quantities)
	for i, q := range a.quantities {
		v, ok := rec.Values[q]
		if !ok {
			return &sweep.MissingQuantityError{Point: rec.Point, Quantity: q}
		}
		a.data[base+i] = v
	}
	if !a.filled[linear].Swap(true) {
		a.count.Add(1)
	}
	return nil
}

// Filled reports how many grid points hold a successful record.
func (a *Assembler) Filled() int { return int(a.count.Load()) }

// Seal finalizes the arena once every grid point has been attempted. It
// fails with IncompleteTableError naming every unresolved coordinate: a
// table with silently-zeroed entries must never reach downstream
// interpolation.
func (a *Assembler) Seal() (*LookupTable, error) {
	if int(a.count.Load()) != len(a.filled) {
		var missing []sweep.Index
		for i := range a.filled {
			if !a.filled[i].Load() {
				missing = append(missing, a.grid.Point(i))
			}
		}
		return nil, &sweep.IncompleteTableError{Device: a.device, Missing: missing}
	}
	return &LookupTable{
		Device:      a.device,
		Description: a.description,
		Axes:        a.grid.Axes(),
		Quantities:  a.quantities,
		Data:        a.data,
	}, nil
}
