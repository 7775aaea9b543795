// Package table holds the dense lookup structure produced by a sweep and
// the assembler that fills it.
package table

import (
	"fmt"

	"github.com/analogtools/gmsweep/internal/domain/sweep"
)

// LookupTable is the sealed, read-only result of a sweep: a dense array
// indexed [length, vgs, vds, vbs, quantity] plus axis metadata.
type LookupTable struct {
	Device      string
	Description string
	Axes        [4]sweep.SweepAxis
	Quantities  []sweep.Quantity
	// Data is row-major with quantity as the fastest axis.
	Data []float64
}

// Shape returns the five array dimensions.
func (t *LookupTable) Shape() [5]int {
	return [5]int{
		t.Axes[0].Len(), t.Axes[1].Len(), t.Axes[2].Len(), t.Axes[3].Len(),
		len(t.Quantities),
	}
}

// At returns the value at explicit coordinates in O(1).
func (t *LookupTable) At(il, ivgs, ivds, ivbs, iq int) float64 {
	return t.Data[t.offset(il, ivgs, ivds, ivbs, iq)]
}

// AtQuantity returns the value for a named quantity at a grid index.
func (t *LookupTable) AtQuantity(ix sweep.Index, q sweep.Quantity) (float64, error) {
	for i, known := range t.Quantities {
		if known == q {
			return t.At(ix[0], ix[1], ix[2], ix[3], i), nil
		}
	}
	return 0, fmt.Errorf("table: unknown quantity %q", q)
}

func (t *LookupTable) offset(il, ivgs, ivds, ivbs, iq int) int {
	sh := t.Shape()
	return (((il*sh[1]+ivgs)*sh[2]+ivds)*sh[3]+ivbs)*sh[4] + iq
}
