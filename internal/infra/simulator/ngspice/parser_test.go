package ngspice

import (
	"errors"
	"testing"

	"github.com/analogtools/gmsweep/internal/domain/sweep"
)

func testJob() sweep.SimulationJob {
	return sweep.SimulationJob{
		Point:      point(),
		Quantities: []sweep.Quantity{sweep.QtyID, sweep.QtyGM, sweep.QtyVTH},
		Markers: map[string]sweep.Quantity{
			"@n.x1.nsg13_lv_nmos[id]":  sweep.QtyID,
			"@n.x1.nsg13_lv_nmos[gm]":  sweep.QtyGM,
			"@n.x1.nsg13_lv_nmos[vth]": sweep.QtyVTH,
		},
	}
}

func TestParser_ExtractsMarkersAnyOrder(t *testing.T) {
	raw := sweep.RawResult{
		Point: point(),
		Output: `
Note: No compatibility mode selected!

Circuit: * gmsweep op point sg13_lv_nmos

@n.x1.nsg13_lv_nmos[vth] = 4.123450e-01
some unrelated chatter = not a number
@n.x1.nsg13_lv_nmos[id] = 1.234560e-05
@n.x1.nsg13_lv_nmos[gm] = 2.5e-4
`,
	}

	rec, err := NewParser().Parse(raw, testJob())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.Values[sweep.QtyID] != 1.234560e-05 {
		t.Errorf("id = %g", rec.Values[sweep.QtyID])
	}
	if rec.Values[sweep.QtyGM] != 2.5e-4 {
		t.Errorf("gm = %g", rec.Values[sweep.QtyGM])
	}
	if rec.Values[sweep.QtyVTH] != 4.123450e-01 {
		t.Errorf("vth = %g", rec.Values[sweep.QtyVTH])
	}
}

func TestParser_NegativeAndPlainNotation(t *testing.T) {
	raw := sweep.RawResult{
		Point: point(),
		Output: `@n.x1.nsg13_lv_nmos[id] = -3.2e-06
@n.x1.nsg13_lv_nmos[gm] = 0.00025
@n.x1.nsg13_lv_nmos[vth] = -0.41
`,
	}
	rec, err := NewParser().Parse(raw, testJob())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.Values[sweep.QtyID] != -3.2e-06 {
		t.Errorf("id = %g", rec.Values[sweep.QtyID])
	}
	if rec.Values[sweep.QtyVTH] != -0.41 {
		t.Errorf("vth = %g", rec.Values[sweep.QtyVTH])
	}
}

func TestParser_MissingQuantityNamesFirstAbsent(t *testing.T) {
	raw := sweep.RawResult{
		Point: point(),
		Output: `@n.x1.nsg13_lv_nmos[id] = 1e-5
@n.x1.nsg13_lv_nmos[vth] = 0.4
`,
	}
	_, err := NewParser().Parse(raw, testJob())
	var missing *sweep.MissingQuantityError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingQuantityError", err)
	}
	if missing.Quantity != sweep.QtyGM {
		t.Errorf("quantity = %q, want gm", missing.Quantity)
	}
}

func TestParser_UnparsableValueCountsAsMissing(t *testing.T) {
	raw := sweep.RawResult{
		Point: point(),
		Output: `@n.x1.nsg13_lv_nmos[id] = garbage
@n.x1.nsg13_lv_nmos[gm] = 1e-4
@n.x1.nsg13_lv_nmos[vth] = 0.4
`,
	}
	_, err := NewParser().Parse(raw, testJob())
	var missing *sweep.MissingQuantityError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingQuantityError", err)
	}
	if missing.Quantity != sweep.QtyID {
		t.Errorf("quantity = %q, want id", missing.Quantity)
	}
}
