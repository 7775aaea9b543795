package ngspice

import (
	"strings"
	"testing"

	"github.com/analogtools/gmsweep/internal/domain/sweep"
)

func testBuilder() *Builder {
	return NewBuilder(Options{
		Device:      "sg13_lv_nmos",
		Instance:    "x1",
		Symbol:      "n.x1.nsg13_lv_nmos",
		Width:       10e-6,
		NG:          1,
		M:           1,
		CornerLib:   "/pdk/ihp-sg13g2/libs.tech/ngspice/models/cornerMOSlv.lib",
		Section:     "mos_tt",
		Temperature: 27,
	})
}

func point() sweep.GridPoint {
	return sweep.GridPoint{
		Index:  sweep.Index{0, 1, 0, 0},
		Linear: 1,
		Length: 0.13e-6,
		VGS:    0.75,
		VDS:    0.6,
		VBS:    0,
	}
}

func TestBuilder_Deterministic(t *testing.T) {
	b := testBuilder()
	first, err := b.Build(point())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := b.Build(point())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if first.Netlist != second.Netlist {
		t.Error("rendering is not deterministic")
	}
}

func TestBuilder_DeckContents(t *testing.T) {
	job, err := testBuilder().Build(point())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for _, want := range []string{
		`.lib "/pdk/ihp-sg13g2/libs.tech/ngspice/models/cornerMOSlv.lib" mos_tt`,
		"vgs gate 0 dc 0.75",
		"vds drain 0 dc 0.6",
		"vbs bulk 0 dc 0",
		"x1 drain gate 0 bulk sg13_lv_nmos w=1e-05 l=1.3e-07 ng=1 m=1",
		"print @n.x1.nsg13_lv_nmos[id]",
		"save @n.x1.nsg13_lv_nmos[cgd]",
	} {
		if !strings.Contains(job.Netlist, want) {
			t.Errorf("deck missing %q:\n%s", want, job.Netlist)
		}
	}

	if len(job.Quantities) != len(sweep.DefaultQuantities()) {
		t.Errorf("quantities = %v", job.Quantities)
	}
	if q, ok := job.Markers["@n.x1.nsg13_lv_nmos[gm]"]; !ok || q != sweep.QtyGM {
		t.Errorf("marker map = %v", job.Markers)
	}
}

func TestBuilder_CustomQuantitySet(t *testing.T) {
	b := NewBuilder(Options{
		Device:     "dev",
		Instance:   "x1",
		Symbol:     "n.x1.dev",
		Quantities: []sweep.Quantity{sweep.QtyID},
	})
	job, err := b.Build(point())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(job.Quantities) != 1 || job.Quantities[0] != sweep.QtyID {
		t.Errorf("quantities = %v", job.Quantities)
	}
	if strings.Contains(job.Netlist, "[gm]") {
		t.Error("deck saves quantities that were not requested")
	}
}
