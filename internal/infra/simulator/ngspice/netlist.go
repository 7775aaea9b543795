// Package ngspice adapts the sweep ports to the ngspice batch simulator:
// deck rendering, process invocation, and output parsing.
package ngspice

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/analogtools/gmsweep/internal/domain/sweep"
)

// Options configures deck rendering for one device under test.
type Options struct {
	Device      string  // model/subcircuit name
	Instance    string  // spice instance of the DUT, e.g. "x1"
	Symbol      string  // internal mosfet path for markers, e.g. "n.x1.nsg13_lv_nmos"
	Width       float64 // meters
	NG          int     // number of gate fingers
	M           int     // multiplier
	CornerLib   string  // absolute path to the PDK corner library
	Section     string  // .lib section, e.g. "mos_tt"
	Temperature float64 // celsius
	Quantities  []sweep.Quantity
}

// deckTemplate renders a single operating-point deck. Sources are named
// after the bias they set; the DUT bulk rides on vbs so body effect is
// swept directly.
var deckTemplate = template.Must(template.New("deck").Parse(
	`* gmsweep op point {{.Device}} l={{.Length}} vgs={{.VGS}} vds={{.VDS}} vbs={{.VBS}}
.lib "{{.CornerLib}}" {{.Section}}
.option temp={{.Temperature}}
vgs gate 0 dc {{.VGS}}
vds drain 0 dc {{.VDS}}
vbs bulk 0 dc {{.VBS}}
{{.Instance}} drain gate 0 bulk {{.Device}} w={{.Width}} l={{.Length}} ng={{.NG}} m={{.M}}
.control
{{range .Markers}}save {{.}}
{{end}}op
{{range .Markers}}print {{.}}
{{end}}quit
.endc
.end
`))

// Builder renders grid points into simulation jobs. Rendering is
// deterministic and writes nothing to disk.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	if len(opts.Quantities) == 0 {
		opts.Quantities = sweep.DefaultQuantities()
	}
	return &Builder{opts: opts}
}

// Marker returns the ngspice output marker for a quantity.
func (b *Builder) Marker(q sweep.Quantity) string {
	return fmt.Sprintf("@%s[%s]", b.opts.Symbol, q)
}

// Build implements sweep.Builder.
func (b *Builder) Build(point sweep.GridPoint) (sweep.SimulationJob, error) {
	markers := make([]string, len(b.opts.Quantities))
	markerMap := make(map[string]sweep.Quantity, len(b.opts.Quantities))
	for i, q := range b.opts.Quantities {
		markers[i] = b.Marker(q)
		markerMap[markers[i]] = q
	}

	var buf strings.Builder
	err := deckTemplate.Execute(&buf, struct {
		Options
		Length, VGS, VDS, VBS float64
		Markers               []string
	}{
		Options: b.opts,
		Length:  point.Length,
		VGS:     point.VGS,
		VDS:     point.VDS,
		VBS:     point.VBS,
		Markers: markers,
	})
	if err != nil {
		return sweep.SimulationJob{}, fmt.Errorf("ngspice: render deck: %w", err)
	}

	return sweep.SimulationJob{
		Point:      point,
		Netlist:    buf.String(),
		Quantities: b.opts.Quantities,
		Markers:    markerMap,
	}, nil
}
