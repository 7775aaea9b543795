package sweep

// SimulationJob is one rendered simulator invocation. Immutable once built.
type SimulationJob struct {
	Point      GridPoint
	Netlist    string
	Quantities []Quantity
	// Markers maps the simulator's output marker (e.g. "@n.x1.nsg13_lv_nmos[id]")
	// to the canonical quantity it carries.
	Markers map[string]Quantity
}

// RawResult is the unparsed output of one simulator invocation. It is
// consumed by the parser and discarded.
type RawResult struct {
	Point    GridPoint
	Output   string
	ExitCode int
}
