package sweep

// Quantity is one named scalar extracted per operating point.
type Quantity string

const (
	QtyID    Quantity = "id"    // drain current
	QtyGM    Quantity = "gm"    // transconductance
	QtyGDS   Quantity = "gds"   // output conductance
	QtyVTH   Quantity = "vth"   // threshold voltage
	QtyVDSAT Quantity = "vdsat" // saturation voltage
	QtyCGG   Quantity = "cgg"   // total gate capacitance
	QtyCGS   Quantity = "cgs"   // gate-source capacitance
	QtyCGD   Quantity = "cgd"   // gate-drain capacitance
)

// DefaultQuantities is the characterization set saved per device, in
// table order.
func DefaultQuantities() []Quantity {
	return []Quantity{QtyID, QtyGM, QtyGDS, QtyVTH, QtyVDSAT, QtyCGG, QtyCGS, QtyCGD}
}

// MeasurementRecord holds every requested quantity for one grid point.
// A record is only ever complete: the parser rejects partial output.
type MeasurementRecord struct {
	Point  GridPoint
	Values map[Quantity]float64
}
