package ngspice

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/analogtools/gmsweep/internal/domain/sweep"
)

// Parser extracts quantity markers from ngspice batch output.
//
// Print lines look like:
//
//	@n.x1.nsg13_lv_nmos[id] = 1.234560e-05
//
// Markers may appear in any order; values are already in SI base units.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// Parse implements sweep.Parser. All requested quantities must be present;
// the first absent one is reported rather than defaulted.
func (p *Parser) Parse(raw sweep.RawResult, job sweep.SimulationJob) (sweep.MeasurementRecord, error) {
	values := make(map[sweep.Quantity]float64, len(job.Quantities))

	scanner := bufio.NewScanner(strings.NewReader(raw.Output))
	for scanner.Scan() {
		line := scanner.Text()
		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}
		marker := strings.TrimSpace(line[:eq])
		q, ok := job.Markers[marker]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(line[eq+1:]), 64)
		if err != nil {
			continue
		}
		values[q] = v
	}

	for _, q := range job.Quantities {
		if _, ok := values[q]; !ok {
			return sweep.MeasurementRecord{}, &sweep.MissingQuantityError{
				Point:    raw.Point,
				Quantity: q,
			}
		}
	}

	return sweep.MeasurementRecord{Point: raw.Point, Values: values}, nil
}
