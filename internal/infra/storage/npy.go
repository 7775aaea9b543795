package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Minimal NPY v1.0 codec for little-endian float64 arrays. Kept
// bit-compatible with numpy so the produced archives load with np.load.

var npyMagic = []byte("\x93NUMPY\x01\x00")

// writeNPY writes one float64 array with the given shape.
func writeNPY(w io.Writer, shape []int, data []float64) error {
	dims := make([]string, len(shape))
	n := 1
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
		n *= d
	}
	if n != len(data) {
		return fmt.Errorf("npy: shape %v does not match %d values", shape, len(data))
	}

	shapeStr := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", shapeStr)
	// Pad so magic+length+header is a multiple of 64, newline-terminated.
	padded := len(npyMagic) + 2 + len(header) + 1
	if rem := padded % 64; rem != 0 {
		header += strings.Repeat(" ", 64-rem)
	}
	header += "\n"

	if _, err := w.Write(npyMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	buf := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	_, err := w.Write(buf)
	return err
}

// readNPY reads one little-endian float64 array and its shape.
func readNPY(r io.Reader) ([]int, []float64, error) {
	magic := make([]byte, len(npyMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, nil, fmt.Errorf("npy: read magic: %w", err)
	}
	if string(magic[:6]) != "\x93NUMPY" {
		return nil, nil, fmt.Errorf("npy: bad magic")
	}

	var headerLen uint16
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, nil, fmt.Errorf("npy: read header length: %w", err)
	}
	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("npy: read header: %w", err)
	}
	header := string(headerBytes)

	if !strings.Contains(header, "'<f8'") {
		return nil, nil, fmt.Errorf("npy: unsupported dtype in header %q", header)
	}
	if strings.Contains(header, "'fortran_order': True") {
		return nil, nil, fmt.Errorf("npy: fortran order not supported")
	}

	shape, err := parseShape(header)
	if err != nil {
		return nil, nil, err
	}
	n := 1
	for _, d := range shape {
		n *= d
	}

	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, fmt.Errorf("npy: read data: %w", err)
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return shape, data, nil
}

func parseShape(header string) ([]int, error) {
	open := strings.Index(header, "(")
	close := strings.Index(header, ")")
	if open < 0 || close < open {
		return nil, fmt.Errorf("npy: no shape tuple in header %q", header)
	}
	var shape []int
	for _, part := range strings.Split(header[open+1:close], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("npy: bad shape dimension %q", part)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
