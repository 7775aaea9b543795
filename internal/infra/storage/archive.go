// Package storage persists sealed lookup tables as npz-style compressed
// archives and uploads them to object storage.
package storage

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/analogtools/gmsweep/internal/domain/sweep"
	"github.com/analogtools/gmsweep/internal/domain/table"
)

// Archive member names. Axis members are 1-D, data is
// [length, vgs, vds, vbs, quantity].
const (
	memberData     = "data.npy"
	memberMetadata = "metadata.json"
)

var axisMembers = [4]string{"length.npy", "vgs.npy", "vds.npy", "vbs.npy"}

type axisMeta struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type archiveMeta struct {
	Device      string           `json:"device"`
	Description string           `json:"description"`
	Axes        [4]axisMeta      `json:"axes"`
	Quantities  []sweep.Quantity `json:"quantities"`
}

// NPZCodec reads and writes lookup tables in the archive format.
type NPZCodec struct{}

func NewNPZCodec() *NPZCodec { return &NPZCodec{} }

// Write persists a sealed table. The file appears atomically: it is
// written to a temp sibling and renamed into place.
func (NPZCodec) Write(path string, t *table.LookupTable) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gmsweep-*.npz")
	if err != nil {
		return fmt.Errorf("storage: create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeArchive(tmp, t); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("storage: finalize archive: %w", err)
	}
	return nil
}

func writeArchive(w io.Writer, t *table.LookupTable) error {
	zw := zip.NewWriter(w)

	for i, a := range t.Axes {
		if err := writeMember(zw, axisMembers[i], []int{a.Len()}, a.Values); err != nil {
			return err
		}
	}

	sh := t.Shape()
	if err := writeMember(zw, memberData, sh[:], t.Data); err != nil {
		return err
	}

	meta := archiveMeta{
		Device:      t.Device,
		Description: t.Description,
		Quantities:  t.Quantities,
	}
	for i, a := range t.Axes {
		meta.Axes[i] = axisMeta{Name: a.Name, Unit: a.Unit}
	}
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: memberMetadata, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", memberMetadata, err)
	}
	if err := json.NewEncoder(mw).Encode(meta); err != nil {
		return fmt.Errorf("storage: encode metadata: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("storage: close zip: %w", err)
	}
	return nil
}

func writeMember(zw *zip.Writer, name string, shape []int, data []float64) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", name, err)
	}
	if err := writeNPY(w, shape, data); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

// Load reads an archive back into a lookup table. Axis arrays and data
// round-trip bit-identically.
func (NPZCodec) Load(path string) (*table.LookupTable, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open archive: %w", err)
	}
	defer zr.Close()

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[f.Name] = f
	}

	var meta archiveMeta
	mf, ok := members[memberMetadata]
	if !ok {
		return nil, fmt.Errorf("storage: archive missing %s", memberMetadata)
	}
	mr, err := mf.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: open metadata: %w", err)
	}
	err = json.NewDecoder(mr).Decode(&meta)
	mr.Close()
	if err != nil {
		return nil, fmt.Errorf("storage: decode metadata: %w", err)
	}

	t := &table.LookupTable{
		Device:      meta.Device,
		Description: meta.Description,
		Quantities:  meta.Quantities,
	}

	for i, name := range axisMembers {
		shape, values, err := loadMember(members, name)
		if err != nil {
			return nil, err
		}
		if len(shape) != 1 {
			return nil, fmt.Errorf("storage: axis %s is not 1-D", name)
		}
		t.Axes[i] = sweep.SweepAxis{
			Name:   meta.Axes[i].Name,
			Unit:   meta.Axes[i].Unit,
			Values: values,
		}
	}

	shape, data, err := loadMember(members, memberData)
	if err != nil {
		return nil, err
	}
	want := t.Shape()
	if len(shape) != 5 {
		return nil, fmt.Errorf("storage: data array is %d-D, want 5-D", len(shape))
	}
	for i := range want {
		if shape[i] != want[i] {
			return nil, fmt.Errorf("storage: data shape %v disagrees with axes %v", shape, want)
		}
	}
	t.Data = data
	return t, nil
}

func loadMember(members map[string]*zip.File, name string) ([]int, []float64, error) {
	f, ok := members[name]
	if !ok {
		return nil, nil, fmt.Errorf("storage: archive missing %s", name)
	}
	r, err := f.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("storage: open %s: %w", name, err)
	}
	defer r.Close()
	shape, data, err := readNPY(r)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return shape, data, nil
}
