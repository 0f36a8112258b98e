// Package formats provides parsers for the Ragnarok Online map files the
// water tools read terrain from.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
)

// maxGATSide bounds map dimensions to reject garbage headers.
const maxGATSide = 4096

// GATVersion represents the GAT file version.
type GATVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v GATVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GATCellType is the terrain type of a cell.
type GATCellType uint32

// Cell type constants.
const (
	GATWalkable      GATCellType = 0
	GATBlocked       GATCellType = 1
	GATWater         GATCellType = 2
	GATWalkableWater GATCellType = 3 // shore / shallow water
	GATSnipeable     GATCellType = 4
	GATBlockedSnipe  GATCellType = 5
)

var gatCellTypeNames = map[GATCellType]string{
	GATWalkable:      "Walkable",
	GATBlocked:       "Blocked",
	GATWater:         "Water",
	GATWalkableWater: "Walkable+Water",
	GATSnipeable:     "Snipeable",
	GATBlockedSnipe:  "Blocked+Snipe",
}

// String returns a human-readable cell type name.
func (t GATCellType) String() string {
	if name, ok := gatCellTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// IsWater reports whether the cell is covered by water.
func (t GATCellType) IsWater() bool {
	return t == GATWater || t == GATWalkableWater
}

// GATCell is a single cell of the altitude table.
type GATCell struct {
	// Heights: [0] bottom-left, [1] bottom-right, [2] top-left, [3] top-right.
	// Values grow downwards.
	Heights [4]float32
	Type    GATCellType
}

// AverageHeight returns the average altitude of the four corners.
func (c *GATCell) AverageHeight() float32 {
	return (c.Heights[0] + c.Heights[1] + c.Heights[2] + c.Heights[3]) / 4
}

// GAT is a parsed Ground Altitude Table.
type GAT struct {
	Version GATVersion
	Width   uint32
	Height  uint32
	Cells   []GATCell
}

// GetCell returns the cell at (x, y), or nil when out of bounds.
func (g *GAT) GetCell(x, y int) *GATCell {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Cells[y*int(g.Width)+x]
}

// WaterCells returns the number of water cells.
func (g *GAT) WaterCells() int {
	n := 0
	for i := range g.Cells {
		if g.Cells[i].Type.IsWater() {
			n++
		}
	}
	return n
}

// AltitudeRange returns the minimum and maximum corner altitude.
func (g *GAT) AltitudeRange() (lo, hi float32) {
	if len(g.Cells) == 0 {
		return 0, 0
	}
	lo, hi = g.Cells[0].Heights[0], g.Cells[0].Heights[0]
	for i := range g.Cells {
		for _, h := range g.Cells[i].Heights {
			lo = min(lo, h)
			hi = max(hi, h)
		}
	}
	return lo, hi
}

type gatHeader struct {
	Magic  [4]byte
	Minor  uint8
	Major  uint8
	Width  uint32
	Height uint32
}

// ParseGAT parses a GAT file from raw bytes. Versions 1.x to 3.x share one cell layout.
func ParseGAT(data []byte) (*GAT, error) {
	r := bytes.NewReader(data)

	var hdr gatHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header", ErrTruncatedGATData)
	}
	if string(hdr.Magic[:]) != "GRAT" {
		return nil, ErrInvalidGATMagic
	}

	version := GATVersion{Major: hdr.Major, Minor: hdr.Minor}
	if version.Major < 1 || version.Major > 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGATVersion, version)
	}
	if hdr.Width == 0 || hdr.Height == 0 || hdr.Width > maxGATSide || hdr.Height > maxGATSide {
		return nil, fmt.Errorf("invalid GAT dimensions: %dx%d", hdr.Width, hdr.Height)
	}

	cells := make([]GATCell, int(hdr.Width*hdr.Height))
	if err := binary.Read(r, binary.LittleEndian, cells); err != nil {
		return nil, fmt.Errorf("%w: expected %d cells", ErrTruncatedGATData, len(cells))
	}

	return &GAT{
		Version: version,
		Width:   hdr.Width,
		Height:  hdr.Height,
		Cells:   cells,
	}, nil
}

// Encode writes g in the GAT binary layout.
func (g *GAT) Encode(w io.Writer) error {
	if len(g.Cells) != int(g.Width*g.Height) {
		return fmt.Errorf("GAT has %d cells, want %dx%d", len(g.Cells), g.Width, g.Height)
	}
	hdr := gatHeader{Minor: g.Version.Minor, Major: g.Version.Major, Width: g.Width, Height: g.Height}
	copy(hdr.Magic[:], "GRAT")
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, g.Cells)
}

// ParseGATFile parses a GAT file from disk.
func ParseGATFile(path string) (*GAT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	return ParseGAT(data)
}
