// Package grid provides battlefield geometry for the raid simulator:
// building footprints, distances, and the attacker deploy zone.
package grid

import "math"

// Footprint is the axis-aligned cell rectangle a building occupies.
// Row/Col is the top-left cell; Width extends along columns and
// Height along rows.
type Footprint struct {
	Row, Col      int
	Width, Height int
}

// NewFootprint creates a footprint at the given origin with the given size.
func NewFootprint(row, col, width, height int) Footprint {
	return Footprint{Row: row, Col: col, Width: width, Height: height}
}

// Bottom returns the row just past the last occupied row.
func (f Footprint) Bottom() int {
	return f.Row + f.Height
}

// Right returns the column just past the last occupied column.
func (f Footprint) Right() int {
	return f.Col + f.Width
}

// Overlaps returns true if two footprints share at least one cell.
// Uses standard AABB overlap with exclusive far edges, so footprints
// that merely touch do not overlap.
func (f Footprint) Overlaps(other Footprint) bool {
	if f.Row >= other.Bottom() || other.Row >= f.Bottom() {
		return false
	}
	if f.Col >= other.Right() || other.Col >= f.Right() {
		return false
	}
	return true
}

// ContainsCell returns true if the given cell lies inside the footprint.
func (f Footprint) ContainsCell(row, col int) bool {
	return row >= f.Row && row < f.Bottom() && col >= f.Col && col < f.Right()
}

// ContainsPoint returns true if a fractional position lies inside the
// footprint. Far edges are exclusive, matching ContainsCell.
func (f Footprint) ContainsPoint(row, col float64) bool {
	return row >= float64(f.Row) && row < float64(f.Bottom()) &&
		col >= float64(f.Col) && col < float64(f.Right())
}

// Center returns the geometric center of the footprint.
func (f Footprint) Center() (row, col float64) {
	return float64(f.Row) + float64(f.Height)/2, float64(f.Col) + float64(f.Width)/2
}

// DistanceTo returns the shortest distance from a point to the footprint
// rectangle. Points inside the footprint have distance zero.
func (f Footprint) DistanceTo(row, col float64) float64 {
	nearRow := ClampF(row, float64(f.Row), float64(f.Bottom()))
	nearCol := ClampF(col, float64(f.Col), float64(f.Right()))
	return Distance(row, col, nearRow, nearCol)
}

// Distance returns the Euclidean distance between two positions.
func Distance(row1, col1, row2, col2 float64) float64 {
	return math.Hypot(row1-row2, col1-col2)
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// DeployZone is the band of cells along the edges of a square grid where
// attacking units may be placed.
type DeployZone struct {
	Size  int // Grid side length in cells
	Depth int // Band depth measured from each edge
}

// Contains returns true if a position lies inside the grid and within
// Depth cells of at least one edge.
func (z DeployZone) Contains(row, col float64) bool {
	size := float64(z.Size)
	if row < 0 || row >= size || col < 0 || col >= size {
		return false
	}
	depth := float64(z.Depth)
	return row < depth || row >= size-depth || col < depth || col >= size-depth
}
