package systems

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// SpatialGrid buckets list indices by position so that neighbor queries only
// visit nearby cells. Positions outside the covered area fall into the edge
// cells, which keeps queries conservative.
type SpatialGrid struct {
	cellSize   float64
	minX, minY float64
	cols       int
	rows       int
	cells      [][]int
}

// NewSpatialGrid creates a grid covering the rectangle starting at (minX, minY).
func NewSpatialGrid(minX, minY, width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		minX:     minX,
		minY:     minY,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all indices from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds list index i at position p.
func (g *SpatialGrid) Insert(i int, p r2.Vec) {
	col, row := g.cellCoords(p.X, p.Y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], i)
}

// QueryInto appends to dst every index whose cell overlaps the square of
// half-size radius around p, in ascending order. The result is a superset
// of the indices within radius; callers do the exact test.
func (g *SpatialGrid) QueryInto(dst []int, p r2.Vec, radius float64) []int {
	dst = dst[:0]
	c0, r0 := g.cellCoords(p.X-radius, p.Y-radius)
	c1, r1 := g.cellCoords(p.X+radius, p.Y+radius)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	slices.Sort(dst)
	return dst
}

// cellCoords returns the clamped cell for a world position.
func (g *SpatialGrid) cellCoords(x, y float64) (col, row int) {
	col = int((x - g.minX) / g.cellSize)
	row = int((y - g.minY) / g.cellSize)
	return min(max(col, 0), g.cols-1), min(max(row, 0), g.rows-1)
}
