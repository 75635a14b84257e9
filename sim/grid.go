package sim

import "sort"

// foodGrid buckets food indices into square cells over the unit field so
// eating and vision only look at nearby food. The field does not wrap for
// these lookups.
type foodGrid struct {
	cellSize float32
	cols     int
	rows     int
	cells    [][]int // flat grid of food indices
}

func newFoodGrid(cellSize float32) *foodGrid {
	if cellSize <= 0 || cellSize > 1 {
		cellSize = 1
	}
	cols := int(1/cellSize) + 1
	rows := cols

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &foodGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all food from the grid.
func (g *foodGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds food i at p.
func (g *foodGrid) Insert(i int, p Point) {
	idx := g.cellIndex(p.X, p.Y)
	g.cells[idx] = append(g.cells[idx], i)
}

// Move relocates food i from one position to another.
func (g *foodGrid) Move(i int, from, to Point) {
	src := g.cellIndex(from.X, from.Y)
	cell := g.cells[src]
	for k, v := range cell {
		if v == i {
			g.cells[src] = append(cell[:k], cell[k+1:]...)
			break
		}
	}
	g.Insert(i, to)
}

// QueryInto appends the indices of every food in cells that overlap the
// square around p with the given radius, sorted ascending. Callers still
// check the exact distance.
func (g *foodGrid) QueryInto(dst []int, p Point, radius float32) []int {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cell(p.X, p.Y)

	start := len(dst)
	for row := max(centerRow-cellRadius, 0); row <= min(centerRow+cellRadius, g.rows-1); row++ {
		for col := max(centerCol-cellRadius, 0); col <= min(centerCol+cellRadius, g.cols-1); col++ {
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	sort.Ints(dst[start:])
	return dst
}

// cell returns the clamped column and row for a position.
func (g *foodGrid) cell(x, y float32) (col, row int) {
	col = int(x / g.cellSize)
	row = int(y / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

func (g *foodGrid) cellIndex(x, y float32) int {
	col, row := g.cell(x, y)
	return row*g.cols + col
}
