package sim

import (
	"math"

	"github.com/lab1702/actionserver/zone"
)

// spatialGrid provides broad-phase candidate lookup for collision
// detection: a uniform grid keyed by cell index, covering one zone's
// bounds, with a 3x3-neighbourhood query around any point.
type spatialGrid struct {
	cellSize   float64
	cols, rows int
	originX    float64
	originY    float64
	cells      [][]zone.EntityID
}

// cellSizeForCollision must be >= CollisionRadius*2 so that any two
// overlapping circles land in the same or adjacent cells.
const cellSizeForCollision = zone.CollisionRadius * 4

func newSpatialGrid(square zone.GridSquare) *spatialGrid {
	min, _ := square.Bounds()
	cols := int(math.Ceil(zone.ZoneSize / cellSizeForCollision))
	rows := cols
	cells := make([][]zone.EntityID, cols*rows)
	return &spatialGrid{
		cellSize: cellSizeForCollision,
		cols:     cols,
		rows:     rows,
		originX:  min.X,
		originY:  min.Y,
		cells:    cells,
	}
}

func (g *spatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *spatialGrid) cellIndex(pos zone.Vec2) int {
	col := int((pos.X - g.originX) / g.cellSize)
	row := int((pos.Y - g.originY) / g.cellSize)
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
	return row*g.cols + col
}

func (g *spatialGrid) Insert(id zone.EntityID, pos zone.Vec2) {
	idx := g.cellIndex(pos)
	g.cells[idx] = append(g.cells[idx], id)
}

// Nearby returns entity IDs in the 3x3 cell neighbourhood of pos. The
// caller must still perform an exact distance check.
func (g *spatialGrid) Nearby(pos zone.Vec2) []zone.EntityID {
	col := int((pos.X - g.originX) / g.cellSize)
	row := int((pos.Y - g.originY) / g.cellSize)

	var out []zone.EntityID
	for dc := -1; dc <= 1; dc++ {
		for dr := -1; dr <= 1; dr++ {
			c, r := col+dc, row+dr
			if c < 0 || c >= g.cols || r < 0 || r >= g.rows {
				continue
			}
			out = append(out, g.cells[r*g.cols+c]...)
		}
	}
	return out
}
