package models

import (
	"errors"
	"fmt"
)

// Cell types as they appear in map files and vision windows.
const (
	CellWall  byte = '#'
	CellOpen  byte = '.'
	CellStart byte = 'S'
	CellExit  byte = 'E'

	// Vision overlays, never stored in a Grid.
	MarkSelf  byte = '@'
	MarkOther byte = 'P'
)

var (
	ErrGridShape  = errors.New("grid must be a non-empty square")
	ErrGridCell   = errors.New("grid contains an unknown cell")
	ErrGridMarker = errors.New("grid must contain exactly one start and one exit")
)

// Grid is the immutable maze a game is played on.
type Grid struct {
	size  int
	cells [][]byte
	start Position
	exit  Position
}

// NewGrid validates rows and builds a Grid from them. Rows are indexed by y,
// characters within a row by x.
func NewGrid(rows []string) (*Grid, error) {
	n := len(rows)
	if n == 0 {
		return nil, ErrGridShape
	}

	g := &Grid{size: n, cells: make([][]byte, n)}
	starts, exits := 0, 0
	for y, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrGridShape, y, len(row), n)
		}
		g.cells[y] = []byte(row)
		for x := 0; x < n; x++ {
			switch row[x] {
			case CellWall, CellOpen:
			case CellStart:
				starts++
				g.start = Position{X: x, Y: y}
			case CellExit:
				exits++
				g.exit = Position{X: x, Y: y}
			default:
				return nil, fmt.Errorf("%w: %q at (%d, %d)", ErrGridCell, row[x], x, y)
			}
		}
	}

	if starts != 1 || exits != 1 {
		return nil, fmt.Errorf("%w: found %d start and %d exit cells", ErrGridMarker, starts, exits)
	}
	return g, nil
}

func (g *Grid) Width() int      { return g.size }
func (g *Grid) Height() int     { return g.size }
func (g *Grid) Start() Position { return g.start }
func (g *Grid) Exit() Position  { return g.exit }

// InBounds reports whether p lies inside the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.size && p.Y >= 0 && p.Y < g.size
}

// IsWalkable reports whether an entity may stand on p.
func (g *Grid) IsWalkable(p Position) bool {
	return g.InBounds(p) && g.cells[p.Y][p.X] != CellWall
}

// At returns the raw cell at p. Out-of-bounds positions read as walls.
func (g *Grid) At(p Position) byte {
	if !g.InBounds(p) {
		return CellWall
	}
	return g.cells[p.Y][p.X]
}

// Rows returns a copy of the grid as map-file rows.
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	for y, row := range g.cells {
		rows[y] = string(row)
	}
	return rows
}

// WalkableCells lists every walkable position in row-major order.
func (g *Grid) WalkableCells() []Position {
	var out []Position
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			if g.cells[y][x] != CellWall {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}
