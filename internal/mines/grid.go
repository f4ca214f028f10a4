package mines

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("%d:%d", c.Row, c.Col)
}

func (c Coord) add(d Coord) Coord {
	return Coord{c.Row + d.Row, c.Col + d.Col}
}

// neighborOffsets lists the 8 orthogonal and diagonal neighbors of a cell.
var neighborOffsets = [...]Coord{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// CellType is the number of mines around a cell (0 to 8) or [Mine].
type CellType int8

const Mine CellType = -1

func (t CellType) String() string {
	if t == Mine {
		return LabelMine
	}
	return strconv.Itoa(int(t))
}

const (
	LabelEmpty = ""
	LabelFlag  = "F"
	LabelMine  = "M"
)

type Cell struct {
	Type           CellType `json:"type"`
	Coord          Coord    `json:"coord"`
	Index          int      `json:"index"`
	Label          string   `json:"label"`
	IsOpened       bool     `json:"is_opened"`
	IsMine         bool     `json:"is_mine"`
	IsMineExploded bool     `json:"is_mine_exploded"`
	IsWrongFlag    bool     `json:"is_wrong_flag"`
}

func (c *Cell) Flagged() bool {
	return c.Label == LabelFlag
}

// Rune is the character used for the cell by [Grid.String].
func (c *Cell) Rune() rune {
	switch {
	case c.IsWrongFlag:
		return 'x'
	case c.Flagged():
		return 'F'
	case c.IsMineExploded:
		return 'X'
	case c.IsOpened && c.Type == Mine:
		return '*'
	case c.IsOpened && c.Type == 0:
		return '.'
	case c.IsOpened:
		return rune('0' + c.Type)
	default:
		return '#'
	}
}

type Phase int8

const (
	PhaseEmpty Phase = iota
	PhasePopulated
)

func (p Phase) String() string {
	if p == PhasePopulated {
		return "populated"
	}
	return "empty"
}

// Grid is a Vertical x Horizontal matrix of cells stored in row-major order.
type Grid struct {
	Vertical, Horizontal, MineCount int

	phase Phase
	cells []Cell
}

// NewGrid returns an empty grid: no mines, every cell closed with type 0.
//
// panics [AssertionError] if the dimensions or the mine count are invalid
func NewGrid(vertical, horizontal, mineCount int) *Grid {
	params := Params{vertical, horizontal, mineCount}
	if err := params.Validate(); err != nil {
		panic(AssertionError{err.Error()})
	}
	g := &Grid{
		Vertical:   vertical,
		Horizontal: horizontal,
		MineCount:  mineCount,
		cells:      make([]Cell, vertical*horizontal),
	}
	for i := range g.cells {
		g.cells[i].Index = i
		g.cells[i].Coord = g.coord(i)
	}
	return g
}

func (g *Grid) Params() Params {
	return Params{g.Vertical, g.Horizontal, g.MineCount}
}

func (g *Grid) Phase() Phase {
	return g.phase
}

func (g *Grid) Populated() bool {
	return g.phase == PhasePopulated
}

func (g *Grid) Len() int {
	return len(g.cells)
}

func (g *Grid) InBounds(c Coord) bool {
	return 0 <= c.Row && c.Row < g.Vertical &&
		0 <= c.Col && c.Col < g.Horizontal
}

func (g *Grid) index(c Coord) int {
	return c.Row*g.Horizontal + c.Col
}

func (g *Grid) coord(i int) Coord {
	return Coord{i / g.Horizontal, i % g.Horizontal}
}

// At returns the cell at c.
//
// panics [AssertionError] if c is out of bounds
func (g *Grid) At(c Coord) *Cell {
	if !g.InBounds(c) {
		panic(AssertionError{fmt.Sprintf(
			"cell %s is out of bounds of a %dx%d grid", c, g.Vertical, g.Horizontal,
		)})
	}
	return &g.cells[g.index(c)]
}

// Neighbors returns the coordinates around c that lie inside the grid.
func (g *Grid) Neighbors(c Coord) []Coord {
	neighbors := make([]Coord, 0, len(neighborOffsets))
	for _, d := range neighborOffsets {
		if n := c.add(d); g.InBounds(n) {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// Cells yields every cell in row-major order.
func (g *Grid) Cells() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for i := range g.cells {
			if !yield(&g.cells[i]) {
				return
			}
		}
	}
}

func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.Vertical)
	for y := range g.Vertical {
		rows[y] = g.cells[y*g.Horizontal : (y+1)*g.Horizontal]
	}
	return rows
}

func (g *Grid) Clone() *Grid {
	clone := *g
	clone.cells = make([]Cell, len(g.cells))
	copy(clone.cells, g.cells)
	return &clone
}

// String renders what a player sees, one row per line.
func (g *Grid) String() string {
	var b strings.Builder
	for i := range g.cells {
		if i > 0 && i%g.Horizontal == 0 {
			b.WriteByte('\n')
		}
		b.WriteRune(g.cells[i].Rune())
	}
	return b.String()
}

// Layout renders mines as '*' and every other cell as '.', one row per line.
// [ParseGrid] reads it back.
func (g *Grid) Layout() string {
	var b strings.Builder
	for i := range g.cells {
		if i > 0 && i%g.Horizontal == 0 {
			b.WriteByte('\n')
		}
		if g.cells[i].Type == Mine {
			b.WriteByte('*')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
