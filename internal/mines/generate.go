package mines

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Populate places g.MineCount mines anywhere but on excluded and computes the
// adjacency counts. It must be called exactly once per grid.
//
// panics [AssertionError] if the grid is already populated or excluded is out
// of bounds
func (g *Grid) Populate(excluded Coord, r *rand.Rand) {
	if g.Populated() {
		panic(AssertionError{"grid is already populated"})
	}
	if !g.InBounds(excluded) {
		panic(AssertionError{fmt.Sprintf("excluded cell %s is out of bounds", excluded)})
	}

	/*
	 * Rejection sampling: the mine density is always well under 50%, so the
	 * expected number of draws stays close to the mine count.
	 */
	chosen := make(map[Coord]struct{}, g.MineCount)
	positions := make([]Coord, 0, g.MineCount)
	for len(positions) < g.MineCount {
		c := Coord{r.IntN(g.Vertical), r.IntN(g.Horizontal)}
		if c == excluded {
			continue
		}
		if _, ok := chosen[c]; ok {
			continue
		}
		chosen[c] = struct{}{}
		positions = append(positions, c)
	}

	g.placeMines(positions)
}

func (g *Grid) placeMines(positions []Coord) {
	for _, c := range positions {
		g.At(c).Type = Mine
	}
	for _, c := range positions {
		for _, n := range g.Neighbors(c) {
			if cell := g.At(n); cell.Type != Mine {
				cell.Type++
			}
		}
	}
	g.phase = PhasePopulated
}

// ParseGrid builds a populated grid from a layout such as the one returned by
// [Grid.Layout]: one row per line, '*' for a mine, '.' for a safe cell.
func ParseGrid(layout string) (*Grid, error) {
	rows := strings.Split(strings.TrimSpace(layout), "\n")
	width := len(strings.TrimSpace(rows[0]))
	if width == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidLayout)
	}

	var positions []Coord
	for y, row := range rows {
		row = strings.TrimSpace(row)
		if len(row) != width {
			return nil, fmt.Errorf(
				"%w: row %d has %d cells, want %d", ErrInvalidLayout, y, len(row), width,
			)
		}
		for x, ch := range row {
			switch ch {
			case '*':
				positions = append(positions, Coord{y, x})
			case '.':
			default:
				return nil, fmt.Errorf(
					"%w: unexpected %q at %d:%d", ErrInvalidLayout, ch, y, x,
				)
			}
		}
	}

	params := Params{len(rows), width, len(positions)}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	g := NewGrid(params.Unpack())
	g.placeMines(positions)
	return g, nil
}
