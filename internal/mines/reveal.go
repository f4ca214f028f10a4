package mines

import (
	"github.com/gammazero/deque"
)

// Open opens the cell at c. Opening a cell without adjacent mines opens the
// whole connected empty region around it. The first open of a board places the
// mines, never on c.
func (e *Engine) Open(c Coord) {
	cell := e.grid.At(c)
	if e.status.Get().Over() || cell.Flagged() || cell.IsOpened {
		return
	}

	e.ensurePopulated(c)

	if cell.Type == Mine {
		e.explode(cell)
		e.flush()
		e.lose()
		return
	}

	e.openSafe(c)
	e.flush()
	e.settle()
}

// Chord opens every closed, unflagged neighbor of an opened numbered cell once
// the cell has as many flagged neighbors as adjacent mines. A wrongly placed
// flag does not stop the chord: every safe neighbor is opened before the game
// is lost.
func (e *Engine) Chord(c Coord) {
	cell := e.grid.At(c)
	if e.status.Get().Over() || !cell.IsOpened || cell.Type <= 0 {
		return
	}

	neighbors := e.grid.Neighbors(c)
	flagged := 0
	for _, n := range neighbors {
		if e.grid.At(n).Flagged() {
			flagged++
		}
	}
	if flagged != int(cell.Type) {
		return
	}

	var hit []*Cell
	for _, n := range neighbors {
		neighbor := e.grid.At(n)
		if neighbor.Flagged() || neighbor.IsOpened {
			continue
		}
		if neighbor.Type == Mine {
			hit = append(hit, neighbor)
			continue
		}
		e.openSafe(n)
	}
	e.flush()

	if len(hit) == 0 {
		e.settle()
		return
	}

	e.updateRemaining()
	for _, mine := range hit {
		e.explode(mine)
	}
	e.flush()
	e.lose()
}

// Click is the primary action on a cell: it opens a closed cell and chords an
// opened one.
func (e *Engine) Click(c Coord) {
	if e.grid.At(c).IsOpened {
		e.Chord(c)
	} else {
		e.Open(c)
	}
}

// settle publishes the counters after safe cells were opened and moves the
// game to running or won.
func (e *Engine) settle() {
	e.updateRemaining()
	e.start()
	if e.remaining.Get() == 0 {
		e.win()
	}
}

func (e *Engine) explode(cell *Cell) {
	cell.IsMineExploded = true
	e.markChanged(cell.Coord)
	Log.WithField("cell", cell.Coord).Debug("mine exploded")
}

// reveal opens a single safe cell.
func (e *Engine) reveal(cell *Cell) {
	cell.IsOpened = true
	if cell.Type > 0 {
		cell.Label = cell.Type.String()
	}
	e.opened++
	e.markChanged(cell.Coord)
}

func (e *Engine) openSafe(c Coord) {
	cell := e.grid.At(c)
	e.reveal(cell)
	if cell.Type == 0 {
		e.cascade(c)
	}
}

// cascade opens the empty region around seed breadth-first, together with the
// numbered cells bordering it. Flagged cells are never opened and every cell
// is visited at most once.
func (e *Engine) cascade(seed Coord) {
	visited := map[Coord]struct{}{seed: {}}
	queue := deque.New[Coord]()
	queue.PushBack(seed)

	for queue.Len() > 0 {
		center := queue.PopFront()
		for _, n := range e.grid.Neighbors(center) {
			if _, ok := visited[n]; ok {
				continue
			}
			visited[n] = struct{}{}

			cell := e.grid.At(n)
			if cell.Flagged() || cell.IsOpened {
				continue
			}
			e.reveal(cell)
			if cell.Type == 0 {
				queue.PushBack(n)
			}
		}
	}
}
