package mines

import (
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/observe"
)

var Log = logrus.New()

type Status int8

const (
	NotStarted Status = iota
	Running
	Won
	Lost
)

var statusNames = [...]string{
	NotStarted: "notStarted",
	Running:    "running",
	Won:        "won",
	Lost:       "lost",
}

func (s Status) String() string {
	if 0 <= s && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int8(s))
}

// Over reports whether the game has ended.
func (s Status) Over() bool {
	return s == Won || s == Lost
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown game status %q", text)
}

type BoardEventKind int8

const (
	// BoardReplaced is published when a new empty board is created.
	BoardReplaced BoardEventKind = iota
	// BoardPopulated is published once the mines have been placed.
	BoardPopulated
	// BoardChanged is published after cells were opened, flagged or revealed.
	BoardChanged
)

func (k BoardEventKind) String() string {
	switch k {
	case BoardReplaced:
		return "replaced"
	case BoardPopulated:
		return "populated"
	default:
		return "changed"
	}
}

func (k BoardEventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// BoardEvent lists the cells mutated by a single step of a command.
type BoardEvent struct {
	Kind  BoardEventKind
	Cells []Coord
}

// ScoreRecorder receives the elapsed seconds of every won game.
type ScoreRecorder func(level Level, elapsedSeconds int)

type Option func(*Engine)

func WithLevels(levels Levels) Option {
	return func(e *Engine) { e.levels = levels }
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rnd = r }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithFlagBeforeFirstOpen controls whether cells may be flagged before the
// first cell is opened. Allowed by default.
func WithFlagBeforeFirstOpen(allow bool) Option {
	return func(e *Engine) { e.flagBeforeFirstOpen = allow }
}

// WithClampFlags refuses new flags once no flags are available. By default the
// available flag count may go negative.
func WithClampFlags(clamp bool) Option {
	return func(e *Engine) { e.clampFlags = clamp }
}

func WithScoreRecorder(record ScoreRecorder) Option {
	return func(e *Engine) { e.recordScore = record }
}

func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// Engine runs one game at a time. Commands never fail: commands that make no
// sense in the current state are ignored. Coordinates outside the grid are a
// contract violation and panic with [AssertionError].
//
// Engine is not safe for concurrent use.
type Engine struct {
	levels              Levels
	rnd                 *rand.Rand
	now                 func() time.Time
	flagBeforeFirstOpen bool
	clampFlags          bool
	recordScore         ScoreRecorder

	level     Level
	grid      *Grid
	opened    int // safe cells opened
	startedAt time.Time
	changed   []Coord

	board     *observe.Feed[BoardEvent]
	status    *observe.Value[Status]
	remaining *observe.Value[int]
	flags     *observe.Value[int]
	elapsed   *observe.Value[int]
}

// New creates an engine with an empty board for level.
func New(level Level, opts ...Option) (*Engine, error) {
	e := &Engine{
		levels:              DefaultLevels(),
		now:                 time.Now,
		flagBeforeFirstOpen: true,

		board:     observe.NewFeed(BoardEvent{Kind: BoardReplaced}),
		status:    observe.NewValue(NotStarted),
		remaining: observe.NewValue(0),
		flags:     observe.NewValue(0),
		elapsed:   observe.NewValue(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = NewRand()
	}
	if err := e.levels.Validate(); err != nil {
		return nil, err
	}
	if err := e.NewBoard(level); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Levels() Levels {
	return e.levels
}

func (e *Engine) Level() Level {
	return e.level
}

func (e *Engine) Params() Params {
	return e.grid.Params()
}

// Grid returns a copy of the current board.
func (e *Engine) Grid() *Grid {
	return e.grid.Clone()
}

// Cell returns a copy of the cell at c.
func (e *Engine) Cell(c Coord) Cell {
	return *e.grid.At(c)
}

func (e *Engine) Board() observe.Observable[BoardEvent] {
	return e.board
}

func (e *Engine) Status() observe.Observable[Status] {
	return e.status
}

func (e *Engine) RemainingEmptyCells() observe.Observable[int] {
	return e.remaining
}

func (e *Engine) FlagsAvailable() observe.Observable[int] {
	return e.flags
}

func (e *Engine) Elapsed() observe.Observable[int] {
	return e.elapsed
}

// NewBoard replaces the board with an empty one for level and resets the game.
func (e *Engine) NewBoard(level Level) error {
	params, ok := e.levels[level]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
	e.reset(level, NewGrid(params.Unpack()))
	return nil
}

func (e *Engine) reset(level Level, grid *Grid) {
	e.level = level
	e.grid = grid
	e.opened = 0
	e.startedAt = time.Time{}
	e.changed = nil

	Log.WithFields(logrus.Fields{
		"level":  level,
		"params": grid.Params().String(),
		"phase":  grid.Phase(),
	}).Debug("new board")

	e.board.Publish(BoardEvent{Kind: BoardReplaced})
	e.remaining.Set(grid.Len() - grid.MineCount)
	e.flags.Set(grid.MineCount)
	e.elapsed.Set(0)
	e.status.Set(NotStarted)
}

func (e *Engine) ensurePopulated(first Coord) {
	if e.grid.Populated() {
		return
	}
	e.grid.Populate(first, e.rnd)
	Log.WithField("first", first).Debug("mines placed")
	e.board.Publish(BoardEvent{Kind: BoardPopulated})
}

func (e *Engine) markChanged(c Coord) {
	e.changed = append(e.changed, c)
}

// flush publishes the cells changed since the last flush.
func (e *Engine) flush() {
	if len(e.changed) == 0 {
		return
	}
	cells := e.changed
	e.changed = nil
	e.board.Publish(BoardEvent{Kind: BoardChanged, Cells: cells})
}

func (e *Engine) elapsedSeconds() int {
	if e.startedAt.IsZero() {
		return 0
	}
	return int(e.now().Sub(e.startedAt) / time.Second)
}

// Tick refreshes the elapsed seconds while the game is running.
func (e *Engine) Tick() {
	if e.status.Get() == Running {
		e.elapsed.Set(e.elapsedSeconds())
	}
}

func (e *Engine) start() {
	if e.status.Get() != NotStarted {
		return
	}
	e.startedAt = e.now()
	e.status.Set(Running)
}

func (e *Engine) updateRemaining() {
	e.remaining.Set(e.grid.Len() - e.grid.MineCount - e.opened)
}

// lose reveals every mine that was not flagged and marks wrong flags.
func (e *Engine) lose() {
	for cell := range e.grid.Cells() {
		switch {
		case cell.Type == Mine && !cell.Flagged():
			cell.Label = LabelMine
			cell.IsMine = true
			cell.IsOpened = true
			e.markChanged(cell.Coord)
		case cell.Type != Mine && cell.Flagged():
			cell.IsWrongFlag = true
			e.markChanged(cell.Coord)
		}
	}
	e.flush()
	e.status.Set(Lost)
	Log.WithField("level", e.level).Debug("game lost")
}

// win flags every remaining mine and hands the elapsed time to the score
// recorder.
func (e *Engine) win() {
	for cell := range e.grid.Cells() {
		if cell.Type == Mine && !cell.IsOpened && !cell.Flagged() {
			cell.Label = LabelFlag
			e.markChanged(cell.Coord)
		}
	}
	e.flush()
	e.flags.Set(0)

	elapsed := e.elapsedSeconds()
	e.elapsed.Set(elapsed)
	e.status.Set(Won)
	Log.WithFields(logrus.Fields{
		"level":   e.level,
		"elapsed": elapsed,
	}).Debug("game won")

	if e.recordScore != nil {
		e.recordScore(e.level, elapsed)
	}
}

// ToggleFlag puts a flag on a closed cell or removes it.
func (e *Engine) ToggleFlag(c Coord) {
	cell := e.grid.At(c)
	if e.status.Get().Over() || cell.IsOpened {
		return
	}
	if !e.flagBeforeFirstOpen && !e.grid.Populated() {
		return
	}

	if cell.Flagged() {
		cell.Label = LabelEmpty
		e.markChanged(c)
		e.flush()
		e.flags.Set(e.flags.Get() + 1)
		return
	}

	if e.clampFlags && e.flags.Get() <= 0 {
		return
	}
	cell.Label = LabelFlag
	e.markChanged(c)
	e.flush()
	e.flags.Set(e.flags.Get() - 1)
}
