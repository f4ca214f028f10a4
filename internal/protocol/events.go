package protocol

import (
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/scores"
)

const (
	EventBoard     = "board"
	EventStatus    = "status"
	EventRemaining = "remaining"
	EventFlags     = "flags"
	EventElapsed   = "elapsed"
	EventScores    = "scores"
	EventError     = "error"

	// BoardFull carries every cell of the board.
	BoardFull = "full"
)

// CellView is what a client may know about a cell: mine positions stay hidden
// until the game is lost.
type CellView struct {
	Row            int    `json:"row"`
	Col            int    `json:"col"`
	Label          string `json:"label"`
	IsOpened       bool   `json:"is_opened"`
	IsMine         bool   `json:"is_mine,omitempty"`
	IsMineExploded bool   `json:"is_mine_exploded,omitempty"`
	IsWrongFlag    bool   `json:"is_wrong_flag,omitempty"`
}

func NewCellView(c mines.Cell) CellView {
	return CellView{
		Row:            c.Coord.Row,
		Col:            c.Coord.Col,
		Label:          c.Label,
		IsOpened:       c.IsOpened,
		IsMine:         c.IsMine,
		IsMineExploded: c.IsMineExploded,
		IsWrongFlag:    c.IsWrongFlag,
	}
}

type Event struct {
	Type   string             `json:"type"`
	Kind   string             `json:"kind,omitempty"`
	Level  mines.Level        `json:"level,omitempty"`
	Params *mines.Params      `json:"params,omitempty"`
	Cells  []CellView         `json:"cells,omitempty"`
	Status string             `json:"status,omitempty"`
	Value  *int               `json:"value,omitempty"`
	Scores *scores.BestScores `json:"scores,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func BoardEvent(e *mines.Engine, ev mines.BoardEvent) Event {
	event := Event{Type: EventBoard, Kind: ev.Kind.String()}
	switch ev.Kind {
	case mines.BoardReplaced:
		params := e.Params()
		event.Level = e.Level()
		event.Params = &params
	case mines.BoardChanged:
		event.Cells = make([]CellView, 0, len(ev.Cells))
		for _, c := range ev.Cells {
			event.Cells = append(event.Cells, NewCellView(e.Cell(c)))
		}
	}
	return event
}

// FullBoard describes the whole board, for clients that connect or refresh
// mid-game.
func FullBoard(e *mines.Engine) Event {
	params := e.Params()
	event := Event{
		Type:   EventBoard,
		Kind:   BoardFull,
		Level:  e.Level(),
		Params: &params,
		Cells:  make([]CellView, 0, params.Cells()),
	}
	for cell := range e.Grid().Cells() {
		event.Cells = append(event.Cells, NewCellView(*cell))
	}
	return event
}

func StatusEvent(s mines.Status) Event {
	return Event{Type: EventStatus, Status: s.String()}
}

func CounterEvent(kind string, value int) Event {
	return Event{Type: kind, Value: &value}
}

func ScoresEvent(b scores.BestScores) Event {
	return Event{Type: EventScores, Scores: &b}
}

func ErrorEvent(err error) Event {
	return Event{Type: EventError, Error: err.Error()}
}

// Attach forwards every change notification of e to send, starting with the
// full board and the current counters, and returns a func that detaches it.
func Attach(e *mines.Engine, send func(Event)) (cancel func()) {
	attached := false
	cancels := []func(){
		e.Board().Subscribe(func(ev mines.BoardEvent) {
			switch {
			case !attached:
				attached = true
				send(FullBoard(e))
			case ev.Kind != mines.BoardPopulated:
				send(BoardEvent(e, ev))
			}
		}),
		e.RemainingEmptyCells().Subscribe(func(n int) { send(CounterEvent(EventRemaining, n)) }),
		e.FlagsAvailable().Subscribe(func(n int) { send(CounterEvent(EventFlags, n)) }),
		e.Elapsed().Subscribe(func(n int) { send(CounterEvent(EventElapsed, n)) }),
		e.Status().Subscribe(func(s mines.Status) { send(StatusEvent(s)) }),
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
