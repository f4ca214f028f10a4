// Package protocol implements the line-oriented command format and the JSON
// events shared by the websocket server and the terminal client.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgs    = errors.New("invalid arguments")
	ErrOutOfBounds    = errors.New("cell out of bounds")
)

const (
	CommandNew     = "n"
	CommandOpen    = "o"
	CommandChord   = "c"
	CommandFlag    = "f"
	CommandClick   = "k"
	CommandRefresh = "g"
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	CommandNew:     1,
	CommandOpen:    2,
	CommandChord:   2,
	CommandFlag:    2,
	CommandClick:   2,
	CommandRefresh: 0,
}

type Command struct {
	Name  string
	Level mines.Level
	Coord mines.Coord
}

func (c Command) String() string {
	switch commandNargs[c.Name] {
	case 1:
		return fmt.Sprintf("%s %s", c.Name, c.Level)
	case 2:
		return fmt.Sprintf("%s %d %d", c.Name, c.Coord.Row, c.Coord.Col)
	default:
		return c.Name
	}
}

func parseCoord(args []string) (c mines.Coord, err error) {
	if c.Row, err = strconv.Atoi(args[0]); err != nil {
		return c, fmt.Errorf("%w: row must be an int", ErrInvalidArgs)
	}
	if c.Col, err = strconv.Atoi(args[1]); err != nil {
		return c, fmt.Errorf("%w: column must be an int", ErrInvalidArgs)
	}
	return c, nil
}

// Parse reads one command line such as "o 3 4" or "n hard".
func Parse(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}
	cmd := Command{Name: strings.ToLower(parts[0])}
	nargs, ok := commandNargs[cmd.Name]
	if !ok {
		return cmd, fmt.Errorf("%w: %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return cmd, fmt.Errorf(
			"%w: %s takes %d arguments, got %d", ErrInvalidArgs, cmd.Name, nargs, len(parts)-1,
		)
	}

	var err error
	switch nargs {
	case 1:
		cmd.Level, err = mines.ParseLevel(parts[1])
	case 2:
		cmd.Coord, err = parseCoord(parts[1:])
	}
	return cmd, err
}

// Execute applies cmd to e. Coordinates are checked here since the engine
// panics on cells outside the grid.
func Execute(e *mines.Engine, cmd Command) error {
	if commandNargs[cmd.Name] == 2 {
		p := e.Params()
		c := cmd.Coord
		if c.Row < 0 || c.Row >= p.Vertical || c.Col < 0 || c.Col >= p.Horizontal {
			return fmt.Errorf("%w: %s on a %s board", ErrOutOfBounds, c, p)
		}
	}

	switch cmd.Name {
	case CommandNew:
		return e.NewBoard(cmd.Level)
	case CommandOpen:
		e.Open(cmd.Coord)
	case CommandChord:
		e.Chord(cmd.Coord)
	case CommandFlag:
		e.ToggleFlag(cmd.Coord)
	case CommandClick:
		e.Click(cmd.Coord)
	case CommandRefresh:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	return nil
}
