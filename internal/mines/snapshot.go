package mines

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Snapshot records a board: where the mines are and what the player saw.
type Snapshot struct {
	Level   Level  `yaml:"level"`
	Status  Status `yaml:"status"`
	Elapsed int    `yaml:"elapsed"`
	Layout  string `yaml:"layout"`
	Board   string `yaml:"board"`
}

func (e *Engine) Snapshot() *Snapshot {
	return &Snapshot{
		Level:   e.level,
		Status:  e.status.Get(),
		Elapsed: e.elapsed.Get(),
		Layout:  e.grid.Layout(),
		Board:   e.grid.String(),
	}
}

func (s *Snapshot) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func LoadSnapshot(in []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := yaml.Unmarshal(in, &snapshot); err != nil {
		return nil, fmt.Errorf("unable to parse snapshot: %w", err)
	}
	return &snapshot, nil
}

// Replay starts a new game on the mine layout of a snapshot. The board is
// already populated, so the first open may hit a mine.
func (e *Engine) Replay(s *Snapshot) error {
	grid, err := ParseGrid(s.Layout)
	if err != nil {
		return err
	}
	level := s.Level
	if level == "" {
		level = e.level
	}
	e.reset(level, grid)
	e.board.Publish(BoardEvent{Kind: BoardPopulated})
	return nil
}
