package mines

import (
	"fmt"
	"maps"
	"strings"

	"gopkg.in/yaml.v3"
)

type Level string

const (
	Easy   Level = "easy"
	Medium Level = "medium"
	Hard   Level = "hard"
)

func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case Easy, Medium, Hard:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

type Params struct {
	Vertical   int `json:"vertical" yaml:"vertical"`
	Horizontal int `json:"horizontal" yaml:"horizontal"`
	MineCount  int `json:"mines" yaml:"mines"`
}

func (p Params) Unpack() (vertical, horizontal, mineCount int) {
	return p.Vertical, p.Horizontal, p.MineCount
}

func (p Params) String() string {
	return fmt.Sprintf("%dx%d(%d)", p.Vertical, p.Horizontal, p.MineCount)
}

func (p Params) Cells() int {
	return p.Vertical * p.Horizontal
}

func (p Params) Validate() error {
	if p.Vertical < 1 || p.Horizontal < 1 {
		return fmt.Errorf("%w: %s has no cells", ErrInvalidParams, p)
	}
	if p.MineCount < 0 || p.MineCount >= p.Cells() {
		return fmt.Errorf(
			"%w: %s needs between 0 and %d mines", ErrInvalidParams, p, p.Cells()-1,
		)
	}
	return nil
}

type Levels map[Level]Params

func DefaultLevels() Levels {
	return Levels{
		Easy:   {Vertical: 9, Horizontal: 9, MineCount: 10},
		Medium: {Vertical: 16, Horizontal: 16, MineCount: 40},
		Hard:   {Vertical: 16, Horizontal: 30, MineCount: 99},
	}
}

func (l Levels) Validate() error {
	for level, params := range l {
		if err := params.Validate(); err != nil {
			return fmt.Errorf("level %s: %w", level, err)
		}
	}
	return nil
}

// UnmarshalYAML merges the decoded levels over the current ones, so a level
// given as {mines: 12} keeps its dimensions.
func (l *Levels) UnmarshalYAML(node *yaml.Node) error {
	var raw map[Level]yaml.Node
	if err := node.Decode(&raw); err != nil {
		return err
	}
	merged := maps.Clone(*l)
	if merged == nil {
		merged = make(Levels, len(raw))
	}
	for name, value := range raw {
		level, err := ParseLevel(string(name))
		if err != nil {
			return err
		}
		params := merged[level]
		if err := value.Decode(&params); err != nil {
			return fmt.Errorf("level %s: %w", level, err)
		}
		merged[level] = params
	}
	*l = merged
	return nil
}
