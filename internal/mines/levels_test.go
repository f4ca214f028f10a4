package mines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLevelsYAMLMergesOverDefaults(t *testing.T) {
	levels := DefaultLevels()

	require.NoError(t, yaml.Unmarshal([]byte(`
easy: {mines: 12}
Hard: {vertical: 20, horizontal: 40, mines: 150}
`), &levels))

	assert.Equal(t, Params{Vertical: 9, Horizontal: 9, MineCount: 12}, levels[Easy])
	assert.Equal(t, DefaultLevels()[Medium], levels[Medium])
	assert.Equal(t, Params{Vertical: 20, Horizontal: 40, MineCount: 150}, levels[Hard])
	assert.NoError(t, levels.Validate())
	assert.Equal(t, 10, DefaultLevels()[Easy].MineCount)
}

func TestLevelsYAMLWithoutDefaults(t *testing.T) {
	var levels Levels

	require.NoError(t, yaml.Unmarshal([]byte("medium: {vertical: 4, horizontal: 5, mines: 3}\n"), &levels))
	assert.Equal(t, Levels{Medium: {Vertical: 4, Horizontal: 5, MineCount: 3}}, levels)
}

func TestLevelsYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown level", "insane: {mines: 3}\n"},
		{"not a map", "[easy, hard]\n"},
		{"bad params", "easy: {mines: many}\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			levels := DefaultLevels()
			assert.Error(t, yaml.Unmarshal([]byte(test.content), &levels))
		})
	}

	levels := DefaultLevels()
	err := yaml.Unmarshal([]byte("insane: {mines: 3}\n"), &levels)
	assert.ErrorIs(t, err, ErrUnknownLevel)
}
