package mines

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	// Log.SetLevel(logrus.DebugLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	m.Run()
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 2))
}

// countMines counts the mines around c without using Grid.Neighbors.
func countMines(g *Grid, c Coord) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			y, x := c.Row+dy, c.Col+dx
			if y < 0 || y >= g.Vertical || x < 0 || x >= g.Horizontal {
				continue
			}
			if g.cells[y*g.Horizontal+x].Type == Mine {
				n++
			}
		}
	}
	return n
}
