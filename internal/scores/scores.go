// Package scores keeps the best completion time of every level.
package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/observe"
	"github.com/vancomm/minesweeper-engine/internal/store"
)

const DefaultKey = "minesweeperBestScores"

// PlayerKey namespaces the record of a single player.
func PlayerKey(player string) string {
	if player == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + player
}

// BestScores holds the best time in seconds per level, nil when the level was
// never won.
type BestScores struct {
	Easy   *int `json:"easy"`
	Medium *int `json:"medium"`
	Hard   *int `json:"hard"`
}

func (b BestScores) Get(level mines.Level) *int {
	switch level {
	case mines.Easy:
		return b.Easy
	case mines.Medium:
		return b.Medium
	case mines.Hard:
		return b.Hard
	default:
		return nil
	}
}

func (b *BestScores) set(level mines.Level, seconds int) {
	switch level {
	case mines.Easy:
		b.Easy = &seconds
	case mines.Medium:
		b.Medium = &seconds
	case mines.Hard:
		b.Hard = &seconds
	}
}

func (b BestScores) Fields() logrus.Fields {
	fields := logrus.Fields{}
	for _, level := range []mines.Level{mines.Easy, mines.Medium, mines.Hard} {
		if s := b.Get(level); s != nil {
			fields[string(level)] = *s
		} else {
			fields[string(level)] = nil
		}
	}
	return fields
}

// Storage persists the ledger record. Get returns [store.ErrNotFound] when the
// key is absent.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Ledger reads, compares and writes the best scores record under one key. It
// is safe for concurrent use. Subscribers are notified in update order outside
// the record lock, so they may call [Ledger.Scores] but must not record.
type Ledger struct {
	mu      sync.Mutex
	storage Storage
	key     string
	log     *logrus.Logger
	current BestScores

	// pub orders notifications; it is taken before mu is released.
	pub    sync.Mutex
	scores *observe.Feed[BestScores]
}

func NewLedger(storage Storage, key string, log *logrus.Logger) *Ledger {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ledger{
		storage: storage,
		key:     key,
		log:     log,
		scores:  observe.NewFeed(BestScores{}),
	}
}

func (l *Ledger) Key() string {
	return l.key
}

// read returns empty scores together with any error.
func (l *Ledger) read(ctx context.Context) (BestScores, error) {
	var scores BestScores
	data, err := l.storage.Get(ctx, l.key)
	if err != nil {
		return scores, err
	}
	if err := json.Unmarshal(data, &scores); err != nil {
		return BestScores{}, fmt.Errorf("corrupt record: %w", err)
	}
	return scores, nil
}

func (l *Ledger) write(ctx context.Context, scores BestScores) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	if err := l.storage.Set(ctx, l.key, data); err != nil {
		return fmt.Errorf("unable to write scores %q: %w", l.key, err)
	}
	return nil
}

// Load reads the record, writing an empty one when there is none yet. An
// unreadable record is treated as empty.
func (l *Ledger) Load(ctx context.Context) (BestScores, error) {
	l.mu.Lock()

	scores, err := l.read(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := l.write(ctx, scores); err != nil {
			l.mu.Unlock()
			return scores, err
		}
	case err != nil:
		l.log.WithError(err).WithField("key", l.key).Warn("unable to read scores")
	}

	l.publish(scores)
	return scores, nil
}

// RecordCompletion stores seconds as the new best time of level if there is
// no time yet or seconds is strictly lower. It reports whether the record was
// updated.
func (l *Ledger) RecordCompletion(
	ctx context.Context, level mines.Level, seconds int,
) (bool, error) {
	if _, err := mines.ParseLevel(string(level)); err != nil {
		return false, err
	}

	l.mu.Lock()

	scores, err := l.read(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		l.log.WithError(err).WithField("key", l.key).Warn("unable to read scores")
	}
	if best := scores.Get(level); best != nil && *best <= seconds {
		l.mu.Unlock()
		return false, nil
	}

	scores.set(level, seconds)
	if err := l.write(ctx, scores); err != nil {
		l.mu.Unlock()
		return false, err
	}
	l.log.WithFields(logrus.Fields{
		"key":     l.key,
		"level":   level,
		"seconds": seconds,
	}).Info("new best score")

	l.publish(scores)
	return true, nil
}

// publish must be called with mu held and releases it.
func (l *Ledger) publish(scores BestScores) {
	l.current = scores
	l.pub.Lock()
	l.mu.Unlock()
	defer l.pub.Unlock()

	l.scores.Publish(scores)
}

// Scores returns the latest loaded or recorded scores.
func (l *Ledger) Scores() BestScores {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Subscribe calls fn with the current scores and after every update.
func (l *Ledger) Subscribe(fn func(BestScores)) (cancel func()) {
	l.pub.Lock()
	defer l.pub.Unlock()

	unsubscribe := l.scores.Subscribe(fn)
	return func() {
		l.pub.Lock()
		defer l.pub.Unlock()
		unsubscribe()
	}
}

// Recorder adapts the ledger to [mines.WithScoreRecorder]. Failures are
// logged since the engine cannot act on them.
func (l *Ledger) Recorder(ctx context.Context) mines.ScoreRecorder {
	return func(level mines.Level, seconds int) {
		if _, err := l.RecordCompletion(ctx, level, seconds); err != nil {
			l.log.WithError(err).WithField("key", l.key).Error("unable to record score")
		}
	}
}
