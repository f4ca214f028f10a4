package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/protocol"
	"github.com/vancomm/minesweeper-engine/internal/scores"
)

const writeWait = 10 * time.Second

// session is one websocket connection playing on its own engine. Everything
// touching the engine runs on the goroutine executing run. Score updates from
// every session of the player arrive through the ledger subscription.
type session struct {
	server *Server
	conn   *websocket.Conn
	ledger *scores.Ledger
	log    *logrus.Entry

	engine    *mines.Engine
	stopwatch *mines.Stopwatch
	outbox    []protocol.Event
}

func (s *session) queue(ev protocol.Event) {
	s.outbox = append(s.outbox, ev)
}

func (s *session) flush() error {
	for _, ev := range s.outbox {
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(ev); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	s.outbox = s.outbox[:0]
	return nil
}

func (s *session) recordScore(ctx context.Context) mines.ScoreRecorder {
	return func(level mines.Level, seconds int) {
		if _, err := s.ledger.RecordCompletion(ctx, level, seconds); err != nil {
			s.log.WithError(err).Error("unable to record score")
			s.queue(protocol.ErrorEvent(err))
		}
	}
}

// saveSnapshot writes the finished game to the snapshots directory.
func (s *session) saveSnapshot() {
	dir := s.server.config.SnapshotsDir
	if dir == "" {
		return
	}
	snapshot := s.engine.Snapshot()
	data, err := snapshot.Marshal()
	if err != nil {
		s.log.WithError(err).Error("unable to encode snapshot")
		return
	}
	name := fmt.Sprintf("%s-%s-%s.yaml",
		time.Now().UTC().Format("20060102T150405.000"), snapshot.Level, snapshot.Status,
	)
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.WithError(err).Error("unable to create snapshots dir")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.WithError(err).Error("unable to save snapshot")
		return
	}
	s.log.WithField("path", path).Debug("saved snapshot")
}

func (s *session) handle(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	s.log.Debug("> ", line)

	cmd, err := protocol.Parse(line)
	if err == nil {
		err = protocol.Execute(s.engine, cmd)
	}
	if err != nil {
		s.log.WithError(err).Debug("rejected command")
		s.queue(protocol.ErrorEvent(err))
		return
	}
	if cmd.Name == protocol.CommandRefresh {
		s.queue(protocol.FullBoard(s.engine))
		s.queue(protocol.ScoresEvent(s.ledger.Scores()))
	}
}

// read forwards text messages to lines until the connection fails.
func (s *session) read(ctx context.Context, lines chan<- string, errc chan<- error) {
	for {
		mt, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway,
			) {
				err = nil
			}
			errc <- err
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		select {
		case lines <- string(message):
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) run(ctx context.Context, level mines.Level) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.conn.Close()

	var err error
	s.engine, err = s.server.newEngine(level, s.recordScore(ctx))
	if err != nil {
		return err
	}
	s.log = s.log.WithField("level", level)
	s.log.Info("session started")

	s.stopwatch = mines.NewStopwatch(s.server.config.Game.TickInterval.Duration)
	defer s.stopwatch.Stop()
	defer s.stopwatch.Follow(s.engine.Status())()
	defer protocol.Attach(s.engine, s.queue)()
	defer s.engine.Status().Subscribe(func(status mines.Status) {
		if status.Over() {
			s.saveSnapshot()
		}
	})()

	// holds only the newest update; the ledger notifies one update at a time
	best := make(chan scores.BestScores, 1)
	defer s.ledger.Subscribe(func(update scores.BestScores) {
		select {
		case <-best:
		default:
		}
		best <- update
	})()
	s.queue(protocol.ScoresEvent(<-best))

	if err := s.flush(); err != nil {
		return err
	}

	lines := make(chan string)
	errc := make(chan error, 1)
	go s.read(ctx, lines, errc)

	for {
		select {
		case <-ctx.Done():
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait),
			)
			return nil
		case err := <-errc:
			s.log.Info("session closed")
			return err
		case message := <-lines:
			for _, line := range strings.Split(message, "\n") {
				s.handle(line)
			}
		case <-s.stopwatch.C():
			s.engine.Tick()
		case update := <-best:
			s.queue(protocol.ScoresEvent(update))
		}
		if err := s.flush(); err != nil {
			return err
		}
	}
}
