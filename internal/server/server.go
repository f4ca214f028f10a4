// Package server serves games over websockets together with a small JSON API
// for levels, player tokens and best scores.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"

	"github.com/gorilla/schema"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/scores"
)

type Server struct {
	config   config.Config
	log      *logrus.Logger
	storage  scores.Storage
	tokens   *Tokens
	upgrader websocket.Upgrader
	dec      *schema.Decoder

	// engineOptions are appended to the options derived from config.
	engineOptions []mines.Option

	mu      sync.Mutex
	ledgers map[string]*sharedLedger
}

type sharedLedger struct {
	ledger *scores.Ledger
	users  int
}

func New(c config.Config, storage scores.Storage, log *logrus.Logger) *Server {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	s := &Server{
		config:  c,
		log:     log,
		storage: storage,
		tokens:  NewTokens(c),
		dec:     dec,
		ledgers: make(map[string]*sharedLedger),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	s.log.Debug("ws origin: ", origin)
	if len(s.config.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	return slices.Contains(s.config.AllowedOrigins, origin)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/levels", s.handleLevels)
	mux.HandleFunc("POST /v1/token", s.handleToken)
	mux.HandleFunc("GET /v1/scores", s.handleScores)
	mux.HandleFunc("GET /v1/play", s.handlePlay)

	return Wrap(mux,
		Auth(s.log, s.tokens),
		Cors(s.config.AllowedOrigins),
		Logging(s.log),
	)
}

// acquireLedger returns the ledger shared by every request of player, loading
// it on first use. It is forgotten once the last user calls release.
func (s *Server) acquireLedger(
	ctx context.Context, player string,
) (ledger *scores.Ledger, release func(), err error) {
	key := scores.PlayerKey(player)

	s.mu.Lock()
	defer s.mu.Unlock()

	shared, ok := s.ledgers[key]
	if !ok {
		ledger := scores.NewLedger(s.storage, key, s.log)
		if _, err := ledger.Load(ctx); err != nil {
			return nil, nil, err
		}
		shared = &sharedLedger{ledger: ledger}
		s.ledgers[key] = shared
	}
	shared.users++

	var once sync.Once
	release = func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			shared.users--
			if shared.users == 0 && s.ledgers[key] == shared {
				delete(s.ledgers, key)
			}
		})
	}
	return shared.ledger, release, nil
}

func (s *Server) newEngine(level mines.Level, record mines.ScoreRecorder) (*mines.Engine, error) {
	opts := []mines.Option{
		mines.WithLevels(s.config.Levels),
		mines.WithFlagBeforeFirstOpen(s.config.Game.FlagBeforeFirstOpen),
		mines.WithClampFlags(s.config.Game.ClampFlags),
		mines.WithScoreRecorder(record),
	}
	return mines.New(level, append(opts, s.engineOptions...)...)
}

func sendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Add("Content-Type", "application/json")
	return w.Write(payload)
}

func (s *Server) sendJSONOrLog(w http.ResponseWriter, v any) {
	if _, err := sendJSON(w, v); err != nil {
		s.log.WithError(err).WithField("response", v).Error("unable to send response")
	}
}

func (s *Server) sendErrorOrLog(w http.ResponseWriter, statusCode int, e error) {
	w.WriteHeader(statusCode)
	s.sendJSONOrLog(w, map[string]string{
		"error": e.Error(),
	})
}
