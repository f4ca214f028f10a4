package server

import (
	"net/http"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type tokenParams struct {
	Name string `schema:"name,required"`
}

type playParams struct {
	Level string `schema:"level"`
}

type tokenResponse struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	s.sendJSONOrLog(w, s.config.Levels)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var params tokenParams
	if err := s.dec.Decode(&params, r.URL.Query()); err != nil {
		s.sendErrorOrLog(w, http.StatusBadRequest, err)
		return
	}

	token, err := s.tokens.Sign(params.Name)
	if err != nil {
		s.sendErrorOrLog(w, http.StatusBadRequest, err)
		return
	}
	if err := s.tokens.SetCookies(w, token); err != nil {
		s.log.WithError(err).Error("unable to set player cookies")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s.log.WithField("player", params.Name).Info("issued player token")
	s.sendJSONOrLog(w, tokenResponse{Name: params.Name, Token: token})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	ledger, release, err := s.acquireLedger(r.Context(), player(r.Context()))
	if err != nil {
		s.log.WithError(err).Error("unable to load scores")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer release()
	s.sendJSONOrLog(w, ledger.Scores())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var params playParams
	if err := s.dec.Decode(&params, r.URL.Query()); err != nil {
		s.sendErrorOrLog(w, http.StatusBadRequest, err)
		return
	}
	level := mines.Easy
	if params.Level != "" {
		var err error
		if level, err = mines.ParseLevel(params.Level); err != nil {
			s.sendErrorOrLog(w, http.StatusBadRequest, err)
			return
		}
	}

	name := player(r.Context())
	ledger, release, err := s.acquireLedger(r.Context(), name)
	if err != nil {
		s.log.WithError(err).Error("unable to load scores")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer release()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade failed")
		return
	}

	sess := &session{
		server: s,
		conn:   conn,
		ledger: ledger,
		log: s.log.WithFields(map[string]any{
			"player":      name,
			"remote_addr": r.RemoteAddr,
		}),
	}
	if err := sess.run(r.Context(), level); err != nil {
		sess.log.WithError(err).Warn("session ended")
	}
}
