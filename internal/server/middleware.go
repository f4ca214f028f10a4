package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Middleware func(http.Handler) http.Handler

func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for _, mw := range mws {
		h = mw(h)
	}
	return h
}

// Cors allows every origin when origins is empty.
func Cors(origins []string) Middleware {
	options := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
	if len(origins) == 0 {
		options.AllowOriginFunc = func(origin string) bool {
			return true
		}
	}
	return cors.New(options).Handler
}

type loggingWriter struct {
	http.ResponseWriter
	statusCode int
	hijacked   bool
}

func (w *loggingWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *loggingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	w.hijacked = true
	return h.Hijack()
}

func Logging(log *logrus.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debug(r.Method + " " + r.URL.RequestURI())
			start := time.Now()

			wrapped := &loggingWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.WithFields(logrus.Fields{
				"status_code": wrapped.statusCode,
				"hijacked":    wrapped.hijacked,
				"remote_addr": r.RemoteAddr,
				"xff_header":  r.Header.Get("X-Forwarded-For"),
				"method":      r.Method,
				"uri":         r.URL.RequestURI(),
				"duration_ms": int64(time.Since(start) / time.Millisecond),
			}).Info("handled request")
		})
	}
}

type ctxKey int

const ctxPlayerClaims ctxKey = iota

// Auth puts the claims of a valid player token into the request context.
// Requests without a token are served as guests.
func Auth(log *logrus.Logger, tokens *Tokens) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.FromRequest(r)
			if errors.Is(err, ErrNoToken) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				log.WithError(err).Debug("rejected player token")
				tokens.ClearCookies(w)
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ctxPlayerClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func playerClaims(ctx context.Context) (*PlayerClaims, bool) {
	claims, ok := ctx.Value(ctxPlayerClaims).(*PlayerClaims)
	return claims, ok
}

// player returns the name of the authenticated player or "" for guests.
func player(ctx context.Context) string {
	if claims, ok := playerClaims(ctx); ok {
		return claims.Subject
	}
	return ""
}
