package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vancomm/minesweeper-engine/internal/config"
)

var (
	ErrNoToken    = errors.New("no player token")
	ErrBadToken   = errors.New("malformed player token")
	ErrBadName    = errors.New("player name must be 1 to 32 letters, digits, '-' or '_'")
	signingMethod = jwt.SigningMethodHS256
)

type PlayerClaims struct {
	jwt.RegisteredClaims
}

// Tokens signs player tokens and stores them in a pair of cookies: "auth"
// holds header and payload and is readable by scripts, "sign" holds the
// signature and is http-only.
type Tokens struct {
	secret   []byte
	lifetime time.Duration
	domain   string
	secure   bool
	sameSite http.SameSite
	now      func() time.Time
}

func NewTokens(c config.Config) *Tokens {
	return &Tokens{
		secret:   []byte(c.JWT.Secret),
		lifetime: c.JWT.TokenLifetime.Duration,
		domain:   c.Cookies.Domain,
		secure:   c.Production(),
		sameSite: c.CookieSameSite(),
		now:      time.Now,
	}
}

func ValidateName(name string) error {
	if len(name) == 0 || len(name) > 32 {
		return ErrBadName
	}
	for _, c := range name {
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' ||
			'0' <= c && c <= '9' || c == '-' || c == '_') {
			return ErrBadName
		}
	}
	return nil
}

func (t *Tokens) Sign(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	now := t.now()
	claims := PlayerClaims{
		jwt.RegisteredClaims{
			Subject:   name,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(signingMethod, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(tokenString string) (*PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&PlayerClaims{},
		func(token *jwt.Token) (any, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok || ValidateName(claims.Subject) != nil {
		return nil, ErrBadToken
	}
	return claims, nil
}

// FromRequest reads the token from the Authorization header or, failing that,
// from the cookie pair.
func (t *Tokens) FromRequest(r *http.Request) (*PlayerClaims, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return nil, ErrBadToken
		}
		return t.Parse(tokenString)
	}

	authCookie, err := r.Cookie("auth")
	if err != nil {
		return nil, ErrNoToken
	}
	signCookie, err := r.Cookie("sign")
	if err != nil {
		return nil, ErrNoToken
	}
	return t.Parse(authCookie.Value + "." + signCookie.Value)
}

func (t *Tokens) SetCookies(w http.ResponseWriter, token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%w: %d parts", ErrBadToken, len(parts))
	}
	header, payload, signature := parts[0], parts[1], parts[2]
	expires := t.now().Add(t.lifetime)
	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Path:     "/",
		Value:    header + "." + payload,
		Expires:  expires,
		Domain:   t.domain,
		Secure:   t.secure,
		SameSite: t.sameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "sign",
		Path:     "/",
		Value:    signature,
		Expires:  expires,
		HttpOnly: true,
		Domain:   t.domain,
		Secure:   t.secure,
		SameSite: t.sameSite,
	})
	return nil
}

func (t *Tokens) ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{"auth", "sign"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Path:     "/",
			Value:    "delete",
			MaxAge:   -1,
			HttpOnly: name == "sign",
			Domain:   t.domain,
			Secure:   t.secure,
			SameSite: t.sameSite,
		})
	}
}
