package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookie        = "session"
	DefaultSessionMaxAge = 31 * 24 * time.Hour
)

type (
	// Session is the decoded content of the session cookie. The server
	// keeps no copy of it: every request decodes it again from the token
	// the client sends back.
	Session struct {
		id       string
		userID   *int64
		flashes  []string
		modified bool
	}

	// SessionCodec signs and verifies session tokens with the process
	// secret key.
	SessionCodec struct {
		key    []byte
		maxAge time.Duration
		now    func() time.Time
	}

	sessionClaims struct {
		jwt.RegisteredClaims
		UserID  *int64   `json:"uid,omitempty"`
		Flashes []string `json:"flashes,omitempty"`
	}
)

var (
	errEmptySecret = errors.New("auth: secret key cannot be empty")
)

func (s *Session) ID() string { return s.id }

func (s *Session) UserID() (int64, bool) {
	if s.userID == nil {
		return 0, false
	}
	return *s.userID, true
}

// SetUser starts a brand new session owned by id, dropping anything the
// previous session carried.
func (s *Session) SetUser(id int64) {
	s.Clear()
	s.id = uuid.NewString()
	s.userID = &id
}

func (s *Session) Clear() {
	s.id = ""
	s.userID = nil
	s.flashes = nil
	s.modified = true
}

func (s *Session) Flash(msg string) {
	s.flashes = append(s.flashes, msg)
	s.modified = true
}

// TakeFlashes returns the pending messages and removes them.
func (s *Session) TakeFlashes() []string {
	if len(s.flashes) == 0 {
		return nil
	}
	out := s.flashes
	s.flashes = nil
	s.modified = true
	return out
}

func (s *Session) Modified() bool { return s.modified }

func (s *Session) Empty() bool {
	return s.userID == nil && len(s.flashes) == 0
}

func NewSessionCodec(secret string, maxAge time.Duration) (*SessionCodec, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	return &SessionCodec{key: []byte(secret), maxAge: maxAge, now: time.Now}, nil
}

func (c *SessionCodec) MaxAge() time.Duration { return c.maxAge }

func (c *SessionCodec) Encode(s *Session) (string, error) {
	if s.id == "" {
		s.id = uuid.NewString()
	}
	now := c.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
		UserID:  s.userID,
		Flashes: s.flashes,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("auth: unable to sign session, cause %w", err)
	}
	return token, nil
}

// Decode never fails: a missing, malformed, expired or forged token is
// read as an empty session.
func (c *SessionCodec) Decode(token string) *Session {
	if token == "" {
		return &Session{}
	}
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return &Session{}
	}
	return &Session{
		id:      claims.ID,
		userID:  claims.UserID,
		flashes: claims.Flashes,
	}
}
