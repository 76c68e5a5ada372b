package auth

import (
	"context"
	"errors"

	"github.com/andrebq/jotter/internal/logutil"
	"github.com/andrebq/jotter/store"
)

type (
	// UserStore is the slice of *store.Conn the service needs.
	UserStore interface {
		InsertUser(ctx context.Context, username, passwordHash string) (int64, error)
		FindUserByUsername(ctx context.Context, username string) (store.User, error)
		FindUserByID(ctx context.Context, id int64) (store.User, error)
	}

	// Recorder receives one call per register or login attempt.
	Recorder interface {
		AuthOutcome(op, outcome string)
	}

	Service struct {
		hasher   Hasher
		recorder Recorder
	}

	nopRecorder struct{}
)

func (nopRecorder) AuthOutcome(string, string) {}

func NewService(hasher Hasher, recorder Recorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{hasher: hasher, recorder: recorder}
}

// Register creates a new account. It does not log the user in.
func (s *Service) Register(ctx context.Context, users UserStore, username, password string) (int64, error) {
	log := logutil.GetOrDefault(ctx)
	switch {
	case username == "":
		s.recorder.AuthOutcome("register", "missing_username")
		return 0, MissingUsername{}
	case password == "":
		s.recorder.AuthOutcome("register", "missing_password")
		return 0, MissingPassword{}
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}
	id, err := users.InsertUser(ctx, username, hash)
	if errors.Is(err, store.DuplicateUsername{Username: username}) {
		s.recorder.AuthOutcome("register", "username_taken")
		log.Info().Str("user.name", username).Msg("Registration rejected, username taken")
		return 0, UsernameTaken{Username: username}
	} else if err != nil {
		s.recorder.AuthOutcome("register", "error")
		return 0, err
	}
	s.recorder.AuthOutcome("register", "ok")
	log.Info().Str("user.name", username).Int64("user.id", id).Msg("User registered")
	return id, nil
}

// Login checks the credentials and, when they match, binds sess to the
// user after throwing away whatever it held before.
//
// The error tells apart an unknown username from a bad password.
func (s *Service) Login(ctx context.Context, users UserStore, sess *Session, username, password string) (store.User, error) {
	log := logutil.GetOrDefault(ctx)
	user, err := users.FindUserByUsername(ctx, username)
	var notFound store.UserNotFound
	if errors.As(err, &notFound) {
		s.recorder.AuthOutcome("login", "unknown_username")
		log.Info().Str("user.name", username).Msg("Login rejected, unknown username")
		return store.User{}, InvalidCredentials{Field: "username"}
	} else if err != nil {
		s.recorder.AuthOutcome("login", "error")
		return store.User{}, err
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		s.recorder.AuthOutcome("login", "bad_password")
		log.Info().Str("user.name", username).Msg("Login rejected, bad password")
		return store.User{}, InvalidCredentials{Field: "password"}
	}
	sess.SetUser(user.ID)
	s.recorder.AuthOutcome("login", "ok")
	log.Info().Str("user.name", username).Int64("user.id", user.ID).Msg("User logged in")
	return user, nil
}

func (s *Service) Logout(sess *Session) {
	sess.Clear()
}

// ResolveIdentity returns the user that owns sess, or nil when there is
// none. A session pointing to a user that no longer exists is left alone.
func (s *Service) ResolveIdentity(ctx context.Context, users UserStore, sess *Session) (*store.User, error) {
	id, ok := sess.UserID()
	if !ok {
		return nil, nil
	}
	user, err := users.FindUserByID(ctx, id)
	var notFound store.UserNotFound
	if errors.As(err, &notFound) {
		log := logutil.GetOrDefault(ctx)
		log.Debug().Int64("user.id", id).Msg("Session refers to a missing user")
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}
