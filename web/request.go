package web

import (
	"context"
	"net/http"

	"github.com/andrebq/jotter/auth"
	"github.com/andrebq/jotter/internal/logutil"
	"github.com/andrebq/jotter/store"
)

type (
	stateKey byte

	requestState struct {
		session *auth.Session
		conn    *store.Conn
		user    *store.User
	}

	// sessionWriter writes the session cookie right before the response
	// headers go out, since that is the last moment it can still be set.
	sessionWriter struct {
		http.ResponseWriter
		app         *App
		r           *http.Request
		state       *requestState
		wroteHeader bool
	}
)

var (
	requestStateKey = stateKey(1)
)

func stateFrom(ctx context.Context) *requestState {
	st, _ := ctx.Value(requestStateKey).(*requestState)
	return st
}

// CurrentUser returns the user bound to the request, if any.
func CurrentUser(ctx context.Context) (*store.User, bool) {
	st := stateFrom(ctx)
	if st == nil || st.user == nil {
		return nil, false
	}
	return st.user, true
}

func (a *App) withRequestState(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logutil.GetOrDefault(ctx)
		var token string
		if c, err := r.Cookie(auth.SessionCookie); err == nil {
			token = c.Value
		}
		st := &requestState{
			session: a.codec.Decode(token),
			conn:    a.db.Acquire(),
		}
		defer func() {
			if err := st.conn.Close(); err != nil {
				log.Warn().Err(err).Msg("Unable to release database connection")
			}
		}()

		user, err := a.auth.ResolveIdentity(ctx, st.conn, st.session)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		st.user = user
		if user != nil {
			ctx = logutil.WithLogger(ctx, log.With().Int64("user.id", user.ID).Logger())
		}

		sw := &sessionWriter{ResponseWriter: w, app: a, r: r, state: st}
		next.ServeHTTP(sw, r.WithContext(context.WithValue(ctx, requestStateKey, st)))
		if !sw.wroteHeader {
			sw.WriteHeader(http.StatusOK)
		}
	})
}

func (s *sessionWriter) WriteHeader(code int) {
	if !s.wroteHeader {
		s.wroteHeader = true
		s.app.saveSession(s.ResponseWriter, s.r, s.state.session)
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *sessionWriter) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

func (a *App) saveSession(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	if !sess.Modified() {
		return
	}
	cookie := &http.Cookie{
		Name:     auth.SessionCookie,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if sess.Empty() {
		cookie.MaxAge = -1
	} else {
		token, err := a.codec.Encode(sess)
		if err != nil {
			log := logutil.GetOrDefault(r.Context())
			log.Error().Err(err).Msg("Unable to encode session, response goes out without it")
			return
		}
		cookie.Value = token
		cookie.MaxAge = int(a.codec.MaxAge().Seconds())
	}
	http.SetCookie(w, cookie)
}
