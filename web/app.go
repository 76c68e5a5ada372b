// Package web exposes the blog over HTTP.
//
// Every request goes through withRequestState before reaching the router:
// the session cookie is decoded, a lazy store connection is attached, and
// the logged in user (if any) is resolved. Handlers read all of that back
// from the request context.
package web

import (
	"errors"
	"net/http"

	"github.com/andrebq/jotter/auth"
	"github.com/andrebq/jotter/internal/logutil"
	"github.com/andrebq/jotter/internal/metrics"
	"github.com/andrebq/jotter/store"
	"github.com/julienschmidt/httprouter"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	indexPath    = "/"
)

type (
	Options struct {
		DB           *store.DB
		Codec        *auth.SessionCodec
		Auth         *auth.Service
		Listing      *store.ListingCache
		Metrics      *metrics.Metrics
		SecureCookie bool
	}

	App struct {
		db           *store.DB
		codec        *auth.SessionCodec
		auth         *auth.Service
		listing      *store.ListingCache
		metrics      *metrics.Metrics
		secureCookie bool
		pages        *renderer
		assets       map[string]staticAsset
	}
)

func New(opts Options) (*App, error) {
	if opts.DB == nil || opts.Codec == nil || opts.Auth == nil {
		return nil, errors.New("web: database, session codec and auth service are required")
	}
	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}
	assets, err := loadStaticAssets()
	if err != nil {
		return nil, err
	}
	return &App{
		db:           opts.DB,
		codec:        opts.Codec,
		auth:         opts.Auth,
		listing:      opts.Listing,
		metrics:      opts.Metrics,
		secureCookie: opts.SecureCookie,
		pages:        pages,
		assets:       assets,
	}, nil
}

func (a *App) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/hello", a.hello)
	router.GET("/static/*filepath", a.static)
	if a.metrics != nil {
		router.Handler(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	router.GET(registerPath, a.register)
	router.POST(registerPath, a.register)
	router.GET(loginPath, a.login)
	router.POST(loginPath, a.login)
	router.GET("/auth/logout", a.logout)

	router.GET(indexPath, a.index)
	router.GET("/create", LoginRequired(a.create))
	router.POST("/create", LoginRequired(a.create))
	router.GET("/post/:id/update", LoginRequired(a.update))
	router.POST("/post/:id/update", LoginRequired(a.update))
	router.POST("/post/:id/delete", LoginRequired(a.delete))

	return logutil.RequestLogger(a.withRequestState(router))
}

func (a *App) hello(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello, Daria!"))
}

// fail answers with a 500 for errors the visitor cannot do anything about.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Msg("Request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
