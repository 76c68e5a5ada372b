package web

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// LoginRequired sends anonymous visitors to the login page without
// calling next.
func LoginRequired(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := CurrentUser(r.Context()); !ok {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		next(w, r, ps)
	}
}
