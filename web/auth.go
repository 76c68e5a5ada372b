package web

import (
	"net/http"

	"github.com/andrebq/jotter/auth"
	"github.com/julienschmidt/httprouter"
)

func (a *App) register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if r.Method == http.MethodPost {
		err := r.ParseForm()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		st := stateFrom(r.Context())
		_, err = a.auth.Register(r.Context(), st.conn, r.PostForm.Get("username"), r.PostForm.Get("password"))
		if err == nil {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		msg, ok := auth.UserMessage(err)
		if !ok {
			a.fail(w, r, err)
			return
		}
		st.session.Flash(msg)
	}
	a.render(w, r, "auth/register.html", page{Form: r.PostForm})
}

func (a *App) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if r.Method == http.MethodPost {
		err := r.ParseForm()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		st := stateFrom(r.Context())
		user, err := a.auth.Login(r.Context(), st.conn, st.session, r.PostForm.Get("username"), r.PostForm.Get("password"))
		if err == nil {
			st.user = &user
			http.Redirect(w, r, indexPath, http.StatusFound)
			return
		}
		msg, ok := auth.UserMessage(err)
		if !ok {
			a.fail(w, r, err)
			return
		}
		st.session.Flash(msg)
	}
	a.render(w, r, "auth/login.html", page{Form: r.PostForm})
}

func (a *App) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	st := stateFrom(r.Context())
	a.auth.Logout(st.session)
	st.user = nil
	http.Redirect(w, r, indexPath, http.StatusFound)
}
