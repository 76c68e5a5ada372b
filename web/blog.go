package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/andrebq/jotter/internal/logutil"
	"github.com/andrebq/jotter/store"
	"github.com/julienschmidt/httprouter"
)

const (
	titleRequired = "Title is required."
)

func (a *App) index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	st := stateFrom(r.Context())
	posts, err := a.listing.Posts(r.Context(), st.conn)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, r, "blog/index.html", page{Posts: posts})
}

func (a *App) create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if r.Method == http.MethodPost {
		err := r.ParseForm()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		st := stateFrom(r.Context())
		title, body := r.PostForm.Get("title"), r.PostForm.Get("body")
		if title == "" {
			st.session.Flash(titleRequired)
		} else {
			_, err = st.conn.CreatePost(r.Context(), st.user.ID, title, body)
			if err != nil {
				a.fail(w, r, err)
				return
			}
			a.postWritten(r, "create")
			http.Redirect(w, r, indexPath, http.StatusFound)
			return
		}
	}
	a.render(w, r, "blog/create.html", page{Form: r.PostForm})
}

func (a *App) update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, ok := a.loadPost(w, r, ps, true)
	if !ok {
		return
	}
	if r.Method == http.MethodPost {
		err := r.ParseForm()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		st := stateFrom(r.Context())
		title, body := r.PostForm.Get("title"), r.PostForm.Get("body")
		if title == "" {
			st.session.Flash(titleRequired)
		} else {
			err = st.conn.UpdatePost(r.Context(), post.ID, title, body)
			if err != nil {
				a.fail(w, r, err)
				return
			}
			a.postWritten(r, "update")
			http.Redirect(w, r, indexPath, http.StatusFound)
			return
		}
	}
	a.render(w, r, "blog/update.html", page{Post: &post, Form: r.PostForm})
}

func (a *App) delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, ok := a.loadPost(w, r, ps, true)
	if !ok {
		return
	}
	st := stateFrom(r.Context())
	err := st.conn.DeletePost(r.Context(), post.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.postWritten(r, "delete")
	http.Redirect(w, r, indexPath, http.StatusFound)
}

// loadPost answers 404 for unknown posts and, when checkAuthor is set,
// 403 for posts written by someone else.
func (a *App) loadPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params, checkAuthor bool) (store.Post, bool) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return store.Post{}, false
	}
	st := stateFrom(r.Context())
	post, err := st.conn.GetPost(r.Context(), id)
	var notFound store.PostNotFound
	if errors.As(err, &notFound) {
		http.Error(w, fmt.Sprintf("Post id %v doesn't exist.", id), http.StatusNotFound)
		return store.Post{}, false
	} else if err != nil {
		a.fail(w, r, err)
		return store.Post{}, false
	}
	if checkAuthor && (st.user == nil || post.AuthorID != st.user.ID) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return store.Post{}, false
	}
	return post, true
}

func (a *App) postWritten(r *http.Request, op string) {
	a.metrics.PostWritten(op)
	if err := a.listing.Invalidate(); err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Warn().Err(err).Msg("Unable to invalidate post listing cache")
	}
}
