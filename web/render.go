package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/andrebq/jotter/store"
)

//go:embed templates
var templatesFS embed.FS

type (
	renderer struct {
		pages map[string]*template.Template
	}

	page struct {
		User    *store.User
		Flashes []string
		Posts   []store.Post
		Post    *store.Post
		Form    url.Values
	}
)

var (
	pageFiles = []string{
		"auth/login.html",
		"auth/register.html",
		"blog/index.html",
		"blog/create.html",
		"blog/update.html",
	}

	templateFuncs = template.FuncMap{
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
	}
)

// newRenderer parses every page together with the base layout. Each page
// gets its own set so the blocks they define do not clash.
func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, p := range pageFiles {
		t, err := template.New("base.html").Funcs(templateFuncs).
			ParseFS(templatesFS, "templates/base.html", path.Join("templates", p))
		if err != nil {
			return nil, fmt.Errorf("unable to parse template %v, cause %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

// render consumes the pending flashes and writes the page. The output is
// buffered so a template error can still turn into a proper 500.
func (a *App) render(w http.ResponseWriter, r *http.Request, name string, data page) {
	t, ok := a.pages.pages[name]
	if !ok {
		a.fail(w, r, fmt.Errorf("unknown template %v", name))
		return
	}
	if st := stateFrom(r.Context()); st != nil {
		data.User = st.user
		data.Flashes = st.session.TakeFlashes()
	}
	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "base.html", data)
	if err != nil {
		a.fail(w, r, fmt.Errorf("unable to render %v, cause %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
