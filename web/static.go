package web

import (
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/julienschmidt/httprouter"
)

//go:embed static
var staticFS embed.FS

type (
	staticAsset struct {
		content  []byte
		etag     string
		mimeType string
	}
)

func loadStaticAssets() (map[string]staticAsset, error) {
	out := make(map[string]staticAsset)
	err := fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		content, err := staticFS.ReadFile(p)
		if err != nil {
			return err
		}
		mt := mime.TypeByExtension(path.Ext(p))
		if mt == "" {
			mt = "application/octet-stream"
		}
		out[strings.TrimPrefix(p, "static/")] = staticAsset{
			content:  content,
			etag:     fmt.Sprintf(`"%016x"`, xxhash.Sum64(content)),
			mimeType: mt,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to load static assets, cause %w", err)
	}
	return out, nil
}

func (a *App) static(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	asset, ok := a.assets[strings.TrimPrefix(ps.ByName("filepath"), "/")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("ETag", asset.etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if r.Header.Get("If-None-Match") == asset.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", asset.mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.content)))
	w.WriteHeader(http.StatusOK)
	w.Write(asset.content)
}
