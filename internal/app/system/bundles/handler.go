package bundles

import (
	"bytes"
	"net/http"
	"time"
)

// Handler serves registered bundles by request path. Unknown paths get 404.
// The handler is safe to mount before bundles are added.
func (t *Table) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		b, ok := t.get(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		etag := `"` + b.fingerprint + `"`
		// ServeContent answers If-None-Match against this header.
		w.Header().Set("ETag", etag)
		if r.URL.Query().Get("v") == b.fingerprint {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}

		w.Header().Set("Content-Type", b.ContentType)
		http.ServeContent(w, r, b.Path, time.Time{}, bytes.NewReader(b.body))
	})
}
