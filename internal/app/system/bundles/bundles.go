// Package bundles groups static asset files into named bundles served under
// a single virtual path.
//
// A bundle is assembled once, when it is added to a Table, by concatenating
// its files in order. Each bundle carries a short content fingerprint used as
// its ETag and as a cache-busting query value in URL.
package bundles

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDuplicate is returned when a bundle path is registered twice.
	ErrDuplicate = errors.New("bundles: duplicate bundle path")
	// ErrEmpty is returned when a bundle lists no files.
	ErrEmpty = errors.New("bundles: bundle has no files")
)

// Bundle describes one virtual asset.
type Bundle struct {
	// Path is the URL path the bundle is served at, e.g. "/bundles/site.css".
	Path string
	// ContentType defaults to the MIME type of Path's extension.
	ContentType string
	// Files are paths inside the table's FS, concatenated in this order.
	Files []string
}

// built is a bundle with its assembled body.
type built struct {
	Bundle
	body        []byte
	fingerprint string
}

// Table is the bundle registry. It is written during startup and read by
// the HTTP handler afterwards.
type Table struct {
	fsys fs.FS

	mu      sync.RWMutex
	bundles map[string]*built
}

// NewTable returns an empty table reading files from fsys.
func NewTable(fsys fs.FS) *Table {
	return &Table{
		fsys:    fsys,
		bundles: make(map[string]*built),
	}
}

// Add assembles b and registers it.
func (t *Table) Add(b Bundle) error {
	if !strings.HasPrefix(b.Path, "/") {
		return fmt.Errorf("bundles: path %q must be absolute", b.Path)
	}
	if len(b.Files) == 0 {
		return fmt.Errorf("%w: %s", ErrEmpty, b.Path)
	}
	if b.ContentType == "" {
		b.ContentType = mime.TypeByExtension(path.Ext(b.Path))
		if b.ContentType == "" {
			b.ContentType = "application/octet-stream"
		}
	}

	var buf bytes.Buffer
	for i, name := range b.Files {
		data, err := fs.ReadFile(t.fsys, name)
		if err != nil {
			return fmt.Errorf("bundles: %s: read %s: %w", b.Path, name, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	sum := sha256.Sum256(buf.Bytes())

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.bundles[b.Path]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, b.Path)
	}
	b.Files = append([]string(nil), b.Files...)
	t.bundles[b.Path] = &built{
		Bundle:      b,
		body:        buf.Bytes(),
		fingerprint: hex.EncodeToString(sum[:])[:12],
	}
	return nil
}

// Paths returns registered bundle paths in sorted order.
func (t *Table) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.bundles))
	for p := range t.bundles {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len reports how many bundles are registered.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.bundles)
}

// URL returns p with its fingerprint appended, or p unchanged if no bundle
// is registered there. Templates use this so browsers refetch on change.
func (t *Table) URL(p string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.bundles[p]
	if !ok {
		return p
	}
	return p + "?v=" + b.fingerprint
}

func (t *Table) get(p string) (*built, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.bundles[p]
	return b, ok
}
