// Package resources embeds the site-wide assets and shared templates.
package resources

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/dalemusser/signup/internal/app/system/bundles"
	"github.com/dalemusser/waffle/pantry/templates"
)

// FS holds the shared template partials.
//
//go:embed templates/*.gohtml
var FS embed.FS

//go:embed assets
var assetFS embed.FS

// Bundle paths used by the page layout.
const (
	SiteCSS = "/bundles/site.css"
	SiteJS  = "/bundles/site.js"
)

var registerOnce sync.Once

// LoadSharedTemplates registers the shared partials with the template engine.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     "shared",
			FS:       FS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}

// Assets returns the embedded asset tree rooted at assets/.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// SiteBundles lists the bundles the site serves. File order is the order of
// concatenation.
func SiteBundles() []bundles.Bundle {
	return []bundles.Bundle{
		{
			Path:        SiteCSS,
			ContentType: "text/css; charset=utf-8",
			Files:       []string{"css/reset.css", "css/site.css", "css/form.css"},
		},
		{
			Path:        SiteJS,
			ContentType: "text/javascript; charset=utf-8",
			Files:       []string{"js/form.js"},
		},
	}
}

// RegisterBundles adds every site bundle to t.
func RegisterBundles(t *bundles.Table) error {
	for _, b := range SiteBundles() {
		if err := t.Add(b); err != nil {
			return fmt.Errorf("register bundle %s: %w", b.Path, err)
		}
	}
	return nil
}
