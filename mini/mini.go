// Package mini shrinks rendered site files before they are written out.
package mini

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
)

// mediaTypes maps the extensions that get minified to the media type their
// minifier is registered under. Everything else, including the feed and
// sitemap XML, is written as rendered.
var mediaTypes = map[string]string{
	".html":        "text/html",
	".css":         "text/css",
	".svg":         "image/svg+xml",
	".js":          "application/javascript",
	".json":        "application/json",
	".webmanifest": "application/manifest+json",
}

// Minifier minifies file contents by extension.
type Minifier struct {
	m *minify.M
}

// New returns a Minifier for html, css, svg, js, json and web manifests.
func New() *Minifier {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^application/javascript$"), js.Minify)
	m.AddFuncRegexp(regexp.MustCompile("[/+]json$"), json.Minify)

	return &Minifier{m: m}
}

// MediaType returns the media type path is minified as, if any.
func MediaType(path string) (string, bool) {
	mt, ok := mediaTypes[filepath.Ext(path)]

	return mt, ok
}

// Minify returns data minified according to the extension of path. Data of
// any other file is returned unchanged.
func (mi *Minifier) Minify(path string, data []byte) ([]byte, error) {
	mt, ok := MediaType(path)
	if !ok {
		return data, nil
	}

	out, err := mi.m.Bytes(mt, data)
	if err != nil {
		return nil, fmt.Errorf("could not minify %q: %w", path, err)
	}

	return out, nil
}
