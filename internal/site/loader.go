package site

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v4"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// fsLoader serves pongo2 templates out of an fs.FS. Names are flat: every
// template lives at the root of the filesystem.
type fsLoader struct {
	fsys fs.FS
}

func newDefaultLoader() pongo2.TemplateLoader {
	sub, err := fs.Sub(defaultTemplates, "templates")
	if err != nil {
		panic(err)
	}

	return &fsLoader{fsys: sub}
}

func (l *fsLoader) Abs(base, name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func (l *fsLoader) Get(name string) (io.Reader, error) {
	b, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("could not load template %q: %w", name, err)
	}

	return bytes.NewReader(b), nil
}
