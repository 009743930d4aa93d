package site

import (
	"github.com/flosch/pongo2/v4"

	"github.com/jtmthf/blog/internal/feed"
)

func init() {
	pongo2.RegisterFilter("path", filterPath)
	pongo2.RegisterFilter("longdate", filterLongDate)
}

// filterPath looks up the public URL of an asset: {{ assets|path:"styles.css" }}.
func filterPath(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	name := param.String()

	if m, ok := in.Interface().(map[string]string); ok {
		if p, found := m[name]; found {
			return pongo2.AsValue(p), nil
		}
	}

	return pongo2.AsValue("/" + name), nil
}

// filterLongDate renders a front matter date as "January 15, 2024".
func filterLongDate(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, ok := feed.ParseDate(in.String())
	if !ok {
		return in, nil
	}

	return pongo2.AsValue(t.Format("January 2, 2006")), nil
}
