// Package markdown turns post bodies into HTML.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

const DefaultTheme = "github"

// Options controls code highlighting.
type Options struct {
	ChromaTheme       string
	ChromaLineNumbers bool
	ChromaWithClasses bool
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GFM, heading ids and chroma highlighting
// enabled. Raw HTML in the source is passed through.
func New(o Options) *Renderer {
	theme := o.ChromaTheme
	if theme == "" {
		theme = DefaultTheme
	}

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(theme),
					highlighting.WithFormatOptions(
						chromahtml.WithLineNumbers(o.ChromaLineNumbers),
						chromahtml.WithClasses(o.ChromaWithClasses),
					),
				),
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts src.
func (r *Renderer) Render(src []byte) (string, error) {
	buf := new(bytes.Buffer)

	err := r.md.Convert(src, buf)
	if err != nil {
		return "", fmt.Errorf("could not render markdown: %w", err)
	}

	return buf.String(), nil
}
