// Package site renders the blog: the home page, post pages, the RSS feed, the
// sitemap and the web manifest. The same rendering backs the HTTP handler and
// the static builder.
package site

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flosch/pongo2/v4"

	"github.com/jtmthf/blog/internal/config"
	"github.com/jtmthf/blog/internal/feed"
	"github.com/jtmthf/blog/internal/indent"
	"github.com/jtmthf/blog/internal/markdown"
	"github.com/jtmthf/blog/internal/post"
)

// Site holds everything needed to render pages. It keeps no per-request
// state; posts are read from disk on every render.
type Site struct {
	config    *config.Config
	posts     *post.Repository
	markdown  *markdown.Renderer
	templates *pongo2.TemplateSet
	assets    map[string]string
	now       func() time.Time
	log       *log.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithAssets sets the map from public file names to the URLs templates link
// to, e.g. content-hashed names produced by the builder.
func WithAssets(assets map[string]string) Option {
	return func(s *Site) {
		s.assets = assets
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Site) {
		s.now = now
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Site) {
		s.log = l
	}
}

// New creates a Site from c. Templates found in c.TemplatesDir take
// precedence over the built-in ones.
func New(c *config.Config, opts ...Option) (*Site, error) {
	s := &Site{
		config: c,
		posts:  post.NewRepository(c.PostsDir, post.WithConcurrency(c.Concurrency)),
		markdown: markdown.New(markdown.Options{
			ChromaTheme:       c.ChromaTheme,
			ChromaLineNumbers: c.ChromaLineNumbers,
			ChromaWithClasses: c.ChromaWithClasses,
		}),
		now: time.Now,
		log: log.New(os.Stderr, "[site] ", 0),
	}

	for _, opt := range opts {
		opt(s)
	}

	var loaders []pongo2.TemplateLoader

	if c.TemplatesDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(c.TemplatesDir)
		if err != nil {
			return nil, fmt.Errorf("could not load templates: %w", err)
		}

		loaders = append(loaders, loader)
	}

	loaders = append(loaders, newDefaultLoader())
	s.templates = pongo2.NewSet("site", loaders...)

	if s.assets == nil {
		assets, err := publicAssets(c.PublicDir)
		if err != nil {
			return nil, err
		}

		s.assets = assets
	}

	return s, nil
}

// Posts returns the repository the site reads from.
func (s *Site) Posts() *post.Repository {
	return s.posts
}

// publicAssets maps every file under dir to its URL path unchanged.
func publicAssets(dir string) (map[string]string, error) {
	assets := make(map[string]string)
	if dir == "" {
		return assets, nil
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return assets, nil
	}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		assets[rel] = "/" + rel

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking public dir: %w", err)
	}

	return assets, nil
}

func (s *Site) context(extra pongo2.Context) pongo2.Context {
	ctx := pongo2.Context{
		"site": map[string]string{
			"Title":       s.config.SiteTitle,
			"Description": s.config.SiteDescription,
			"URL":         s.config.SiteURL,
			"Author":      s.config.SiteAuthor,
			"ThemeColor":  s.config.ManifestThemeColor,
		},
		"assets": s.assets,
	}

	return ctx.Update(extra)
}

func (s *Site) execute(w io.Writer, name string, extra pongo2.Context) error {
	tpl, err := s.templates.FromFile(name)
	if err != nil {
		return fmt.Errorf("could not get template %q: %w", name, err)
	}

	err = tpl.ExecuteWriter(s.context(extra), w)
	if err != nil {
		return fmt.Errorf("could not render template %q: %w", name, err)
	}

	return nil
}

// RenderHome writes the home page: the newest post as the hero followed by
// the rest.
func (s *Site) RenderHome(ctx context.Context, w io.Writer) error {
	posts, err := s.posts.GetAll(ctx)
	if err != nil {
		return err
	}

	return s.renderHome(w, posts)
}

func (s *Site) renderHome(w io.Writer, posts []post.Post) error {
	var hero *post.Post
	more := posts

	if len(posts) > 0 {
		hero = &posts[0]
		more = posts[1:]
	}

	return s.execute(w, "home.html", pongo2.Context{
		"title": s.config.SiteTitle,
		"hero":  hero,
		"more":  more,
	})
}

// RenderPost writes the page of the post stored under slug. It returns an
// error wrapping post.ErrNotFound when there is no such post.
func (s *Site) RenderPost(ctx context.Context, w io.Writer, slug string) error {
	p, err := s.posts.GetBySlug(slug)
	if err != nil {
		return err
	}

	return s.renderPost(w, p)
}

func (s *Site) renderPost(w io.Writer, p post.Post) error {
	content, err := s.markdown.Render(p.Content)
	if err != nil {
		return fmt.Errorf("could not render post %q: %w", p.Slug, err)
	}

	return s.execute(w, "post.html", pongo2.Context{
		"title":   p.Title + " | " + s.config.SiteTitle,
		"post":    p,
		"content": content,
		"ogImage": s.absURL(p.OGImage.URL),
	})
}

// RenderNotFound writes the 404 page.
func (s *Site) RenderNotFound(w io.Writer) error {
	return s.execute(w, "404.html", pongo2.Context{
		"title": "404: This page could not be found | " + s.config.SiteTitle,
	})
}

// Feed renders the RSS document of all posts.
func (s *Site) Feed(ctx context.Context) (string, error) {
	posts, err := s.posts.GetAll(ctx)
	if err != nil {
		return "", err
	}

	return s.feed(posts)
}

func (s *Site) feed(posts []post.Post) (string, error) {
	return feed.Generate(posts, feed.Channel{
		Title:       s.config.SiteTitle,
		Link:        s.config.SiteURL,
		Description: s.config.SiteDescription,
		SelfPath:    feed.DefaultSelfPath,
	}, s.now())
}

// Robots renders robots.txt pointing crawlers at the sitemap.
func (s *Site) Robots() string {
	return indent.Template([]string{`
		User-agent: *
		Allow: /
		Sitemap: `, `/sitemap.xml
	`}, s.config.SiteURL) + "\n"
}

func (s *Site) absURL(p string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}

	return s.config.SiteURL + "/" + strings.TrimPrefix(p, "/")
}

// render buffers fn so that a failed render never leaves half a page behind.
func render(fn func(w io.Writer) error) ([]byte, error) {
	buf := new(bytes.Buffer)

	err := fn(buf)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
