package post

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotFound         = errors.New("post not found")
	ErrMalformedContent = errors.New("malformed post content")
	ErrDuplicateSlug    = errors.New("duplicate post slug")
)

const defaultConcurrency = 16

// Extensions lists the content file extensions in lookup order.
var Extensions = []string{".mdx", ".md"}

// Repository reads posts from a directory. It holds no state besides its
// settings: every call goes back to disk.
type Repository struct {
	dir         string
	exts        []string
	concurrency int
}

// Option configures a Repository.
type Option func(*Repository)

// WithConcurrency bounds the number of files GetAll reads at once. Values
// below one remove the bound.
func WithConcurrency(n int) Option {
	return func(r *Repository) {
		r.concurrency = n
	}
}

// WithExtensions replaces the content file extensions.
func WithExtensions(exts ...string) Option {
	return func(r *Repository) {
		r.exts = exts
	}
}

// NewRepository returns a Repository over dir.
func NewRepository(dir string, opts ...Option) *Repository {
	r := &Repository{
		dir:         dir,
		exts:        Extensions,
		concurrency: defaultConcurrency,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Dir returns the content directory.
func (r *Repository) Dir() string {
	return r.dir
}

type entry struct {
	slug string
	name string
}

func (r *Repository) entries() ([]entry, error) {
	des, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("could not read posts directory %q: %w", r.dir, err)
	}

	seen := make(map[string]string, len(des))
	list := make([]entry, 0, len(des))

	for _, de := range des {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		slug, ok := r.trimExt(name)
		if !ok {
			continue
		}

		if prev, dup := seen[slug]; dup {
			return nil, fmt.Errorf("%w: %q and %q", ErrDuplicateSlug, prev, name)
		}

		seen[slug] = name
		list = append(list, entry{slug: slug, name: name})
	}

	return list, nil
}

// Slugs lists the slug of every content file in the directory.
func (r *Repository) Slugs() ([]string, error) {
	list, err := r.entries()
	if err != nil {
		return nil, err
	}

	slugs := make([]string, len(list))
	for i, e := range list {
		slugs[i] = e.slug
	}

	return slugs, nil
}

// GetBySlug reads the post stored under slug. When slug ends in a content
// extension only the file with that extension is read. It returns
// ErrNotFound when no readable file matches and ErrDuplicateSlug when the
// slug is stored under more than one extension.
func (r *Repository) GetBySlug(slug string) (Post, error) {
	var want string

	if s, ok := r.trimExt(slug); ok {
		want = filepath.Ext(slug)
		slug = s
	}

	if !validSlug(slug) {
		return Post{}, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}

	var (
		path  string
		data  []byte
		found []string
	)

	for _, ext := range r.exts {
		p := filepath.Join(r.dir, slug+ext)

		b, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return Post{}, fmt.Errorf("%w: %q: %v", ErrNotFound, slug, err)
		}

		found = append(found, slug+ext)

		if want == "" || want == ext {
			path, data = p, b
		}
	}

	if len(found) > 1 {
		return Post{}, fmt.Errorf("%w: %q and %q", ErrDuplicateSlug, found[0], found[1])
	}

	if path == "" {
		return Post{}, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}

	return parse(path, slug, data)
}

// GetAll reads every post and sorts them by date, newest first. Dates are
// compared as plain strings, so they only sort by calendar when every post
// uses the same layout, e.g. ISO 8601. Files are read concurrently; the first
// failure cancels the rest and is returned.
func (r *Repository) GetAll(ctx context.Context) ([]Post, error) {
	list, err := r.entries()
	if err != nil {
		return nil, err
	}

	posts := make([]Post, len(list))

	g, ctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	for i := range list {
		i, e := i, list[i]

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(r.dir, e.name)

			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("could not read post %q: %w", path, err)
			}

			p, err := parse(path, e.slug, b)
			if err != nil {
				return err
			}

			posts[i] = p

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date > posts[j].Date
	})

	return posts, nil
}

func (r *Repository) trimExt(name string) (string, bool) {
	ext := filepath.Ext(name)
	for _, cmp := range r.exts {
		if ext == cmp {
			return strings.TrimSuffix(name, ext), true
		}
	}

	return name, false
}

func validSlug(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, ".") {
		return false
	}

	return !strings.ContainsAny(slug, `/\`) && !strings.Contains(slug, "..")
}

func parse(path, slug string, b []byte) (Post, error) {
	var p Post

	body, err := frontmatter.MustParse(bytes.NewReader(b), &p)
	if err != nil {
		return Post{}, fmt.Errorf("%w: %q: %v", ErrMalformedContent, path, err)
	}

	for _, field := range []struct{ key, val string }{
		{"title", p.Title},
		{"date", string(p.Date)},
	} {
		if strings.TrimSpace(field.val) == "" {
			return Post{}, fmt.Errorf("%w: %q: required field %q not found", ErrMalformedContent, path, field.key)
		}
	}

	p.Slug = slug
	p.Content = body

	return p, nil
}
