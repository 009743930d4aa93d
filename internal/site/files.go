package site

import (
	"context"
	"io"
	"path"
)

// File is one rendered output file. Path is slash separated and relative to
// the output root.
type File struct {
	Path string
	Data []byte
}

// Files renders the whole site from a single read of the posts directory.
func (s *Site) Files(ctx context.Context) ([]File, error) {
	posts, err := s.posts.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(posts)+7)

	add := func(p string, fn func(w io.Writer) error) error {
		b, err := render(fn)
		if err != nil {
			return err
		}

		files = append(files, File{Path: p, Data: b})

		return nil
	}

	err = add("index.html", func(w io.Writer) error { return s.renderHome(w, posts) })
	if err != nil {
		return nil, err
	}

	for i := range posts {
		p := posts[i]

		err = add(path.Join("posts", p.Slug, "index.html"), func(w io.Writer) error { return s.renderPost(w, p) })
		if err != nil {
			return nil, err
		}
	}

	err = add("404.html", s.RenderNotFound)
	if err != nil {
		return nil, err
	}

	rss, err := s.feed(posts)
	if err != nil {
		return nil, err
	}

	sitemap, err := marshalSitemap(s.sitemapEntries(posts))
	if err != nil {
		return nil, err
	}

	manifest, err := s.Manifest()
	if err != nil {
		return nil, err
	}

	files = append(files,
		File{Path: "feed", Data: []byte(rss)},
		File{Path: "feed.xml", Data: []byte(rss)},
		File{Path: "sitemap.xml", Data: sitemap},
		File{Path: "manifest.webmanifest", Data: manifest},
		File{Path: "robots.txt", Data: []byte(s.Robots())},
	)

	return files, nil
}
