package site

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jtmthf/blog/internal/feed"
	"github.com/jtmthf/blog/internal/post"
)

// Handler returns the HTTP handler of the site. Paths that match no route are
// looked up in the public directory before falling back to the 404 page.
func (s *Site) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cacheControl)

	r.Get("/", s.handleHome)
	r.Get("/posts/{slug}", s.handlePost)
	r.Get("/feed", s.handleFeed)
	r.Get("/feed.xml", s.handleFeed)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/manifest.webmanifest", s.handleManifest)
	r.Get("/robots.txt", s.handleRobots)
	r.NotFound(s.handlePublic)

	return r
}

func cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed", "/feed.xml", "/sitemap.xml", "/robots.txt", "/manifest.webmanifest":
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Site) handleHome(w http.ResponseWriter, r *http.Request) {
	b, err := render(func(w io.Writer) error { return s.RenderHome(r.Context(), w) })
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.write(w, http.StatusOK, "text/html; charset=utf-8", b)
}

func (s *Site) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	b, err := render(func(w io.Writer) error { return s.RenderPost(r.Context(), w, slug) })
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.write(w, http.StatusOK, "text/html; charset=utf-8", b)
}

func (s *Site) handleFeed(w http.ResponseWriter, r *http.Request) {
	rss, err := s.Feed(r.Context())
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.write(w, http.StatusOK, feed.ContentType, []byte(rss))
}

func (s *Site) handleSitemap(w http.ResponseWriter, r *http.Request) {
	b, err := s.Sitemap(r.Context())
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.write(w, http.StatusOK, "application/xml; charset=utf-8", b)
}

func (s *Site) handleManifest(w http.ResponseWriter, r *http.Request) {
	b, err := s.Manifest()
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.write(w, http.StatusOK, ManifestContentType, b)
}

func (s *Site) handleRobots(w http.ResponseWriter, r *http.Request) {
	s.write(w, http.StatusOK, "text/plain; charset=utf-8", []byte(s.Robots()))
}

func (s *Site) handlePublic(w http.ResponseWriter, r *http.Request) {
	if s.config.PublicDir != "" && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
		dir := http.Dir(s.config.PublicDir)

		if f, err := dir.Open(r.URL.Path); err == nil {
			info, err := f.Stat()
			f.Close()

			if err == nil && !info.IsDir() {
				http.FileServer(dir).ServeHTTP(w, r)

				return
			}
		}
	}

	s.notFound(w, r)
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request) {
	b, err := render(s.RenderNotFound)
	if err != nil {
		s.log.Printf("could not render 404 page for %q: %v", r.URL.Path, err)
		http.NotFound(w, r)

		return
	}

	s.write(w, http.StatusNotFound, "text/html; charset=utf-8", b)
}

// fail maps post.ErrNotFound to the 404 page and everything else to a 500.
func (s *Site) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, post.ErrNotFound) {
		s.notFound(w, r)

		return
	}

	s.log.Printf("%s %q: %v", r.Method, r.URL.Path, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Site) write(w http.ResponseWriter, status int, contentType string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)

	_, err := w.Write(b)
	if err != nil {
		s.log.Printf("could not write response: %v", err)
	}
}
