package site

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jtmthf/blog/internal/config"
	"github.com/jtmthf/blog/internal/post"
)

const firstPost = `---
id: first-id
title: First Post
date: "2024-01-15"
excerpt: The first one.
coverImage: /assets/first.jpg
author:
  name: Jack Moore
  picture: /assets/jack.jpeg
ogImage:
  url: /assets/first-og.jpg
---

## Hello there

Some *markdown*.
`

const secondPost = `---
id: second-id
title: Second & Last
date: "2024-03-01"
excerpt: The second one.
preview: true
---

Body.
`

var fixedNow = time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)

func newTestSite(t *testing.T) (*Site, *config.Config) {
	t.Helper()

	root := t.TempDir()
	postsDir := filepath.Join(root, "posts")
	publicDir := filepath.Join(root, "public")

	for _, dir := range []string{postsDir, publicDir} {
		if err := os.Mkdir(dir, 0777); err != nil {
			t.Fatal(err)
		}
	}

	files := map[string]string{
		filepath.Join(postsDir, "first-post.mdx"):  firstPost,
		filepath.Join(postsDir, "second-post.mdx"): secondPost,
		filepath.Join(publicDir, "styles.css"):     "body { margin: 0; }",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0666); err != nil {
			t.Fatal(err)
		}
	}

	c := &config.Config{
		SiteTitle:       "Jack Moore's Blog",
		SiteDescription: "Jack Moore’s personal blog.",
		SiteURL:         "https://jtmthf.com",
		PostsDir:        postsDir,
		PublicDir:       publicDir,
		OutputDir:       filepath.Join(root, "build"),
	}
	c.SetDefaults()

	s, err := New(c, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatal(err)
	}

	return s, c
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestHandlerHome(t *testing.T) {
	s, _ := newTestSite(t)

	rec := get(t, s.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	body := rec.Body.String()

	hero := strings.Index(body, "Second &amp; Last")
	more := strings.Index(body, "First Post")
	if hero < 0 || more < 0 || hero > more {
		t.Errorf("expected newest post first, got:\n%s", body)
	}

	if !strings.Contains(body, "<title>Jack Moore") {
		t.Errorf("missing title:\n%s", body)
	}

	if !strings.Contains(body, `href="/styles.css"`) {
		t.Errorf("missing stylesheet link:\n%s", body)
	}

	if !strings.Contains(body, "March 1, 2024") {
		t.Errorf("missing long date:\n%s", body)
	}
}

func TestHandlerPost(t *testing.T) {
	s, _ := newTestSite(t)

	rec := get(t, s.Handler(), "/posts/first-post")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`<h2 id="hello-there">Hello there</h2>`,
		"<em>markdown</em>",
		`content="https://jtmthf.com/assets/first-og.jpg"`,
		"First Post | Jack Moore",
		"Jack Moore",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("post page missing %q:\n%s", want, body)
		}
	}

	if strings.Contains(body, "This page is a preview.") {
		t.Errorf("non-preview post shows the preview alert")
	}

	rec = get(t, s.Handler(), "/posts/second-post")
	if !strings.Contains(rec.Body.String(), "This page is a preview.") {
		t.Errorf("preview alert missing:\n%s", rec.Body)
	}
}

func TestHandlerPostNotFound(t *testing.T) {
	s, _ := newTestSite(t)

	for _, path := range []string{"/posts/missing", "/posts/..%2Fsecret", "/nope"} {
		rec := get(t, s.Handler(), path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}

		if !strings.Contains(rec.Body.String(), "This page could not be found.") {
			t.Errorf("GET %s did not render the 404 page", path)
		}
	}
}

func TestHandlerMalformedPostIs500(t *testing.T) {
	s, c := newTestSite(t)

	err := os.WriteFile(filepath.Join(c.PostsDir, "broken.mdx"), []byte("no front matter"), 0666)
	if err != nil {
		t.Fatal(err)
	}

	s.log.SetOutput(new(strings.Builder))

	for _, path := range []string{"/posts/broken", "/", "/feed"} {
		if rec := get(t, s.Handler(), path); rec.Code != http.StatusInternalServerError {
			t.Errorf("GET %s status = %d, want 500", path, rec.Code)
		}
	}
}

func TestHandlerFeed(t *testing.T) {
	s, _ := newTestSite(t)

	rec := get(t, s.Handler(), "/feed")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/rss+xml" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	if strings.Count(body, "<item>") != 2 {
		t.Errorf("expected 2 items:\n%s", body)
	}

	if !strings.Contains(body, "<link>https://jtmthf.com/posts/second-post</link>") {
		t.Errorf("missing post link:\n%s", body)
	}
}

func TestHandlerSitemap(t *testing.T) {
	s, _ := newTestSite(t)

	rec := get(t, s.Handler(), "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var set sitemapURLSet

	err := xml.Unmarshal(rec.Body.Bytes(), &set)
	if err != nil {
		t.Fatal(err)
	}

	if len(set.URLs) != 3 {
		t.Fatalf("got %d urls, want 3", len(set.URLs))
	}

	home := set.URLs[0]
	if home.Loc != "https://jtmthf.com" || home.ChangeFreq != "daily" || home.Priority != "1.0" {
		t.Errorf("home entry = %+v", home)
	}

	if home.LastMod != "2024-04-01T12:00:00Z" {
		t.Errorf("lastmod = %q", home.LastMod)
	}

	if p := set.URLs[1]; p.Loc != "https://jtmthf.com/posts/second-post" || p.ChangeFreq != "weekly" || p.Priority != "0.5" {
		t.Errorf("post entry = %+v", p)
	}
}

func TestHandlerManifest(t *testing.T) {
	s, _ := newTestSite(t)

	rec := get(t, s.Handler(), "/manifest.webmanifest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var m manifest

	err := json.Unmarshal(rec.Body.Bytes(), &m)
	if err != nil {
		t.Fatal(err)
	}

	if m.Name != "Jack Moore's Blog" || m.StartURL != "/" || m.Display != "standalone" || len(m.Icons) != 2 {
		t.Errorf("manifest = %+v", m)
	}
}

func TestHandlerRobotsAndPublic(t *testing.T) {
	s, _ := newTestSite(t)

	rec := get(t, s.Handler(), "/robots.txt")
	want := "User-agent: *\nAllow: /\nSitemap: https://jtmthf.com/sitemap.xml\n"

	if rec.Body.String() != want {
		t.Errorf("robots.txt = %q, want %q", rec.Body.String(), want)
	}

	rec = get(t, s.Handler(), "/styles.css")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "margin") {
		t.Errorf("public file not served: %d %q", rec.Code, rec.Body)
	}
}

func TestRenderPostNotFound(t *testing.T) {
	s, _ := newTestSite(t)

	err := s.RenderPost(context.Background(), new(strings.Builder), "missing")
	if !errors.Is(err, post.ErrNotFound) {
		t.Errorf("error = %v, want post.ErrNotFound", err)
	}
}

func TestFiles(t *testing.T) {
	s, _ := newTestSite(t)

	files, err := s.Files(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		got[f.Path] = true
	}

	for _, want := range []string{
		"index.html",
		"posts/first-post/index.html",
		"posts/second-post/index.html",
		"404.html",
		"feed",
		"feed.xml",
		"sitemap.xml",
		"manifest.webmanifest",
		"robots.txt",
	} {
		if !got[want] {
			t.Errorf("missing output file %q", want)
		}
	}
}

func TestTemplatesDirOverrides(t *testing.T) {
	_, c := newTestSite(t)

	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "404.html"), []byte("custom {{ site.Title }}"), 0666)
	if err != nil {
		t.Fatal(err)
	}

	c.TemplatesDir = dir

	s, err := New(c)
	if err != nil {
		t.Fatal(err)
	}

	rec := get(t, s.Handler(), "/nope")
	if !strings.HasPrefix(rec.Body.String(), "custom Jack Moore") {
		t.Errorf("404 body = %q", rec.Body)
	}

	if rec = get(t, s.Handler(), "/"); rec.Code != http.StatusOK {
		t.Errorf("home should still use built-in templates, got %d", rec.Code)
	}
}
