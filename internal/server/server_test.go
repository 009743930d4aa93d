package server

import (
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jtmthf/blog/internal/config"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	posts := filepath.Join(root, "posts")

	err := os.Mkdir(posts, 0777)
	if err != nil {
		t.Fatal(err)
	}

	err = ioutil.WriteFile(filepath.Join(posts, "hello.md"), []byte("---\ntitle: Hello\ndate: \"2024-05-01\"\n---\n\nHi.\n"), 0666)
	if err != nil {
		t.Fatal(err)
	}

	c := &config.Config{
		SiteTitle:       "Test Blog",
		SiteDescription: "A blog for tests.",
		SiteURL:         "https://example.com",
		PostsDir:        posts,
		OutputDir:       filepath.Join(root, "build"),
	}
	c.SetDefaults()

	return c
}

func TestHandler(t *testing.T) {
	c := newTestConfig(t)
	logs := new(strings.Builder)

	h, err := NewHandler(c, log.New(logs, "", 0))
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	tests := []struct {
		Name   string
		Path   string
		Status int
	}{
		{Name: "home", Path: "/", Status: http.StatusOK},
		{Name: "post", Path: "/posts/hello", Status: http.StatusOK},
		{Name: "missing post", Path: "/posts/goodbye", Status: http.StatusNotFound},
		{Name: "feed", Path: "/feed", Status: http.StatusOK},
		{Name: "unknown path", Path: "/nothing/here", Status: http.StatusNotFound},
	}

	for _, tcase := range tests {
		t.Run(tcase.Name, func(t *testing.T) {
			res, err := http.Get(srv.URL + tcase.Path)
			if err != nil {
				t.Fatal(err)
			}
			res.Body.Close()

			if res.StatusCode != tcase.Status {
				t.Errorf("received status code %d when %d was expected", res.StatusCode, tcase.Status)
			}
		})
	}

	if !strings.Contains(logs.String(), `GET "/posts/hello" 200`) {
		t.Errorf("access log missing request line:\n%s", logs)
	}
}

func TestHandlerBadTemplatesDir(t *testing.T) {
	c := newTestConfig(t)
	c.TemplatesDir = filepath.Join(t.TempDir(), "missing")

	_, err := NewHandler(c, log.New(ioutil.Discard, "", 0))
	if err == nil {
		t.Error("expected an error for a missing templates dir")
	}
}
