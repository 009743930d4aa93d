package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"gopkg.in/fsnotify.v1"

	"github.com/jtmthf/blog/internal/builder"
	"github.com/jtmthf/blog/internal/config"
	"github.com/jtmthf/blog/internal/site"
)

const shutdownTimeout = 10 * time.Second

// Serve renders the blog on every request and listens on c.Addr until
// SIGINT or SIGTERM is received.
func Serve(c *config.Config) error {
	ll := log.New(os.Stderr, "[server] ", 0)

	h, err := NewHandler(c, ll)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	srv := &http.Server{
		Handler:      h,
		Addr:         c.Addr,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	doneC := make(chan bool)
	closeC := make(chan bool)

	go notify(doneC)
	go serve(srv, ll, doneC, closeC)

	<-closeC

	log.Print("----> DONE")

	return nil
}

// NewHandler returns the dynamic site handler with access logging to l.
func NewHandler(c *config.Config, l *log.Logger) (http.Handler, error) {
	s, err := site.New(c, site.WithLogger(l))
	if err != nil {
		return nil, err
	}

	return withLogging(s.Handler(), l), nil
}

// Preview builds the site into c.OutputDir, serves it on port and rebuilds
// whenever a file in the posts, public or templates directories is written.
func Preview(c *config.Config, port int) error {
	log.Print("----> Initial build")

	b, err := builder.New(c, log.New(os.Stderr, "[builder] ", 0))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	err = b.Build()
	if err != nil {
		return fmt.Errorf("could not complete initial build: %w", err)
	}

	log.Print("----> Starting server and watcher")

	ll := log.New(os.Stderr, "[server] ", 0)
	srv := &http.Server{
		Handler:     withLogging(http.FileServer(http.Dir(c.OutputDir)), ll),
		Addr:        fmt.Sprintf(":%d", port),
		ReadTimeout: 20 * time.Second,
	}

	serveC := make(chan bool)
	serveCloseC := make(chan bool)
	watchC := make(chan bool)
	watchCloseC := make(chan bool)

	go func() {
		stopC := make(chan bool)
		go notify(stopC)

		<-stopC

		close(serveC)
		close(watchC)
	}()

	go serve(srv, ll, serveC, serveCloseC)
	go watch(c, b, watchC, watchCloseC)

	<-serveCloseC
	<-watchCloseC

	log.Print("----> DONE")

	return nil
}

func withLogging(h http.Handler, l *log.Logger) http.Handler {
	return handlers.CustomLoggingHandler(
		ioutil.Discard,
		h,
		func(w io.Writer, params handlers.LogFormatterParams) {
			l.Printf("%s %q %d", params.Request.Method, params.Request.URL, params.StatusCode)
		})
}

// notify closes doneC once SIGINT or SIGTERM is received.
func notify(doneC chan bool) {
	signalChan := make(chan os.Signal, 1)

	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	<-signalChan

	log.Print("\n----> Signal detected: Cleaning up...")

	close(doneC)
}

func serve(srv *http.Server, ll *log.Logger, doneC, closeC chan bool) {
	idleConnsClosed := make(chan bool)

	go func() {
		<-doneC

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			ll.Printf("Error at HTTP server shutdown: %v", err)
		} else {
			ll.Print("==> Shutdown HTTP server")
		}

		close(idleConnsClosed)
	}()

	ll.Printf("Listening on %s", srv.Addr)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Panic(err)
	}

	<-idleConnsClosed

	ll.Print("==> Closed all connections")

	close(closeC)
}

func watch(c *config.Config, b builder.Builder, doneC, closeC chan bool) {
	ll := log.New(os.Stderr, "[watcher] ", 0)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		ll.Panic(err)
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
					ll.Printf("%q has been modified", event.Name)

					if err := b.Build(); err != nil {
						ll.Printf("error during build: %v", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				ll.Println("error:", err)
			}
		}
	}()

	for _, v := range []string{c.PostsDir, c.PublicDir, c.TemplatesDir} {
		if v == "" {
			continue
		}

		err = watcher.Add(v)
		if err != nil {
			ll.Panic(err)
		}

		ll.Printf("Watching %q directory", v)
	}

	<-doneC

	ll.Print("==> Stopped watching files")

	close(closeC)
}
