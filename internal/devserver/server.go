// Package devserver serves compiled components over HTTP while watching
// their sources, and notifies browsers over a websocket when they change.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/sfckit/sfcc/internal/compiler"
	"github.com/sfckit/sfcc/internal/output"
	"github.com/sfckit/sfcc/internal/sink"
)

// outputName matches the files a component compiles to, with or without
// a trailing .map.
var outputName = regexp.MustCompile(`^(.+\.vue)\.(?:js|css|\d+\.module\.css)(?:\.map)?$`)

// SourceFor returns the component a compiled output name belongs to.
func SourceFor(name string) (string, bool) {
	m := outputName.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Server compiles components from Fs below Root on request.
type Server struct {
	Fs   afero.Fs
	Root string
	// Compile is the template for every component. Filename is set per file.
	Compile compiler.Options
	Cache   *Cache
	Hub     *Hub
}

// New returns a server with a cache of cacheSize results.
func New(fsys afero.Fs, root string, opts compiler.Options, cacheSize int) (*Server, error) {
	cache, err := NewCache(cacheSize)
	if err != nil {
		return nil, err
	}
	if opts.Root == "" {
		opts.Root = root
	}
	return &Server{Fs: fsys, Root: root, Compile: opts, Cache: cache, Hub: NewHub()}, nil
}

// Handler routes reload subscriptions, compiled outputs and static files.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(ReloadPath, s.Hub)
	static := http.FileServer(afero.NewHttpFs(s.Fs).Dir(s.Root))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if _, ok := SourceFor(name); !ok {
			static.ServeHTTP(w, r)
			return
		}
		s.serveOutput(w, r, name)
	})
	return mux
}

func (s *Server) serveOutput(w http.ResponseWriter, r *http.Request, name string) {
	file, _ := SourceFor(name)
	res, err := s.compile(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if !res.OK() {
		http.Error(w, errorText(res.Errors), http.StatusInternalServerError)
		return
	}
	objs, err := sink.Objects(res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, obj := range objs {
		if obj.Name != name {
			continue
		}
		w.Header().Set("Content-Type", obj.ContentType)
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(obj.Data)
		return
	}
	http.NotFound(w, r)
}

func (s *Server) compile(file string) (*compiler.Result, error) {
	src, err := afero.ReadFile(s.Fs, filepath.Join(s.Root, filepath.FromSlash(file)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	opts := s.Compile
	opts.Filename = file
	res, hit := s.Cache.Compile(string(src), opts)
	output.Debug("compiled component", "file", file, "id", res.ID, "cached", hit)
	return res, nil
}

// Changed recompiles file and notifies subscribers of the outcome.
func (s *Server) Changed(file string) {
	res, err := s.compile(file)
	switch {
	case err != nil:
		s.Hub.Broadcast(Event{Type: EventError, File: file, Errors: []string{err.Error()}})
	case !res.OK():
		output.Warn("compile failed", "file", file, "errors", len(res.Errors))
		s.Hub.Broadcast(Event{Type: EventError, File: file, ID: res.ID, Errors: errorStrings(res.Errors)})
	default:
		s.Hub.Broadcast(Event{Type: EventUpdate, File: file, ID: res.ID})
	}
}

// ListenAndServe serves on addr and feeds w's changes into Changed until
// ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string, w *Watcher) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchErr := make(chan error, 1)
	if w != nil {
		go func() { watchErr <- w.Run(ctx, s.Changed) }()
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()
	output.Info("dev server listening", "addr", addr, "root", s.Root)

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-watchErr:
		_ = srv.Close()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

func errorText(errs []error) string {
	return strings.Join(errorStrings(errs), "\n")
}
