package style

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/spf13/afero"

	"github.com/sfckit/sfcc/internal/sourcemap"
)

// sassExtensions are tried in order when resolving a load URL.
var sassExtensions = []string{"", ".scss", ".sass", ".css"}

// SassPreprocessor compiles scss and sass through the dart-sass embedded
// protocol. The dart-sass process is started on first use.
//
// Imports are read from Fs. Relative URLs resolve against the importing
// file; bare URLs resolve as packages under Root/node_modules. A URL that
// resolves to nothing is a compile error.
type SassPreprocessor struct {
	// Binary is the dart-sass executable; empty searches PATH for "sass".
	Binary  string
	Fs      afero.Fs
	Root    string
	Timeout time.Duration
	// OnLog receives warnings and debug output from stylesheets.
	OnLog func(godartsass.LogEvent)

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

var _ Preprocessor = (*SassPreprocessor)(nil)

// Preprocess compiles src, the content of a style block in filename.
func (s *SassPreprocessor) Preprocess(lang, src, filename string) (string, *sourcemap.SourceMap, error) {
	t, err := s.start()
	if err != nil {
		return "", nil, err
	}

	syntax := godartsass.SourceSyntaxSCSS
	if lang == "sass" {
		syntax = godartsass.SourceSyntaxSASS
	}
	mainURL := s.fileURL(filepath.Join(s.Root, filename))
	res, err := t.Execute(godartsass.Args{
		Source:          src,
		URL:             mainURL,
		SourceSyntax:    syntax,
		OutputStyle:     godartsass.OutputStyleExpanded,
		EnableSourceMap: true,
		ImportResolver:  &sassImporter{p: s},
	})
	if err != nil {
		if errors.Is(err, godartsass.ErrShutdown) {
			s.reset(t)
		}
		return "", nil, fmt.Errorf("sass: %w", err)
	}
	if res.SourceMap == "" {
		return res.CSS, nil, nil
	}

	m, err := sourcemap.Parse([]byte(res.SourceMap))
	if err != nil {
		return "", nil, fmt.Errorf("reading sass map: %w", err)
	}
	m, err = sourcemap.Restrict(m, func(source string) bool {
		return source == mainURL
	}, filename)
	if err != nil {
		return "", nil, err
	}
	return res.CSS, m, nil
}

// Close stops the dart-sass process.
func (s *SassPreprocessor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transpiler == nil {
		return nil
	}
	err := s.transpiler.Close()
	s.transpiler = nil
	return err
}

func (s *SassPreprocessor) reset(t *godartsass.Transpiler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transpiler == t {
		s.transpiler = nil
	}
}

func (s *SassPreprocessor) start() (*godartsass.Transpiler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transpiler != nil {
		return s.transpiler, nil
	}
	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: s.Binary,
		Timeout:                  s.Timeout,
		LogEventHandler:          s.OnLog,
	})
	if err != nil {
		return nil, fmt.Errorf("starting dart-sass: %w", err)
	}
	s.transpiler = t
	return t, nil
}

// fileURL and filePath convert between Fs paths and the file URLs the
// importer hands to dart-sass. Relative paths get a leading slash.
func (s *SassPreprocessor) fileURL(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

func (s *SassPreprocessor) filePath(u string) string {
	p := strings.TrimPrefix(u, "file://")
	if !filepath.IsAbs(s.Root) {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p)
}

type sassImporter struct {
	p *SassPreprocessor
}

// CanonicalizeURL returns the file URL a load URL refers to, or "" when it
// refers to nothing.
func (i *sassImporter) CanonicalizeURL(url string) (string, error) {
	if strings.HasPrefix(url, "file://") {
		return i.lookup(i.p.filePath(url)), nil
	}
	if strings.Contains(url, ":") {
		return "", nil
	}
	if found := i.lookup(filepath.Join(i.p.Root, filepath.FromSlash(url))); found != "" {
		return found, nil
	}
	return i.lookup(filepath.Join(i.p.Root, "node_modules", filepath.FromSlash(url))), nil
}

func (i *sassImporter) lookup(p string) string {
	dir, base := filepath.Split(p)
	for _, name := range []string{base, "_" + base} {
		for _, ext := range sassExtensions {
			candidate := filepath.Join(dir, name+ext)
			info, err := i.p.Fs.Stat(candidate)
			if err == nil && !info.IsDir() {
				return i.p.fileURL(candidate)
			}
		}
	}
	return ""
}

// Load reads a canonical URL.
func (i *sassImporter) Load(canonicalizedURL string) (godartsass.Import, error) {
	p := i.p.filePath(canonicalizedURL)
	content, err := afero.ReadFile(i.p.Fs, p)
	if err != nil {
		return godartsass.Import{}, fmt.Errorf("loading %s: %w", p, err)
	}
	syntax := godartsass.SourceSyntaxSCSS
	switch path.Ext(p) {
	case ".sass":
		syntax = godartsass.SourceSyntaxSASS
	case ".css":
		syntax = godartsass.SourceSyntaxCSS
	}
	return godartsass.Import{Content: string(content), SourceSyntax: syntax}, nil
}
