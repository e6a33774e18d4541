// Package pipeline compiles a tree of components concurrently and hands
// the results to a sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/sfckit/sfcc/internal/compiler"
	"github.com/sfckit/sfcc/internal/output"
	"github.com/sfckit/sfcc/internal/sink"
)

// ComponentExt is the extension of files picked up by Discover.
const ComponentExt = ".vue"

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
}

// Discover returns the components below root as slash-separated paths
// relative to root, sorted. Hidden directories are skipped.
func Discover(fsys afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if info.IsDir() {
			if p != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(name) != ComponentExt {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering components in %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Options configures Run.
type Options struct {
	Fs afero.Fs
	// Root is the directory component paths are relative to.
	Root string
	// Jobs bounds concurrent compiles; values below 1 use GOMAXPROCS.
	Jobs int
	// Compile is the template for every component. Filename is set per file.
	Compile compiler.Options
	// Sink receives successful results. Nil skips writing.
	Sink sink.Sink
}

// Item is the outcome for one component.
type Item struct {
	File     string
	Result   *compiler.Result
	Err      error
	Duration time.Duration
}

// Report holds one Item per input file, in input order.
type Report struct {
	Items []Item
}

// Failed returns the items that did not compile or could not be written.
func (r *Report) Failed() []Item {
	var failed []Item
	for _, it := range r.Items {
		if it.Err != nil {
			failed = append(failed, it)
		}
	}
	return failed
}

// Err joins the errors of all failed items, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, it := range r.Failed() {
		errs = append(errs, it.Err)
	}
	return errors.Join(errs...)
}

// Run compiles files and writes each successful result to opts.Sink.
// Component failures are recorded per item and never stop other files;
// only context cancellation aborts the run.
func Run(ctx context.Context, files []string, opts Options) (*Report, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = runtime.GOMAXPROCS(0)
	}

	report := &Report{Items: make([]Item, len(files))}
	output.Debug("compiling components", "count", len(files), "jobs", jobs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Items[i] = compileOne(gctx, file, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	output.Debug("compile complete", "count", len(files), "failed", len(report.Failed()))
	return report, nil
}

func compileOne(ctx context.Context, file string, opts Options) (item Item) {
	start := time.Now()
	item.File = file
	defer func() { item.Duration = time.Since(start) }()

	src, err := afero.ReadFile(opts.Fs, filepath.Join(opts.Root, filepath.FromSlash(file)))
	if err != nil {
		item.Err = fmt.Errorf("reading %s: %w", file, err)
		return item
	}

	copts := opts.Compile
	copts.Filename = file
	if copts.Root == "" {
		copts.Root = opts.Root
	}
	item.Result = compiler.Compile(string(src), copts)
	if !item.Result.OK() {
		item.Err = &CompileError{File: file, Errs: item.Result.Errors}
		output.Debug("compile failed", "file", file, "errors", len(item.Result.Errors))
		return item
	}

	if opts.Sink != nil {
		if err := opts.Sink.Write(ctx, item.Result); err != nil {
			item.Err = &WriteError{File: file, Cause: err}
		}
	}
	output.Debug("compiled component", "file", file, "id", item.Result.ID, "css", len(item.Result.CSS))
	return item
}
