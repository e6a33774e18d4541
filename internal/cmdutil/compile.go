package cmdutil

import (
	"path"
	"strings"

	"github.com/bep/godartsass/v2"
	"github.com/spf13/afero"

	"github.com/sfckit/sfcc/internal/compiler"
	"github.com/sfckit/sfcc/internal/config"
	"github.com/sfckit/sfcc/internal/output"
	"github.com/sfckit/sfcc/internal/pipeline"
	"github.com/sfckit/sfcc/internal/sink"
	"github.com/sfckit/sfcc/internal/style"
)

// CompilerOptions builds compile options and the section compilers they
// use from cfg. Callers Close the returned compilers.
func CompilerOptions(fs afero.Fs, cfg *config.Config) (compiler.Options, compiler.Compilers) {
	compilers := compiler.DefaultCompilers(fs, cfg.Root)
	if sc, ok := compilers.Style.(*style.Compiler); ok {
		if sass, ok := sc.Sass.(*style.SassPreprocessor); ok {
			sass.Binary = cfg.Sass.Binary
			sass.OnLog = func(ev godartsass.LogEvent) {
				output.Warn("sass: " + ev.Message)
			}
		}
		if less, ok := sc.Less.(*style.LessPreprocessor); ok {
			less.Binary = cfg.Less.Binary
		}
	}
	return compiler.Options{
		Root:               cfg.Root,
		AutoImportCSS:      cfg.AutoImportCSS,
		AutoResolveImports: cfg.AutoResolveImports,
		IsProd:             cfg.IsProd,
		Resolver:           ResolveImport,
		Compilers:          compilers,
	}, compilers
}

// ResolveImport selects the imports rewritten to compiled output names:
// relative component and script specifiers. Bare package specifiers
// resolve to "" and are left alone.
func ResolveImport(spec string) string {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return ""
	}
	switch path.Ext(spec) {
	case ".vue", ".ts", ".tsx", ".jsx":
		return spec
	}
	return ""
}

// S3Config maps the publish settings onto the object-store sink.
func S3Config(cfg *config.Config) sink.S3Config {
	p := cfg.Publish
	return sink.S3Config{
		Endpoint:  p.Endpoint,
		Region:    p.Region,
		AccessKey: p.AccessKey,
		SecretKey: p.SecretKey,
		Bucket:    p.Bucket,
		Prefix:    p.Prefix,
		UseSSL:    p.UseSSL,
	}
}

// BuildReport summarizes a pipeline run for output.WriteReport.
func BuildReport(r *pipeline.Report) *output.Report {
	rep := &output.Report{}
	for _, it := range r.Items {
		fr := output.FileReport{
			File:       it.File,
			Status:     output.StatusCompiled,
			DurationMS: it.Duration.Milliseconds(),
		}
		if res := it.Result; res != nil {
			fr.ID = res.ID
			if res.OK() {
				fr.Outputs = outputNames(res)
			}
			for _, ext := range res.ExternalJS {
				fr.ExternalJS = append(fr.ExternalJS, ext.Path())
			}
			for _, ext := range res.ExternalCSS {
				fr.ExternalCSS = append(fr.ExternalCSS, ext.Path())
			}
		}
		if it.Err != nil {
			fr.Status = output.StatusFailed
			fr.Errors = itemErrors(it)
		}
		rep.Add(fr)
	}
	return rep
}

func outputNames(res *compiler.Result) []string {
	objs, err := sink.Objects(res)
	if err != nil {
		return nil
	}
	names := make([]string, len(objs))
	for i, o := range objs {
		names[i] = o.Name
	}
	return names
}

func itemErrors(it pipeline.Item) []string {
	if it.Result == nil || it.Result.OK() {
		return []string{it.Err.Error()}
	}
	errs := make([]string, len(it.Result.Errors))
	for i, err := range it.Result.Errors {
		errs[i] = err.Error()
	}
	return errs
}
