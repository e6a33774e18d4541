package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfckit/sfcc/internal/compiler"
	"github.com/sfckit/sfcc/internal/sink"
	"github.com/sfckit/sfcc/internal/testutil"
)

const button = `<template>
  <button>{{ label }}</button>
</template>

<script>
export default {
  data() {
    return { label: 'ok' }
  }
}
</script>
`

func TestDiscover(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{
		"/app/App.vue":                    button,
		"/app/components/Button.vue":      button,
		"/app/components/util.ts":         "export {}",
		"/app/node_modules/lib/Lib.vue":   button,
		"/app/.cache/Stale.vue":           button,
		"/app/components/nested/Deep.vue": button,
	})

	files, err := Discover(fs, "/app")
	require.NoError(t, err)
	assert.Equal(t, []string{"App.vue", "components/Button.vue", "components/nested/Deep.vue"}, files)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(afero.NewMemMapFs(), "/missing")
	assert.Error(t, err)
}

type recordingSink struct {
	mu    sync.Mutex
	files []string
	err   error
}

func (s *recordingSink) Write(_ context.Context, res *compiler.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, res.JS.Filename)
	return s.err
}

func TestRun(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{
		"/app/A.vue":     button,
		"/app/B.vue":     `<script lang="coffee">x = 1</script>`,
		"/app/sub/C.vue": button,
	})
	rec := &recordingSink{}

	report, err := Run(context.Background(), []string{"A.vue", "B.vue", "sub/C.vue", "Missing.vue"}, Options{
		Fs:   fs,
		Root: "/app",
		Jobs: 2,
		Sink: rec,
	})
	require.NoError(t, err)
	require.Len(t, report.Items, 4)

	assert.Equal(t, "A.vue", report.Items[0].File)
	assert.NoError(t, report.Items[0].Err)
	assert.Equal(t, "A.vue.js", report.Items[0].Result.JS.Filename)
	assert.Contains(t, report.Items[0].Result.JS.Code, "export default __sfc__")

	var cerr *CompileError
	require.ErrorAs(t, report.Items[1].Err, &cerr)
	assert.Equal(t, "B.vue", cerr.File)
	assert.ErrorIs(t, report.Items[1].Err, compiler.ErrUnsupportedLanguage)

	assert.NoError(t, report.Items[2].Err)
	assert.Equal(t, "sub/C.vue.js", report.Items[2].Result.JS.Filename)

	assert.ErrorContains(t, report.Items[3].Err, "reading Missing.vue")

	assert.ElementsMatch(t, []string{"A.vue.js", "sub/C.vue.js"}, rec.files)
	assert.Len(t, report.Failed(), 2)
	assert.Error(t, report.Err())
}

func TestRun_SinkFailure(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{"/app/A.vue": button})
	report, err := Run(context.Background(), []string{"A.vue"}, Options{
		Fs:   fs,
		Root: "/app",
		Sink: &recordingSink{err: errors.New("disk full")},
	})
	require.NoError(t, err)

	var werr *WriteError
	require.ErrorAs(t, report.Items[0].Err, &werr)
	assert.ErrorContains(t, werr, "disk full")
}

func TestRun_WritesToFS(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{"/app/A.vue": button})
	report, err := Run(context.Background(), []string{"A.vue"}, Options{
		Fs:   fs,
		Root: "/app",
		Sink: &sink.FS{Fs: fs, Dir: "/out"},
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	data, err := afero.ReadFile(fs, "/out/A.vue.js")
	require.NoError(t, err)
	assert.Contains(t, string(data), "//# sourceMappingURL=A.vue.js.map")
}

func TestRun_Cancelled(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{"/app/A.vue": button})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []string{"A.vue"}, Options{Fs: fs, Root: "/app"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileError_Format(t *testing.T) {
	one := &CompileError{File: "A.vue", Errs: []error{errors.New("boom")}}
	assert.Equal(t, "A.vue: boom", one.Error())

	two := &CompileError{File: "A.vue", Errs: []error{errors.New("a"), errors.New("b")}}
	assert.Equal(t, "A.vue: 2 errors:\n  a\n  b", two.Error())
}
