package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfckit/sfcc/internal/compiler"
)

const card = `<template>
  <div class="card">{{ title }}</div>
</template>

<script>
export default {
  props: ['title']
}
</script>

<style scoped>
.card { color: red; }
</style>
`

func newServer(t *testing.T) (*Server, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/src/Card.vue", []byte(card), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/app/index.html", []byte("<!doctype html>"), 0o644))
	s, err := New(fs, "/app", compiler.Options{AutoImportCSS: true}, 8)
	require.NoError(t, err)
	return s, fs
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSourceFor(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"src/Card.vue.js", "src/Card.vue", true},
		{"src/Card.vue.js.map", "src/Card.vue", true},
		{"src/Card.vue.css", "src/Card.vue", true},
		{"src/Card.vue.2.module.css", "src/Card.vue", true},
		{"src/Card.vue.2.module.css.map", "src/Card.vue", true},
		{"src/Card.vue", "", false},
		{"main.js", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SourceFor(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCache(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)
	opts := compiler.Options{Filename: "A.vue"}

	first, hit := c.Compile(card, opts)
	assert.False(t, hit)
	second, hit := c.Compile(card, opts)
	assert.True(t, hit)
	assert.Same(t, first, second)

	_, hit = c.Compile(card+"\n", opts)
	assert.False(t, hit, "content change misses")

	opts.Filename = "B.vue"
	_, hit = c.Compile(card, opts)
	assert.False(t, hit, "filename change misses")
	assert.Equal(t, 2, c.Len())
}

func TestCache_KeyCollision(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)
	opts := compiler.Options{Filename: "A.vue"}

	stale := compiler.Compile(card, opts)
	edited := card + "<!-- edited -->\n"
	c.results.Add(cacheKey("A.vue", edited), cacheEntry{source: card, result: stale})

	res, hit := c.Compile(edited, opts)
	assert.False(t, hit)
	assert.NotSame(t, stale, res)

	assert.Len(t, strings.TrimPrefix(cacheKey("A.vue", card), "A.vue\x00"), 16)
}

func TestHandler_ServesOutputs(t *testing.T) {
	s, _ := newServer(t)
	h := s.Handler()

	js := get(t, h, "/src/Card.vue.js")
	require.Equal(t, http.StatusOK, js.Code)
	assert.Equal(t, "text/javascript", js.Header().Get("Content-Type"))
	assert.Contains(t, js.Body.String(), "import './Card.vue.css';")
	assert.Contains(t, js.Body.String(), "//# sourceMappingURL=Card.vue.js.map")

	css := get(t, h, "/src/Card.vue.css")
	require.Equal(t, http.StatusOK, css.Code)
	assert.Contains(t, css.Body.String(), ".card[data-v-")

	m := get(t, h, "/src/Card.vue.js.map")
	require.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), `"src/Card.vue"`)

	assert.Equal(t, 1, s.Cache.Len())
}

func TestHandler_Errors(t *testing.T) {
	s, fs := newServer(t)
	h := s.Handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/src/Missing.vue.js").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/src/Card.vue.0.module.css").Code)

	require.NoError(t, afero.WriteFile(fs, "/app/src/Bad.vue", []byte(`<script lang="coffee">x</script>`), 0o644))
	bad := get(t, h, "/src/Bad.vue.js")
	assert.Equal(t, http.StatusInternalServerError, bad.Code)
	assert.Contains(t, bad.Body.String(), "coffee")
}

func TestHandler_Static(t *testing.T) {
	s, _ := newServer(t)
	h := s.Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<!doctype html>", rec.Body.String())

	// The file server canonicalizes index.html to its directory.
	redirect := get(t, h, "/index.html")
	assert.Equal(t, http.StatusMovedPermanently, redirect.Code)
	assert.Equal(t, "./", redirect.Header().Get("Location"))
}

func TestReload(t *testing.T) {
	s, fs := newServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + ReloadPath
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	require.Eventually(t, func() bool { return s.Hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Changed("src/Card.vue")
	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventUpdate, ev.Type)
	assert.Equal(t, "src/Card.vue", ev.File)
	assert.Len(t, ev.ID, 8)

	require.NoError(t, afero.WriteFile(fs, "/app/src/Card.vue", []byte(`<style lang="stylus">a{}</style>`), 0o644))
	s.Changed("src/Card.vue")
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventError, ev.Type)
	require.Len(t, ev.Errors, 1)
	assert.Contains(t, ev.Errors[0], "stylus")

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return s.Hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))

	w, err := NewWatcher(dir)
	require.NoError(t, err)
	w.Debounce = 100 * time.Millisecond

	var (
		mu      sync.Mutex
		changed []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(file string) {
			mu.Lock()
			changed = append(changed, file)
			mu.Unlock()
		})
	}()

	target := filepath.Join(dir, "src", "Card.vue")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte(card), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "notes.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	}, 3*time.Second, 20*time.Millisecond)
	time.Sleep(250 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"src/Card.vue"}, changed)
	mu.Unlock()

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_NewDirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	w.Debounce = 10 * time.Millisecond

	got := make(chan string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, func(file string) { got <- file }) }()

	sub := filepath.Join(dir, "views")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// The directory is added asynchronously; keep writing until an event lands.
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case file := <-got:
			assert.Equal(t, "views/Home.vue", file)
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(filepath.Join(sub, "Home.vue"), []byte(card), 0o644))
		case <-deadline:
			t.Fatal("no change reported for file in new directory")
		}
	}
}

