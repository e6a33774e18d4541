// Package testutil provides test helpers shared by package tests.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// Button is a minimal component with a template, a plain script and a
// scoped style.
const Button = `<template>
  <button class="btn">{{ label }}</button>
</template>

<script>
export default {
  data() {
    return { label: 'ok' }
  }
}
</script>

<style scoped>
.btn { color: red; }
</style>
`

// MemTree returns an in-memory filesystem holding files, keyed by
// absolute slash path.
func MemTree(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return fs
}

// WriteTree writes files below dir on disk, creating parents, and
// returns dir.
func WriteTree(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// CaptureStdout runs fn with os.Stdout redirected and returns what it
// wrote.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()

	defer func() {
		os.Stdout = orig
	}()
	fn()
	w.Close()
	return string(<-done)
}
