package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()
	require.NotEmpty(t, info.GoVersion)
	require.NotEmpty(t, info.EsbuildVersion)
	require.NotEmpty(t, info.CUESDKVersion)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:        "v1.0.0",
		GitCommit:      "abc123",
		BuildDate:      "2026-01-29",
		GoVersion:      "go1.25",
		EsbuildVersion: "v0.25.0",
		CUESDKVersion:  "v0.15.4",
	}

	str := info.String()

	assert.Contains(t, str, "sfcc version v1.0.0")
	assert.Contains(t, str, "abc123")
	assert.Contains(t, str, "2026-01-29")
	assert.Contains(t, str, "v0.25.0")
	assert.Contains(t, str, "v0.15.4")
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"lessc 4.2.0 (Less Compiler) [JavaScript]", "4.2.0"},
		{"v1.77.8", "v1.77.8"},
		{"1.80.0-dev", "1.80.0-dev"},
		{"no version here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, extractVersion(tt.input))
		})
	}
}

func TestDetect_MissingBinary(t *testing.T) {
	sass := DetectSass("sfcc-no-such-sass")
	assert.False(t, sass.Found)
	assert.Contains(t, sass.String(), "not found")

	less := DetectLess("sfcc-no-such-lessc")
	assert.False(t, less.Found)
	assert.Equal(t, "less", less.Name)
}
