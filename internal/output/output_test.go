package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func captureLog(t *testing.T, cfg LogConfig) *bytes.Buffer {
	t.Helper()
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })
	var buf bytes.Buffer
	SetLogger(newLogger(&buf, cfg))
	return &buf
}

func TestLogging_TimestampsDefaultOn(t *testing.T) {
	buf := captureLog(t, LogConfig{})
	Info("hello")
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}`, buf.String())
}

func TestLogging_TimestampsDisabled(t *testing.T) {
	buf := captureLog(t, LogConfig{Timestamps: BoolPtr(false)})
	Info("hello")
	assert.NotRegexp(t, `^\d{2}:\d{2}:\d{2}`, strings.TrimSpace(buf.String()))
}

func TestLogging_Verbose(t *testing.T) {
	buf := captureLog(t, LogConfig{Verbose: true, Timestamps: BoolPtr(false)})
	Debug("verbose-msg", "file", "App.vue")
	out := buf.String()
	assert.Contains(t, out, "verbose-msg")
	assert.Contains(t, out, "App.vue")
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}`, out, "verbose forces timestamps on")
	assert.Equal(t, log.DebugLevel, Logger().GetLevel())
}

func TestLogging_DebugHiddenByDefault(t *testing.T) {
	buf := captureLog(t, LogConfig{})
	Debug("quiet")
	assert.Empty(t, buf.String())
}

func TestFileLogger(t *testing.T) {
	captureLog(t, LogConfig{Verbose: true})
	l := FileLogger("src/App.vue")
	assert.Contains(t, l.GetPrefix(), "src/App.vue")
	assert.Equal(t, log.DebugLevel, l.GetLevel())
}

func TestParseReportFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseReportFormat(""))
	assert.Equal(t, FormatYAML, ParseReportFormat("YML"))
	assert.Equal(t, FormatJSON, ParseReportFormat("json"))
	assert.False(t, ParseReportFormat("xml").IsValid())
}

func sampleReport() *Report {
	r := &Report{}
	r.Add(FileReport{File: "App.vue", ID: "0badcafe", Status: StatusCompiled, Outputs: []string{"App.vue.js", "App.vue.js.map"}})
	r.Add(FileReport{File: "Bad.vue", Status: StatusFailed, Errors: []string{"script: unsupported script lang: coffee"}})
	return r
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatJSON, sampleReport()))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got.Compiled)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, "0badcafe", got.Files[0].ID)
}

func TestWriteReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatYAML, sampleReport()))
	assert.NotContains(t, buf.String(), "externalJs", "omitted when empty")

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"script: unsupported script lang: coffee"}, got.Files[1].Errors)
}

func TestWriteReport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatText, sampleReport()))
	out := buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "App.vue")
	assert.Contains(t, out, "unsupported script lang: coffee")
	assert.Contains(t, out, "1 failed")
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	assert.Error(t, WriteReport(&bytes.Buffer{}, ReportFormat("xml"), &Report{}))
}

func TestFormatSummary(t *testing.T) {
	assert.Contains(t, FormatSummary(1, 0), "1 component compiled")
	assert.Contains(t, FormatSummary(3, 0), "3 components compiled")
	assert.Contains(t, FormatSummary(2, 1), "1 failed")
	assert.Contains(t, FormatSummary(1, 1), "1 component compiled, ")
	assert.Contains(t, FormatSummary(0, 2), "0 components compiled")
}
