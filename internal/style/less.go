package style

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sfckit/sfcc/internal/sourcemap"
)

var inlineMapComment = regexp.MustCompile(`(?s)\n?/\*# sourceMappingURL=data:application/json;base64,([A-Za-z0-9+/=]+) ?\*/\s*$`)

// LessPreprocessor runs the lessc command line compiler.
type LessPreprocessor struct {
	// Binary defaults to "lessc".
	Binary string
	// Root is added to the include paths.
	Root    string
	Timeout time.Duration
}

var _ Preprocessor = (*LessPreprocessor)(nil)

// Preprocess compiles src, the content of a style block in filename. The
// block is written to a temporary file so that lessc reports a stable
// source name.
func (l *LessPreprocessor) Preprocess(_, src, filename string) (string, *sourcemap.SourceMap, error) {
	bin := l.Binary
	if bin == "" {
		bin = "lessc"
	}
	timeout := l.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	dir, err := os.MkdirTemp("", "sfcc-less-")
	if err != nil {
		return "", nil, err
	}
	defer os.RemoveAll(dir)
	input := filepath.Join(dir, strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))+".less")
	if err := os.WriteFile(input, []byte(src), 0o600); err != nil {
		return "", nil, err
	}

	args := []string{"--source-map-map-inline"}
	if l.Root != "" {
		args = append(args, "--include-path="+l.Root)
	}
	args = append(args, input)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", nil, fmt.Errorf("less: %s", strings.ReplaceAll(msg, input, filename))
		}
		return "", nil, fmt.Errorf("less: %w", err)
	}

	css, m, err := splitInlineMap(stdout.String(), filepath.Base(input), filename)
	if err != nil {
		return "", nil, err
	}
	return css, m, nil
}

// splitInlineMap removes a trailing data-URI map comment from css and
// returns the map restricted to the source named base.
func splitInlineMap(css, base, filename string) (string, *sourcemap.SourceMap, error) {
	loc := inlineMapComment.FindStringSubmatchIndex(css)
	if loc == nil {
		return css, nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(css[loc[2]:loc[3]])
	if err != nil {
		return "", nil, fmt.Errorf("decoding less map: %w", err)
	}
	m, err := sourcemap.Parse(data)
	if err != nil {
		return "", nil, fmt.Errorf("reading less map: %w", err)
	}
	m, err = sourcemap.Restrict(m, func(source string) bool {
		return filepath.Base(filepath.FromSlash(source)) == base
	}, filename)
	if err != nil {
		return "", nil, err
	}
	return css[:loc[0]] + "\n", m, nil
}
