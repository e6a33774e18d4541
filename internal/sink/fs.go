package sink

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sfckit/sfcc/internal/compiler"
	"github.com/sfckit/sfcc/internal/output"
)

// FS writes objects below Dir of a filesystem.
type FS struct {
	Fs  afero.Fs
	Dir string
}

var _ Sink = (*FS)(nil)

// Write implements Sink.
func (s *FS) Write(_ context.Context, res *compiler.Result) error {
	objs, err := Objects(res)
	if err != nil {
		return err
	}
	for _, obj := range objs {
		dest := filepath.Join(s.Dir, filepath.FromSlash(obj.Name))
		if err := s.Fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := afero.WriteFile(s.Fs, dest, obj.Data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		output.Debug("wrote output", "path", dest, "bytes", len(obj.Data))
	}
	return nil
}
