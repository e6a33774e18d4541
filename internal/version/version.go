// Package version provides version information for sfcc.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags.
var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const (
	esbuildModule = "github.com/evanw/esbuild"
	cueModule     = "cuelang.org/go"
)

// Info contains version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`

	// EsbuildVersion is the embedded esbuild used for type stripping and
	// CSS lowering.
	EsbuildVersion string `json:"esbuildVersion"`

	// CUESDKVersion is the embedded CUE SDK used for config validation.
	CUESDKVersion string `json:"cueSDKVersion"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:        Version,
		GitCommit:      GitCommit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		EsbuildVersion: dependencyVersion(esbuildModule),
		CUESDKVersion:  dependencyVersion(cueModule),
	}
}

func dependencyVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return "unknown"
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("sfcc version %s\n  Commit:    %s\n  Built:     %s\n  Go:        %s\n  esbuild:   %s\n  CUE SDK:   %s",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.EsbuildVersion, i.CUESDKVersion)
}
