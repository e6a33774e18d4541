package version

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/bep/godartsass/v2"
)

// versionRegex matches versions like "lessc 4.2.0 (Less Compiler)".
var versionRegex = regexp.MustCompile(`v?\d+\.\d+\.\d+(?:-[a-zA-Z0-9.]+)?`)

// ToolInfo describes an external preprocessor binary.
type ToolInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Found   bool   `json:"found"`
	Message string `json:"message,omitempty"`
}

// String renders one line for `sfcc version`.
func (t ToolInfo) String() string {
	if !t.Found {
		return fmt.Sprintf("  %-10s not found (%s)", t.Name+":", t.Message)
	}
	return fmt.Sprintf("  %-10s %s (%s)", t.Name+":", t.Version, t.Path)
}

// DetectSass locates the embedded-protocol dart-sass binary and asks it
// for its version.
func DetectSass(binary string) ToolInfo {
	if binary == "" {
		binary = "sass"
	}
	info := ToolInfo{Name: "sass"}
	path, err := exec.LookPath(binary)
	if err != nil {
		info.Message = binary + " not in PATH"
		return info
	}
	info.Path = path
	v, err := godartsass.Version(path)
	if err != nil {
		info.Message = "failed to get version: " + err.Error()
		return info
	}
	info.Found = true
	info.Version = v.CompilerVersion
	return info
}

// DetectLess locates lessc and parses its --version output.
func DetectLess(binary string) ToolInfo {
	if binary == "" {
		binary = "lessc"
	}
	info := ToolInfo{Name: "less"}
	path, err := exec.LookPath(binary)
	if err != nil {
		info.Message = binary + " not in PATH"
		return info
	}
	info.Path = path

	cmd := exec.Command(path, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		info.Message = "failed to get version: " + err.Error()
		return info
	}
	info.Found = true
	info.Version = extractVersion(out.String())
	return info
}

func extractVersion(s string) string {
	return versionRegex.FindString(s)
}
