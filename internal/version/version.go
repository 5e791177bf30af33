// Package version holds build metadata, overridable with -ldflags:
//
//	go build -ldflags "-X swell/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the toolchain. It also keys the
	// IR cache.
	Version = "0.1.0-dev"

	GitCommit = ""

	// BuildDate in ISO-8601.
	BuildDate = ""
)

// Banner renders `swell 0.1.0-dev (abc1234, 2026-01-02) go1.25 linux/amd64`.
// With colored, the version parts are highlighted.
func Banner(colored bool) string {
	major := color.New(color.FgYellow, color.Bold)
	minor := color.New(color.FgGreen, color.Bold)
	patch := color.New(color.FgBlue, color.Bold)
	for _, c := range []*color.Color{major, minor, patch} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	v := Version
	if parts := strings.SplitN(v, ".", 3); len(parts) == 3 {
		v = major.Sprint(parts[0]) + "." + minor.Sprint(parts[1]) + "." + patch.Sprint(parts[2])
	}
	var meta []string
	if GitCommit != "" {
		meta = append(meta, GitCommit)
	}
	if BuildDate != "" {
		meta = append(meta, BuildDate)
	}
	out := "swell " + v
	if len(meta) > 0 {
		out += " (" + strings.Join(meta, ", ") + ")"
	}
	return fmt.Sprintf("%s %s %s/%s", out, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
