// Package platform resolves the host's identity into the naming scheme
// binary releases use. Release archives are published per platform with
// names like "mytool-1.4.2-linux-x64.zip"; this package maps Go's runtime
// identifiers onto those names and detects the C library flavor on Linux,
// where publishers commonly ship separate glibc and musl builds.
package platform

import "context"

// C library flavors used in release names on Linux.
const (
	LibcGNU  = "gnu"
	LibcMusl = "musl"
)

// Info contains the host identity in release-name form.
type Info struct {
	OS   string // "linux", "darwin", "win32"
	Arch string // "x64", "ia32", "arm64", "arm"
	Libc string // "gnu" or "musl" on Linux, empty elsewhere
}

// IsWindows returns true when the host resolves to a Windows release name.
func (i *Info) IsWindows() bool {
	return i.OS == "win32"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
