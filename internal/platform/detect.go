package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect maps the running host onto release naming. OS and architecture come
// from runtime.GOOS and runtime.GOARCH; on Linux the distribution is probed
// with gopsutil to decide between glibc and musl builds.
//
// If distribution detection fails the libc defaults to glibc and detection
// continues: most publishers ship only glibc builds, and failing the whole
// install over a distro probe would help nobody.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	osName, err := mapOS(runtime.GOOS)
	if err != nil {
		return nil, fmt.Errorf("platform detection failed: %w", err)
	}

	arch, err := mapArch(runtime.GOARCH)
	if err != nil {
		return nil, fmt.Errorf("platform detection failed: %w", err)
	}

	info := &Info{OS: osName, Arch: arch}

	if runtime.GOOS == "linux" {
		info.Libc = LibcGNU

		distro, family, _, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			// Cancellation is a hard failure; probe failures fall back.
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}

		if isMuslDistro(distro, family) {
			info.Libc = LibcMusl
		}
	}

	return info, nil
}
