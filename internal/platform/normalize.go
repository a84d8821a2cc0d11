package platform

import (
	"fmt"
	"strings"
)

// muslFamilies lists distribution identifiers whose native libc is musl.
var muslFamilies = map[string]bool{
	"alpine":       true,
	"postmarketos": true,
}

// mapOS converts a GOOS value to the OS name used in release archives.
func mapOS(goos string) (string, error) {
	switch goos {
	case "linux":
		return "linux", nil
	case "darwin":
		return "darwin", nil
	case "windows":
		return "win32", nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", goos)
	}
}

// mapArch converts a GOARCH value to the architecture name used in release
// archives.
func mapArch(goarch string) (string, error) {
	switch goarch {
	case "amd64":
		return "x64", nil
	case "386":
		return "ia32", nil
	case "arm64":
		return "arm64", nil
	case "arm":
		return "arm", nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", goarch)
	}
}

// isMuslDistro reports whether the detected distribution identifiers point
// at a musl-based system.
func isMuslDistro(platform, family string) bool {
	platform = strings.ToLower(strings.TrimSpace(platform))
	family = strings.ToLower(strings.TrimSpace(family))
	return muslFamilies[platform] || muslFamilies[family]
}
