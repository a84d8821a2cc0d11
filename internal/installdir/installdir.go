// Package installdir locates the directory a package's binaries are
// installed into. The package manager normally dictates this; when binpost
// runs outside a package manager the directory can be pinned explicitly.
package installdir

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// EnvBinDir overrides bin directory resolution when set.
const EnvBinDir = "BINPOST_BIN_DIR"

// Resolve determines the bin directory. It never creates anything; callers
// that are about to write call Ensure on the result.
//
// Resolution order:
//  1. explicit (a manifest bin_dir or command-line flag), resolved against
//     baseDir when relative;
//  2. the BINPOST_BIN_DIR environment variable;
//  3. the npm prefix query, yielding <prefix>/node_modules/.bin;
//  4. baseDir/node_modules/.bin, when that directory already exists.
func Resolve(ctx context.Context, explicit, baseDir string) (string, error) {
	if explicit != "" {
		return resolveAgainst(baseDir, explicit), nil
	}

	if dir := os.Getenv(EnvBinDir); dir != "" {
		return resolveAgainst(baseDir, dir), nil
	}

	if dir, err := npmBinDir(ctx, baseDir); err == nil {
		return dir, nil
	}

	local := filepath.Join(baseDir, "node_modules", ".bin")
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		return local, nil
	}

	return "", fmt.Errorf("no install directory: set %s or configure bin_dir", EnvBinDir)
}

// Ensure creates the resolved directory if it does not exist yet.
func Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create install directory: %w", err)
	}
	return nil
}

// npmBinDir asks npm for its prefix and derives the bin directory from it.
func npmBinDir(ctx context.Context, baseDir string) (string, error) {
	npm, err := exec.LookPath("npm")
	if err != nil {
		return "", fmt.Errorf("npm not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, npm, "prefix")
	cmd.Dir = baseDir

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("npm prefix: %w", err)
	}

	prefix := strings.TrimSpace(string(out))
	if prefix == "" {
		return "", fmt.Errorf("npm prefix returned nothing")
	}

	return filepath.Join(prefix, "node_modules", ".bin"), nil
}

func resolveAgainst(baseDir, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(baseDir, dir)
}
