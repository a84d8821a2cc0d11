// Package archive pulls a single named entry out of a fully materialized zip
// archive. Zip entries are offset-addressed through the central directory at
// the end of the container, so the whole archive must be in memory before
// extraction can start; collecting the buffer first is the caller's job.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// defaultMode is applied when the container recorded no permission bits for
// an entry, which is common for archives produced on non-Unix systems.
const defaultMode = os.FileMode(0o666)

var (
	// ErrMalformed marks buffers that do not parse as a zip container, or
	// entries whose compressed data is truncated or corrupt.
	ErrMalformed = errors.New("malformed archive")

	// ErrWrite marks failures to write a located entry to its destination.
	ErrWrite = errors.New("write extracted entry")
)

// Result reports the outcome of a single-entry extraction.
type Result struct {
	// Path is the destination the entry was written to. Empty when the
	// entry was absent.
	Path string

	// Found reports whether the entry existed as a regular file. A missing
	// entry, or one recorded as a directory, is not an error at this layer;
	// the caller decides whether that matters.
	Found bool
}

// ExtractOne locates entryName in the zip container held in buf and writes
// its decompressed content to destDir/entryName, overwriting any existing
// file and preserving the entry's recorded permission bits.
//
// The lookup is an exact name match. destDir must already exist. entryName
// is trusted as a plain file name; callers pass names from their own
// manifest, never from the archive.
func ExtractOne(buf []byte, entryName, destDir string) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	for _, f := range zr.File {
		if f.Name != entryName {
			continue
		}
		if f.FileInfo().IsDir() {
			return Result{}, nil
		}
		return writeEntry(f, filepath.Join(destDir, entryName))
	}

	return Result{}, nil
}

// writeEntry decompresses f fully in memory and writes it to destPath with
// the entry's mode, or defaultMode when the container recorded none.
func writeEntry(f *zip.File, destPath string) (Result, error) {
	rc, err := f.Open()
	if err != nil {
		return Result{}, fmt.Errorf("%w: open entry %s: %w", ErrMalformed, f.Name, err)
	}

	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		// Truncated or corrupt deflate stream, or a CRC mismatch. The
		// container itself is bad, not the destination.
		return Result{}, fmt.Errorf("%w: read entry %s: %w", ErrMalformed, f.Name, err)
	}

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = defaultMode
	}

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if _, err := out.Write(content); err != nil {
		out.Close()
		return Result{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := out.Close(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	// O_CREATE only applies the mode to new files, and the umask may have
	// masked bits off. Enforce the recorded mode on the final file.
	if err := os.Chmod(destPath, mode); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return Result{Path: destPath, Found: true}, nil
}
