// Package verify checks downloaded release archives against the integrity
// material a manifest configures: a sha256sum-format checksum file, a
// detached GPG signature, or both. All checks run over the in-memory archive
// buffer before anything is extracted.
package verify

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Method indicates how an archive was verified.
type Method int

const (
	// MethodNone indicates no verification was configured.
	MethodNone Method = iota
	// MethodSHA256 indicates checksum verification.
	MethodSHA256
	// MethodGPG indicates GPG signature verification.
	MethodGPG
)

// String returns the string representation of the verification method.
func (m Method) String() string {
	switch m {
	case MethodSHA256:
		return "SHA256"
	case MethodGPG:
		return "GPG"
	case MethodNone:
		return "None"
	default:
		return "Unknown"
	}
}

// Checksum verifies archive against a sha256sum-format checksums file.
// filename selects the relevant line, matching either the exact recorded
// name or its basename.
func Checksum(archive, checksums []byte, filename string) error {
	sum := sha256.Sum256(archive)
	actual := hex.EncodeToString(sum[:])

	expected, err := findChecksum(checksums, filename)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("checksum mismatch for %s:\nactual:   %s\nexpected: %s",
			filename, actual, expected)
	}

	return nil
}

// findChecksum finds the checksum for a specific filename in checksum data.
// Format: "abc123def456  filename.zip"
func findChecksum(checksums []byte, filename string) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(checksums))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		// Exact match first, then basename for checksum files that record
		// paths like "dist/mytool-linux-x64.zip".
		recorded := strings.TrimPrefix(parts[1], "*") // sha256sum binary-mode marker
		if recorded == filename || filepath.Base(recorded) == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("checksum not found for %s", filename)
}

// Signature verifies a detached GPG signature over archive using the public
// key stored at keyPath. Armored signatures are tried first, then binary.
func Signature(archive, signature []byte, keyPath string) error {
	keyring, err := loadKeyring(keyPath)
	if err != nil {
		return fmt.Errorf("load keyring: %w", err)
	}

	_, err = openpgp.CheckArmoredDetachedSignature(
		keyring, bytes.NewReader(archive), bytes.NewReader(signature), nil)
	if err != nil {
		_, err = openpgp.CheckDetachedSignature(
			keyring, bytes.NewReader(archive), bytes.NewReader(signature), nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	return nil
}

// loadKeyring loads a GPG public keyring from disk, accepting armored or
// binary form.
func loadKeyring(keyPath string) (openpgp.EntityList, error) {
	keyFile, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		if _, serr := keyFile.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("rewind keyring: %w", serr)
		}
		keyring, err = openpgp.ReadKeyRing(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}
