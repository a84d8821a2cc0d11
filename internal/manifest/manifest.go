// Package manifest reads and validates the binpost.yaml file a package
// ships to describe its binary release: where the platform archives live,
// what the binary entry is called, and how to verify the download.
package manifest

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/binpost/binpost/internal/platform"
)

// DefaultFileName is the manifest file binpost looks for when no explicit
// path is given.
const DefaultFileName = "binpost.yaml"

// archiveExt is the container format binpost consumes. Exposed to templates
// as {{ext}} so URL patterns read naturally.
const archiveExt = "zip"

// placeholderRe matches {{name}}-style template placeholders.
var placeholderRe = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Manifest describes one binary release.
type Manifest struct {
	// Name is the binary's name and, unless Bin overrides it, the archive
	// entry to extract.
	Name string `yaml:"name"`

	// Version substitutes {{version}} in URL templates.
	Version string `yaml:"version"`

	// URL is the archive URL template. Recognized placeholders: {{name}},
	// {{version}}, {{os}}, {{arch}}, {{libc}}, {{ext}}.
	URL string `yaml:"url"`

	// Bin overrides the archive entry name when it differs from Name.
	Bin string `yaml:"bin"`

	// Checksums is an optional URL template for a sha256sum-format file.
	Checksums string `yaml:"checksums"`

	// Signature is an optional URL template for a detached GPG signature
	// over the archive. Requires PublicKey.
	Signature string `yaml:"signature"`

	// PublicKey is the path to the armored GPG public key used to check
	// Signature, relative to the manifest's directory when not absolute.
	PublicKey string `yaml:"public_key"`

	// BinDir optionally pins the install directory, relative to the
	// manifest's directory when not absolute.
	BinDir string `yaml:"bin_dir"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := checkPlainName(m.Name); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if m.Bin != "" {
		if err := checkPlainName(m.Bin); err != nil {
			return fmt.Errorf("bin: %w", err)
		}
	}
	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if m.URL == "" {
		return fmt.Errorf("url is required")
	}
	if m.Signature != "" && m.PublicKey == "" {
		return fmt.Errorf("signature requires public_key")
	}
	return nil
}

// checkPlainName rejects names that could escape the install directory.
// Entry names come from the manifest, not the archive, but a manifest in a
// compromised package must still not be able to write outside bin_dir.
func checkPlainName(name string) error {
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q must be a plain file name", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%q must be a plain file name", name)
	}
	return nil
}

// EntryName returns the archive entry to extract for the given platform.
// Windows releases conventionally suffix the binary with .exe; an explicit
// bin field is taken literally.
func (m *Manifest) EntryName(info *platform.Info) string {
	if m.Bin != "" {
		return m.Bin
	}
	if info.IsWindows() {
		return m.Name + ".exe"
	}
	return m.Name
}

// ArchiveURL renders the archive URL template for the given platform.
func (m *Manifest) ArchiveURL(info *platform.Info) (string, error) {
	return m.render(m.URL, info)
}

// ChecksumsURL renders the checksums URL template, or returns "" when the
// manifest does not configure checksum verification.
func (m *Manifest) ChecksumsURL(info *platform.Info) (string, error) {
	if m.Checksums == "" {
		return "", nil
	}
	return m.render(m.Checksums, info)
}

// SignatureURL renders the signature URL template, or returns "" when the
// manifest does not configure signature verification.
func (m *Manifest) SignatureURL(info *platform.Info) (string, error) {
	if m.Signature == "" {
		return "", nil
	}
	return m.render(m.Signature, info)
}

// render substitutes the recognized placeholders into tmpl. Unknown
// placeholders are errors: a typo in a URL template should fail the install
// loudly, not produce a 404 with {{vesion}} in the path.
func (m *Manifest) render(tmpl string, info *platform.Info) (string, error) {
	vars := map[string]string{
		"name":    m.Name,
		"version": m.Version,
		"os":      info.OS,
		"arch":    info.Arch,
		"libc":    info.Libc,
		"ext":     archiveExt,
	}

	var unknown []string
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		val, ok := vars[key]
		if !ok {
			unknown = append(unknown, key)
			return match
		}
		return val
	})

	if len(unknown) > 0 {
		return "", fmt.Errorf("unknown placeholder(s) in %q: %s", tmpl, strings.Join(unknown, ", "))
	}
	return out, nil
}
