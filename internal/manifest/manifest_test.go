package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binpost/binpost/internal/platform"
)

// writeManifest writes content to a temp binpost.yaml and returns its path.
func writeManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `
name: mytool
version: 1.4.2
url: https://example.com/releases/v{{version}}/{{name}}-{{os}}-{{arch}}.{{ext}}
checksums: https://example.com/releases/v{{version}}/checksums.txt
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if m.Name != "mytool" {
		t.Errorf("Name = %q, want %q", m.Name, "mytool")
	}
	if m.Version != "1.4.2" {
		t.Errorf("Version = %q, want %q", m.Version, "1.4.2")
	}
	if m.Checksums == "" {
		t.Error("Checksums not parsed")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "missing name",
			content: "version: 1.0.0\nurl: https://example.com/a.zip\n",
			wantMsg: "name is required",
		},
		{
			name:    "missing version",
			content: "name: mytool\nurl: https://example.com/a.zip\n",
			wantMsg: "version is required",
		},
		{
			name:    "missing url",
			content: "name: mytool\nversion: 1.0.0\n",
			wantMsg: "url is required",
		},
		{
			name:    "signature without public key",
			content: "name: mytool\nversion: 1.0.0\nurl: https://example.com/a.zip\nsignature: https://example.com/a.zip.sig\n",
			wantMsg: "signature requires public_key",
		},
		{
			name:    "name with path separator",
			content: "name: ../evil\nversion: 1.0.0\nurl: https://example.com/a.zip\n",
			wantMsg: "plain file name",
		},
		{
			name:    "bin with path separator",
			content: "name: mytool\nversion: 1.0.0\nurl: https://example.com/a.zip\nbin: sub/tool\n",
			wantMsg: "plain file name",
		},
		{
			name:    "not yaml",
			content: "{{{{",
			wantMsg: "parse manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, tt.content))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	if err == nil {
		t.Fatal("Load() succeeded on a missing file")
	}
}

func TestArchiveURL(t *testing.T) {
	m := &Manifest{
		Name:    "mytool",
		Version: "1.4.2",
		URL:     "https://example.com/v{{version}}/{{name}}-{{os}}-{{arch}}-{{libc}}.{{ext}}",
	}

	tests := []struct {
		name string
		info platform.Info
		want string
	}{
		{
			name: "linux gnu",
			info: platform.Info{OS: "linux", Arch: "x64", Libc: "gnu"},
			want: "https://example.com/v1.4.2/mytool-linux-x64-gnu.zip",
		},
		{
			name: "linux musl",
			info: platform.Info{OS: "linux", Arch: "arm64", Libc: "musl"},
			want: "https://example.com/v1.4.2/mytool-linux-arm64-musl.zip",
		},
		{
			name: "darwin",
			info: platform.Info{OS: "darwin", Arch: "arm64"},
			want: "https://example.com/v1.4.2/mytool-darwin-arm64-.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ArchiveURL(&tt.info)
			if err != nil {
				t.Fatalf("ArchiveURL() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ArchiveURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderUnknownPlaceholder(t *testing.T) {
	m := &Manifest{
		Name:    "mytool",
		Version: "1.0.0",
		URL:     "https://example.com/{{vesion}}/{{name}}.zip",
	}

	_, err := m.ArchiveURL(&platform.Info{OS: "linux", Arch: "x64"})
	if err == nil {
		t.Fatal("ArchiveURL() accepted unknown placeholder")
	}
	if !strings.Contains(err.Error(), "vesion") {
		t.Errorf("error %q does not name the bad placeholder", err)
	}
}

func TestOptionalURLs(t *testing.T) {
	m := &Manifest{Name: "mytool", Version: "1.0.0", URL: "https://example.com/a.zip"}
	info := &platform.Info{OS: "linux", Arch: "x64"}

	if got, err := m.ChecksumsURL(info); err != nil || got != "" {
		t.Errorf("ChecksumsURL() = (%q, %v), want empty", got, err)
	}
	if got, err := m.SignatureURL(info); err != nil || got != "" {
		t.Errorf("SignatureURL() = (%q, %v), want empty", got, err)
	}
}

func TestEntryName(t *testing.T) {
	tests := []struct {
		name string
		m    Manifest
		info platform.Info
		want string
	}{
		{
			name: "plain name",
			m:    Manifest{Name: "mytool"},
			info: platform.Info{OS: "linux"},
			want: "mytool",
		},
		{
			name: "windows gets exe suffix",
			m:    Manifest{Name: "mytool"},
			info: platform.Info{OS: "win32"},
			want: "mytool.exe",
		},
		{
			name: "explicit bin is literal",
			m:    Manifest{Name: "mytool", Bin: "mytool-cli"},
			info: platform.Info{OS: "win32"},
			want: "mytool-cli",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.EntryName(&tt.info); got != tt.want {
				t.Errorf("EntryName() = %q, want %q", got, tt.want)
			}
		})
	}
}
