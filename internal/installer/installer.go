// Package installer wires the pieces of a binary install together: manifest,
// platform detection, download, verification, and single-entry extraction.
package installer

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/binpost/binpost/internal/archive"
	"github.com/binpost/binpost/internal/download"
	"github.com/binpost/binpost/internal/installdir"
	"github.com/binpost/binpost/internal/manifest"
	"github.com/binpost/binpost/internal/platform"
	"github.com/binpost/binpost/internal/verify"
)

// Fetcher downloads a URL fully into memory.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config holds construction options for the installer. Zero values select
// production defaults.
type Config struct {
	Detector platform.Detector
	Fetcher  Fetcher
	Logger   Logger
}

// Options configures one install operation.
type Options struct {
	// ManifestPath locates the binpost.yaml to install from.
	ManifestPath string
	// BinDir overrides install directory resolution when non-empty.
	BinDir string
	// SkipVerify disables checksum and signature verification even when
	// the manifest configures them.
	SkipVerify bool
}

// Result contains information about a completed install.
type Result struct {
	Path     string
	Verified verify.Method
	Duration time.Duration
}

// Installer orchestrates binary download, verification, and installation.
type Installer struct {
	detector platform.Detector
	fetcher  Fetcher
	logger   Logger
}

// New creates an installer.
func New(cfg Config) *Installer {
	inst := &Installer{
		detector: cfg.Detector,
		fetcher:  cfg.Fetcher,
		logger:   cfg.Logger,
	}
	if inst.detector == nil {
		inst.detector = platform.NewDetector()
	}
	if inst.fetcher == nil {
		inst.fetcher = download.NewClient()
	}
	if inst.logger == nil {
		inst.logger = defaultLogger()
	}
	return inst
}

// Install downloads the release archive described by the manifest and places
// its binary in the install directory.
func (i *Installer) Install(ctx context.Context, opts Options) (*Result, error) {
	startTime := time.Now()

	m, info, baseDir, err := i.prepare(ctx, opts)
	if err != nil {
		return nil, err
	}

	binDir, err := i.resolveBinDir(ctx, opts, m, baseDir)
	if err != nil {
		return nil, err
	}
	if err := installdir.Ensure(binDir); err != nil {
		return nil, err
	}

	archiveURL, err := m.ArchiveURL(info)
	if err != nil {
		return nil, fmt.Errorf("render archive url: %w", err)
	}

	i.logger.Info("downloading release archive", "url", archiveURL)
	buf, err := i.fetcher.Fetch(ctx, archiveURL)
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}

	method := verify.MethodNone
	if !opts.SkipVerify {
		method, err = i.verifyArchive(ctx, m, info, buf, archiveURL, baseDir)
		if err != nil {
			return nil, err
		}
	}

	entry := m.EntryName(info)
	res, err := archive.ExtractOne(buf, entry, binDir)
	if err != nil {
		return nil, fmt.Errorf("extract binary: %w", err)
	}
	if !res.Found {
		// The extractor treats a missing entry as a normal outcome; for an
		// install it means the release archive does not ship the binary we
		// were told to expect, which is fatal here.
		return nil, fmt.Errorf("binary %q not found in archive", entry)
	}

	i.logger.Info("installed binary",
		"path", res.Path, "verified", method.String())

	return &Result{
		Path:     res.Path,
		Verified: method,
		Duration: time.Since(startTime),
	}, nil
}

// BinaryPath reports where Install would place the binary, without
// downloading anything.
func (i *Installer) BinaryPath(ctx context.Context, opts Options) (string, error) {
	m, info, baseDir, err := i.prepare(ctx, opts)
	if err != nil {
		return "", err
	}

	binDir, err := i.resolveBinDir(ctx, opts, m, baseDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(binDir, m.EntryName(info)), nil
}

// prepare loads the manifest and detects the platform, the two inputs every
// operation needs.
func (i *Installer) prepare(ctx context.Context, opts Options) (*manifest.Manifest, *platform.Info, string, error) {
	manifestPath := opts.ManifestPath
	if manifestPath == "" {
		manifestPath = manifest.DefaultFileName
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, nil, "", err
	}

	absPath, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("resolve manifest path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	info, err := i.detector.Detect(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	i.logger.Debug("detected platform",
		"os", info.OS, "arch", info.Arch, "libc", info.Libc)

	return m, info, baseDir, nil
}

// resolveBinDir picks the install directory. A command-line override beats
// the manifest's bin_dir; both beat environment and package-manager lookup.
func (i *Installer) resolveBinDir(ctx context.Context, opts Options, m *manifest.Manifest, baseDir string) (string, error) {
	explicit := opts.BinDir
	if explicit == "" {
		explicit = m.BinDir
	}

	binDir, err := installdir.Resolve(ctx, explicit, baseDir)
	if err != nil {
		return "", err
	}
	i.logger.Debug("resolved install directory", "dir", binDir)
	return binDir, nil
}

// verifyArchive runs whichever verifications the manifest configures over
// the in-memory archive. Signature verification outranks checksums in the
// reported method.
func (i *Installer) verifyArchive(ctx context.Context, m *manifest.Manifest, info *platform.Info, buf []byte, archiveURL, baseDir string) (verify.Method, error) {
	method := verify.MethodNone

	checksumsURL, err := m.ChecksumsURL(info)
	if err != nil {
		return method, fmt.Errorf("render checksums url: %w", err)
	}
	if checksumsURL != "" {
		sums, err := i.fetcher.Fetch(ctx, checksumsURL)
		if err != nil {
			return method, fmt.Errorf("download checksums: %w", err)
		}
		if err := verify.Checksum(buf, sums, archiveFileName(archiveURL)); err != nil {
			return method, fmt.Errorf("verify archive: %w", err)
		}
		method = verify.MethodSHA256
	}

	signatureURL, err := m.SignatureURL(info)
	if err != nil {
		return method, fmt.Errorf("render signature url: %w", err)
	}
	if signatureURL != "" {
		sig, err := i.fetcher.Fetch(ctx, signatureURL)
		if err != nil {
			return method, fmt.Errorf("download signature: %w", err)
		}

		keyPath := m.PublicKey
		if !filepath.IsAbs(keyPath) {
			keyPath = filepath.Join(baseDir, keyPath)
		}

		if err := verify.Signature(buf, sig, keyPath); err != nil {
			return method, fmt.Errorf("verify archive: %w", err)
		}
		method = verify.MethodGPG
	}

	if method == verify.MethodNone {
		i.logger.Warn("manifest configures no verification; installing unverified archive")
	}

	return method, nil
}

// archiveFileName extracts the file name checksum entries are recorded
// under from the archive URL.
func archiveFileName(archiveURL string) string {
	if u, err := url.Parse(archiveURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(archiveURL)
}
