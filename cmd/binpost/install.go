package main

import (
	"context"
	"fmt"
	"time"

	"github.com/binpost/binpost/internal/installer"
)

// installTimeout bounds one whole install, downloads included.
const installTimeout = 10 * time.Minute

// runInstall handles the `binpost install` subcommand
func runInstall(args []string) error {
	opts, verbose, showHelp, err := parseCommonFlags(args)
	if err != nil {
		return err
	}
	if showHelp {
		printInstallHelp()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), installTimeout)
	defer cancel()

	inst := installer.New(installer.Config{Logger: newCLILogger(verbose)})
	result, err := inst.Install(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Installed %s (verified: %s, took %s)\n",
		result.Path, result.Verified, result.Duration.Round(time.Millisecond))
	return nil
}

// runPath handles the `binpost path` subcommand
func runPath(args []string) error {
	opts, verbose, showHelp, err := parseCommonFlags(args)
	if err != nil {
		return err
	}
	if showHelp {
		printPathHelp()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inst := installer.New(installer.Config{Logger: newCLILogger(verbose)})
	path, err := inst.BinaryPath(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}

// parseCommonFlags parses the flags shared by install and path.
func parseCommonFlags(args []string) (opts installer.Options, verbose, showHelp bool, err error) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			showHelp = true
		case "--verbose", "-v":
			verbose = true
		case "--skip-verify":
			opts.SkipVerify = true
		case "--manifest":
			i++
			if i >= len(args) {
				return opts, false, false, fmt.Errorf("--manifest requires a path")
			}
			opts.ManifestPath = args[i]
		case "--bin-dir":
			i++
			if i >= len(args) {
				return opts, false, false, fmt.Errorf("--bin-dir requires a path")
			}
			opts.BinDir = args[i]
		default:
			return opts, false, false, fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	return opts, verbose, showHelp, nil
}

func printInstallHelp() {
	fmt.Println("Usage: binpost install [options]")
	fmt.Println()
	fmt.Println("Downloads the release archive described by the manifest and installs")
	fmt.Println("its binary into the resolved bin directory.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --manifest <path>   Manifest file (default: ./binpost.yaml)")
	fmt.Println("  --bin-dir <path>    Install directory (overrides manifest and env)")
	fmt.Println("  --skip-verify       Skip checksum and signature verification")
	fmt.Println("  --verbose, -v       Log progress to stderr")
	fmt.Println("  --help, -h          Show this help")
}

func printPathHelp() {
	fmt.Println("Usage: binpost path [options]")
	fmt.Println()
	fmt.Println("Prints the path the binary would be installed to, without downloading.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --manifest <path>   Manifest file (default: ./binpost.yaml)")
	fmt.Println("  --bin-dir <path>    Install directory (overrides manifest and env)")
	fmt.Println("  --verbose, -v       Log progress to stderr")
	fmt.Println("  --help, -h          Show this help")
}
