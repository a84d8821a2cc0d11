package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	// Handle subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("binpost %s\n", Version)
			return
		case "install":
			if err := runInstall(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "path":
			if err := runPath(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// Default: show help
	fmt.Println("binpost - post-install fetcher for platform binaries")
	fmt.Println()
	fmt.Println("binpost downloads the release archive described by a binpost.yaml")
	fmt.Println("manifest and installs its binary into the package bin directory.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  binpost install [options]   Download and install the binary")
	fmt.Println("  binpost path [options]      Print where the binary installs to")
	fmt.Println("  binpost --version           Show version information")
}
