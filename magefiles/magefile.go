//go:build mage

// Package main contains Mage build targets for pubmed-affiliations developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// outputDirs lists the directories harvest writes to by default.
var outputDirs = []string{
	"output/reports",
	"output/metrics",
}

// Init creates the output directories used by the Harvest target.
func Init() error {
	for _, dir := range outputDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Output directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "pubmed-affiliations"
	cmdPkg  = "./cmd/pubmed-affiliations"
)

// Build compiles the CLI binary into bin/, stamping the version from
// VERSION (default "dev").
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Harvest builds the binary and runs a harvest with the local config,
// writing the report and metrics under output/.
func Harvest() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "harvest",
		"--out-yaml", "output/reports/latest.yaml",
		"--out-db", "output/reports/authors.db",
		"--metrics-file", "output/metrics/pubmed_affiliations.prom",
	)
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports whether a directory is outside the project's own sources.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "bin" || name == "output")
}

// countGoLines walks root and counts non-blank lines in production and test Go files.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// countDocWords counts words in the top-level Markdown files.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
