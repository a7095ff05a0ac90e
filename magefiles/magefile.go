//go:build mage

// Package main contains Mage build targets for faqbase developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "faqbase"
	cmdPkg  = "./cmd/faqbase"

	// sqliteTags enables FTS5 in mattn/go-sqlite3.
	sqliteTags = "sqlite_fts5"
)

// Default target when mage is run without arguments.
var Default = Build

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + buildVersion()
	if err := sh.RunV("go", "build", "-tags", sqliteTags, "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "-tags", sqliteTags, "./...")
}

// Integration runs the tests that need DATABASE_URL (PostgreSQL) and
// NATS_URL.
func Integration() error {
	for _, key := range []string{"DATABASE_URL", "NATS_URL"} {
		if os.Getenv(key) == "" {
			fmt.Printf("%s not set; those tests will be skipped\n", key)
		}
	}
	return sh.RunV("go", "test", "-tags", sqliteTags+",integration", "-count=1", "./...")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "-tags", sqliteTags, "./...")
}

// Check runs Lint then Test.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

func buildVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(v) == "" {
		return "dev"
	}
	return strings.TrimSpace(v)
}
