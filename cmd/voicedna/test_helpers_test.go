package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// getBinaryPath returns the path to the voicedna binary for CLI tests
func getBinaryPath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", "voicedna")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/voicedna ./cmd/voicedna'", binaryPath)
	}
	return binaryPath
}

// withoutEnv returns the current environment minus the named variables.
func withoutEnv(names ...string) []string {
	var env []string
	for _, e := range os.Environ() {
		name, _, _ := strings.Cut(e, "=")
		if !slices.Contains(names, name) {
			env = append(env, e)
		}
	}
	return env
}
