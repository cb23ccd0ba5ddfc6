// Package prompts holds the externalized text used by the composer,
// calibration rounds and generation. Each embedded JSON file maps keys to
// prompt text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// catalog parses every embedded file on first use. Files are immutable after
// compile, so one parse serves the process.
var catalog = sync.OnceValues(func() (map[string]map[string]string, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var entries map[string]string
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		out[name] = entries
	}
	return out, nil
})

func file(name string) (map[string]string, error) {
	all, err := catalog()
	if err != nil {
		return nil, err
	}
	entries, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt file %s", name)
	}
	return entries, nil
}

// Get returns the prompt stored under key in the named file, e.g.
// Get("composer.json", "critical-instruction").
func Get(filename, key string) (string, error) {
	entries, err := file(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// Lines returns a prompt split into trimmed non-empty lines. List-valued
// prompts, such as the calibration round prompts, store one entry per line.
func Lines(filename, key string) ([]string, error) {
	prompt, err := Get(filename, key)
	if err != nil {
		return nil, err
	}
	var out []string
	for line := range strings.SplitSeq(prompt, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// Keys lists the prompt keys of a file in sorted order.
func Keys(filename string) ([]string, error) {
	entries, err := file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Format fills {{.Name}} placeholders from data. Placeholders without a value
// are left in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{{."+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
