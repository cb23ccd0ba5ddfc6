package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envValue parses key with parse, keeping fallback when the variable is
// unset or malformed.
func envValue[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvString(key, fallback string) string {
	return envValue(key, fallback, func(s string) (string, error) { return s, nil })
}

func getEnvInt(key string, fallback int) int {
	return envValue(key, fallback, strconv.Atoi)
}

func getEnvBool(key string, fallback bool) bool {
	return envValue(key, fallback, strconv.ParseBool)
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	return envValue(key, fallback, time.ParseDuration)
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(list string) []string {
	var out []string
	for item := range strings.SplitSeq(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
