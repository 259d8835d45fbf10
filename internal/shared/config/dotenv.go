package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// loadEnvFiles loads KEY=VALUE pairs from the given files if they exist.
// Variables already present in the environment win; errors are ignored.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

// loadFile reads a flat TOML document into upper-cased keys, so
// `summarizer_base_url = "..."` fills SUMMARIZER_BASE_URL.
func loadFile(path string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(path) == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	for k, v := range doc {
		switch val := v.(type) {
		case map[string]any, []any:
			continue
		default:
			out[strings.ToUpper(strings.TrimSpace(k))] = fmt.Sprint(val)
		}
	}
	return out, nil
}
