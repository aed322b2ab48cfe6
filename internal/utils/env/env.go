package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var envKeyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseSpecs parses environment specs. A spec is either `KEY=VALUE` or a bare
// `KEY`, which takes the value from the current process environment.
func ParseSpecs(specs []string) (map[string]string, error) {
	env := make(map[string]string, len(specs))

	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			return nil, fmt.Errorf("environment variable spec cannot be empty")
		}

		key, value, ok := strings.Cut(spec, "=")
		if !isValidKey(key) {
			return nil, fmt.Errorf("invalid environment variable key %q", key)
		}
		if ok {
			env[key] = value
			continue
		}

		value, ok = os.LookupEnv(key)
		if !ok {
			return nil, fmt.Errorf("environment variable %q is not set", key)
		}
		env[key] = value
	}

	return env, nil
}

// MergeMaps returns a new map with base values overridden by override values.
func MergeMaps(base map[string]string, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}

	return merged
}

func isValidKey(k string) bool {
	return envKeyRegexp.MatchString(k)
}
