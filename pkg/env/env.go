package env

import "os"

// Get reads an environment variable, falling back when unset or empty.
// Used for knobs read before config loading, like LOG_FORMAT.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
