// Package env reads raw process environment values. It exists for the few
// settings consumed before the typed config is loaded, such as the log format
// the logger picks at construction time.
package env

import (
	"os"
	"strings"
)

// Get returns the named variable, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
