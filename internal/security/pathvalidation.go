// Package security validates externally supplied names before they touch
// the filesystem or database.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateAssetName checks that name is a flat identifier safe to join under
// a storage directory: no separators, no traversal, no hidden cleanup.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("asset name is empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("asset name %q contains a path separator", name)
	}
	if name != filepath.Clean(name) || name == "." || name == ".." {
		return fmt.Errorf("asset name %q is not a plain file name", name)
	}
	return nil
}

// SanitizeFilename makes a safe filename from an arbitrary string. Characters
// outside ASCII letters, digits, dot, underscore and dash become a single
// underscore, and the result is trimmed to a reasonable length.
func SanitizeFilename(s string) string {
	if s == "" {
		return "unknown"
	}
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
