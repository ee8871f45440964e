// Package naming derives display names and join keys from photo filenames.
package naming

import (
	"path/filepath"
	"regexp"
	"strings"
)

// namePattern matches two uppercase runs joined by an underscore, e.g. "MATTHEW_TIAN".
var namePattern = regexp.MustCompile(`([A-Z]+)_([A-Z]+)`)

// DisplayName extracts "FIRST LAST" from filenames such as "Image MATTHEW_TIAN - x.HEIC".
// Filenames without the pattern fall back to BaseName.
func DisplayName(filename string) string {
	if m := namePattern.FindStringSubmatch(filename); m != nil {
		return m[1] + " " + m[2]
	}
	return BaseName(filename)
}

// BaseName strips the extension. It is the join key across image, page and QR artifacts.
func BaseName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// Ext returns the lowercase extension without the leading dot.
func Ext(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
