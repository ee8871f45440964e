package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrejsstepanovs/memberqr/models"
	"github.com/andrejsstepanovs/memberqr/naming"
)

// PhotoExtensions are the extensions picked up by a publish run.
var PhotoExtensions = []string{"png", "jpg", "jpeg", "heic"}

// Photos lists the photo directory (not recursive) and returns the visible files whose
// extension matches one of extensions, case-insensitively, in directory-listing order.
func Photos(dir string, extensions []string) ([]models.PhotoAsset, error) {
	normalizedExts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			normalizedExts[ext] = true
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo directory %s: %w", dir, err)
	}

	var photos []models.PhotoAsset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Skip hidden files; ".jpg" would publish under an empty base name
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		ext := naming.Ext(name)
		if !normalizedExts[ext] {
			continue
		}

		photos = append(photos, models.PhotoAsset{
			Path:        filepath.Join(dir, name),
			Filename:    name,
			BaseName:    naming.BaseName(name),
			Ext:         ext,
			DisplayName: naming.DisplayName(name),
		})
	}

	return photos, nil
}

// Exists reports whether path exists. Any stat error other than "not exist" counts as existing
// so callers never overwrite something they could not inspect.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}
