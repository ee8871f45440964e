// Package roster persists the club member list as a JSON array.
//
// The store is meant for a single process: AddMember reads, appends and rewrites the
// whole file without locking.
package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andrejsstepanovs/memberqr/models"
)

var (
	// ErrDuplicateID is returned by AddMember when the id is already on the roster.
	ErrDuplicateID = errors.New("member id already exists")
	// ErrMalformedRoster is returned when the roster file is not a JSON array of members.
	ErrMalformedRoster = errors.New("malformed roster file")
)

// Store reads and writes the roster file.
type Store struct {
	path      string
	imagesDir string
}

// NewStore returns a store backed by the file at path. imagesDir is prefixed to the image
// filename of new members, e.g. "images" gives "images/anna.jpg".
func NewStore(path, imagesDir string) *Store {
	return &Store{path: path, imagesDir: imagesDir}
}

// Path returns the roster file location.
func (s *Store) Path() string {
	return s.path
}

// ImagesDir returns the prefix applied to new members' image filenames.
func (s *Store) ImagesDir() string {
	return s.imagesDir
}

// Load returns all members in stored order. A missing file is an empty roster.
func (s *Store) Load() ([]models.MemberRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.MemberRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read roster %s: %w", s.path, err)
	}

	var members []models.MemberRecord
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformedRoster, s.path, err)
	}
	if members == nil {
		// "null" is valid JSON but not a roster
		return nil, fmt.Errorf("%w %s: expected a JSON array", ErrMalformedRoster, s.path)
	}

	return members, nil
}

// AddMember appends a member and rewrites the roster file. When id is already present the
// file is left untouched and ErrDuplicateID is returned.
func (s *Store) AddMember(id, name, imageFilename string) (models.MemberRecord, error) {
	members, err := s.Load()
	if err != nil {
		return models.MemberRecord{}, err
	}

	for _, m := range members {
		if m.ID == id {
			return models.MemberRecord{}, fmt.Errorf("%w: id=%s", ErrDuplicateID, id)
		}
	}

	member := models.MemberRecord{
		ID:       id,
		Name:     name,
		ImageURL: s.imagesDir + "/" + imageFilename,
	}
	members = append(members, member)

	if err := s.save(members); err != nil {
		return models.MemberRecord{}, err
	}

	return member, nil
}

func (s *Store) save(members []models.MemberRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(members); err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create roster directory: %w", err)
		}
	}

	// Encode terminates with a newline; the roster file has none
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write roster %s: %w", s.path, err)
	}

	return nil
}

// ProfileURL is the page a member's roster QR code points to.
func ProfileURL(baseURL, id string) string {
	return fmt.Sprintf("%s/profile.html?id=%s", baseURL, id)
}
