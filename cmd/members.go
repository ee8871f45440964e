package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andrejsstepanovs/memberqr/roster"
)

type qrFileWriter interface {
	WriteFile(content, path string) error
}

// memberAdder adds roster entries and, when a profile base url is configured, writes a QR
// code pointing to the member's profile.
type memberAdder struct {
	store          *roster.Store
	encoder        qrFileWriter
	profileBaseURL string
	qrDir          string
	out            io.Writer
}

// add reports a duplicate id and carries on; any other error is returned.
func (m *memberAdder) add(id, name, imageFilename string) error {
	member, err := m.store.AddMember(id, name, imageFilename)
	if errors.Is(err, roster.ErrDuplicateID) {
		fmt.Fprintf(m.out, "Member with id=%s already exists.\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Added %s (id=%s)\n", member.Name, member.ID)
	fmt.Fprintf(m.out, "   Image: %s\n", member.ImageURL)

	if m.profileBaseURL == "" {
		return nil
	}

	profileURL := roster.ProfileURL(m.profileBaseURL, member.ID)
	qrPath := filepath.Join(m.qrDir, member.ID+".png")
	if err := m.encoder.WriteFile(profileURL, qrPath); err != nil {
		return fmt.Errorf("failed to write QR code for %s: %w", member.ID, err)
	}
	fmt.Fprintf(m.out, "   Profile URL: %s\n", profileURL)
	fmt.Fprintf(m.out, "   QR Code saved to %s\n", qrPath)
	return nil
}

// prompt asks for members until an empty id or the end of input.
func (m *memberAdder) prompt(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	ask := func(label string) (string, bool) {
		fmt.Fprint(m.out, label)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		fmt.Fprintln(m.out, "Add a new member (or press Enter to quit)")
		id, ok := ask("Enter ID: ")
		if !ok || id == "" {
			return scanner.Err()
		}
		name, ok := ask("Enter name: ")
		if !ok {
			return scanner.Err()
		}
		image, ok := ask(fmt.Sprintf("Enter image filename (place inside '%s/'): ", m.store.ImagesDir()))
		if !ok {
			return scanner.Err()
		}

		if err := m.add(id, name, image); err != nil {
			return err
		}
	}
}
