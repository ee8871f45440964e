// Package imageconv converts HEIC photos to JPEG in place.
package imageconv

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gen2brain/heic"
	"golang.org/x/image/draw"

	"github.com/andrejsstepanovs/memberqr/naming"
)

const (
	// HEICExt is the proprietary photo extension handled by Normalize.
	HEICExt     = "heic"
	jpegQuality = 75
)

var (
	// ErrUnreadableImage marks a photo that could not be decoded. Callers skip it for the run.
	ErrUnreadableImage = errors.New("unreadable image")
	// ErrTargetExists marks a photo whose converted name is already taken by another photo.
	// The existing file is never overwritten; callers skip the source for the run.
	ErrTargetExists = errors.New("converted image already exists")
)

// DecodeFunc decodes a HEIC stream.
type DecodeFunc func(r io.Reader) (image.Image, error)

// Normalizer re-encodes HEIC photos as JPEG next to the source and removes the source.
type Normalizer struct {
	// MaxWidth downscales wider images when > 0.
	MaxWidth int
	Decode   DecodeFunc
}

// NewNormalizer returns a Normalizer using the HEIC decoder.
func NewNormalizer(maxWidth int) *Normalizer {
	return &Normalizer{MaxWidth: maxWidth, Decode: heic.Decode}
}

// NeedsNormalize reports whether filename is in the proprietary format.
func NeedsNormalize(filename string) bool {
	return naming.Ext(filename) == HEICExt
}

// Normalize converts the HEIC file at path to <dir>/<basename>.jpg, deletes the original
// and returns the new path. Decode failures wrap ErrUnreadableImage and an existing
// <basename>.jpg wraps ErrTargetExists; in both cases every file is left alone.
func (n *Normalizer) Normalize(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	img, err := n.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w %s: %v", ErrUnreadableImage, filepath.Base(path), err)
	}

	img = n.resize(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	target := filepath.Join(filepath.Dir(path), naming.BaseName(filepath.Base(path))+".jpg")
	if err := writeNew(target, buf.Bytes()); err != nil {
		return "", err
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove original %s: %w", path, err)
	}

	return target, nil
}

// writeNew creates target exclusively so a photo already stored under that name survives.
func writeNew(target string, data []byte) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrTargetExists, filepath.Base(target))
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(target)
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("failed to close %s: %w", target, err)
	}
	return nil
}

func (n *Normalizer) resize(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if n.MaxWidth <= 0 || w <= n.MaxWidth {
		return img
	}

	newH := h * n.MaxWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, n.MaxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
