// Package qr writes QR code PNGs.
package qr

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// ModuleSize is the pixel size of one QR module. Negative sizes tell go-qrcode to scale
// per module instead of fitting a fixed image width.
const ModuleSize = 10

// Encoder renders content as a QR PNG.
type Encoder struct {
	Level qrcode.RecoveryLevel
}

// PageEncoder is used for member page codes.
func PageEncoder() Encoder {
	return Encoder{Level: qrcode.Medium}
}

// ProfileEncoder is used for roster profile codes, which favour error correction.
func ProfileEncoder() Encoder {
	return Encoder{Level: qrcode.Highest}
}

// PNG returns the encoded image.
func (e Encoder) PNG(content string) ([]byte, error) {
	code, err := qrcode.New(content, e.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	png, err := code.PNG(-ModuleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr png: %w", err)
	}
	return png, nil
}

// WriteFile encodes content and saves it at path, creating the parent directory.
func (e Encoder) WriteFile(content, path string) error {
	png, err := e.PNG(content)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create qr directory: %w", err)
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return fmt.Errorf("failed to write qr code %s: %w", path, err)
	}
	return nil
}
