// Package render builds the member profile page and the member index with templ components.
// Profile and Index live in the .templ files; run `templ generate` after editing them.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/a-h/templ"
)

// Bytes renders c into memory for upload.
func Bytes(ctx context.Context, c templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}
