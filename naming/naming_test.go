package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	testCases := []struct {
		name     string
		filename string
		expected string
	}{
		{name: "uppercase pair inside noise", filename: "Image MATTHEW_TIAN - x.HEIC", expected: "MATTHEW TIAN"},
		{name: "bare uppercase pair", filename: "ANNA_LEE.jpg", expected: "ANNA LEE"},
		{name: "first pair wins", filename: "JOHN_DOE and JANE_ROE.png", expected: "JOHN DOE"},
		{name: "no pattern", filename: "photo1.jpg", expected: "photo1"},
		{name: "digits do not match", filename: "IMG_1234.JPG", expected: "IMG_1234"},
		{name: "lowercase does not match", filename: "matthew_tian.png", expected: "matthew_tian"},
		{name: "spaces kept in fallback", filename: "Club Night 2024.jpeg", expected: "Club Night 2024"},
		{name: "no extension", filename: "portrait", expected: "portrait"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DisplayName(tc.filename))
		})
	}
}

func TestBaseNameAndExt(t *testing.T) {
	assert.Equal(t, "Image MATTHEW_TIAN - x", BaseName("Image MATTHEW_TIAN - x.HEIC"))
	assert.Equal(t, "heic", Ext("Image MATTHEW_TIAN - x.HEIC"))
	assert.Equal(t, "archive.tar", BaseName("archive.tar.gz"))
	assert.Equal(t, "", Ext("README"))
}
