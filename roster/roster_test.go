package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andrejsstepanovs/memberqr/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "members.json"), "images")
}

func TestLoad_MissingFile(t *testing.T) {
	s := newTestStore(t)

	members, err := s.Load()
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)
}

func TestLoad_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{{nope"},
		{name: "object instead of array", content: `{"id":"1"}`},
		{name: "null", content: "null"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tc.content), 0644))

			_, err := s.Load()
			assert.ErrorIs(t, err, ErrMalformedRoster)
		})
	}
}

func TestAddMember_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	added, err := s.AddMember("7", "Matthew Tian", "matthew.jpg")
	require.NoError(t, err)

	members, err := s.Load()
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, models.MemberRecord{ID: "7", Name: "Matthew Tian", ImageURL: "images/matthew.jpg"}, members[0])
	assert.Equal(t, added, members[0])
}

func TestAddMember_KeepsOrder(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"3", "1", "2"} {
		_, err := s.AddMember(id, "Member "+id, id+".png")
		require.NoError(t, err)
	}

	members, err := s.Load()
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "3", members[0].ID)
	assert.Equal(t, "1", members[1].ID)
	assert.Equal(t, "2", members[2].ID)
}

func TestAddMember_Duplicate(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddMember("1", "First", "first.jpg")
	require.NoError(t, err)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	_, err = s.AddMember("1", "Second", "second.jpg")
	assert.ErrorIs(t, err, ErrDuplicateID)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddMember_MalformedFileIsNotOverwritten(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("[{"), 0644))

	_, err := s.AddMember("1", "First", "first.jpg")
	assert.ErrorIs(t, err, ErrMalformedRoster)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[{", string(data))
}

func TestAddMember_FileFormat(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddMember("12", "Zoë <Ø>", "zoë.jpg")
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	expected := "[\n" +
		"  {\n" +
		"    \"id\": \"12\",\n" +
		"    \"name\": \"Zoë <Ø>\",\n" +
		"    \"imageUrl\": \"images/zoë.jpg\"\n" +
		"  }\n" +
		"]"
	assert.Equal(t, expected, string(data))
}

func TestAddMember_ImagePathIsComposedVerbatim(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "plain", filename: "anna.jpg", want: "images/anna.jpg"},
		{name: "dot prefix", filename: "./anna.jpg", want: "images/./anna.jpg"},
		{name: "parent", filename: "../anna.jpg", want: "images/../anna.jpg"},
		{name: "empty", filename: "", want: "images/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)

			added, err := store.AddMember("1", "Anna", tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, added.ImageURL)

			members, err := store.Load()
			require.NoError(t, err)
			require.Len(t, members, 1)
			assert.Equal(t, tt.want, members[0].ImageURL)
		})
	}
}

func TestProfileURL(t *testing.T) {
	assert.Equal(t, "https://club.example.com/profile.html?id=42", ProfileURL("https://club.example.com", "42"))
}
