package models

// MemberRecord is one roster entry as stored in the roster JSON file.
type MemberRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// PhotoAsset is a photo file found in the photo directory.
type PhotoAsset struct {
	Path        string
	Filename    string
	BaseName    string
	Ext         string // lowercase, without the dot
	DisplayName string
}

// PublishedPage pairs a display name with its public page URL.
type PublishedPage struct {
	DisplayName string
	URL         string
}
