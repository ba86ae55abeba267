package snapshot

import "time"

// FormatVersion is the snapshot format version. Increment major on breaking changes.
const FormatVersion = "1.0"

// Manifest describes snapshot contents and metadata.
// It lives as manifest.json next to the data files it names.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Exporting device identity
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name,omitempty"`

	// Data files, applied in listed order
	Files []FileEntry `json:"files"`
}

// FileEntry describes one data file within a snapshot.
type FileEntry struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"` // hex-encoded SHA-256
}
