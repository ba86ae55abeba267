// Package snapshot provides export and import of annotation data as
// portable snapshot directories, each holding a manifest plus one or
// more database image files.
package snapshot

import "errors"

var (
	// ErrManifestNotFound indicates the snapshot has no manifest.json.
	ErrManifestNotFound = errors.New("snapshot manifest not found")

	// ErrVersionMismatch indicates the snapshot version is not supported.
	ErrVersionMismatch = errors.New("snapshot version not supported")

	// ErrFileLoad indicates a data file named by the manifest could not
	// be read or failed its checksum.
	ErrFileLoad = errors.New("snapshot file load failed")

	// ErrExportFailed indicates the export could not be completed.
	ErrExportFailed = errors.New("snapshot export failed")

	// ErrImportFailed indicates the import was rejected; no local data
	// was changed.
	ErrImportFailed = errors.New("snapshot import failed")

	// ErrSnapshotNotFound indicates the requested snapshot does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
