package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/marginapp/margin-server/internal/db"
)

// manifestName is the fixed name of the manifest inside a snapshot directory.
const manifestName = "manifest.json"

// dataFileExt is the extension of database image files inside a snapshot.
const dataFileExt = ".margindb"

// Reindexer rebuilds derived indexes after an import changes the data set.
type Reindexer interface {
	ReindexAll(ctx context.Context) error
}

// Service manages snapshot export and import.
// Snapshots live as directories under dir, each holding a manifest.json
// and one or more database image files.
type Service struct {
	db         *db.DB
	dir        string
	deviceID   string
	deviceName string
	logger     *slog.Logger
	reindexer  Reindexer
}

// Options configures the snapshot service.
type Options struct {
	Dir        string    // Directory holding snapshot directories
	DeviceName string    // Optional human-readable device label
	Reindexer  Reindexer // Optional; invoked after successful imports
}

// NewService creates a snapshot service.
// A fresh device id is generated per process; it identifies the
// exporting device in manifests, nothing more.
func NewService(d *db.DB, logger *slog.Logger, opts Options) *Service {
	return &Service{
		db:         d,
		dir:        opts.Dir,
		deviceID:   uuid.NewString(),
		deviceName: opts.DeviceName,
		logger:     logger,
		reindexer:  opts.Reindexer,
	}
}

// Info summarizes a snapshot on disk.
type Info struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"` // Total data file bytes
	Files     int       `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportResult reports what an import applied.
type ImportResult struct {
	ID       string      `json:"id"`
	Strategy db.Strategy `json:"strategy"`
	Files    int         `json:"files"`
	Duration string      `json:"duration"`
}

// Export writes the current data set as a new snapshot and returns its info.
// If id is empty, a timestamped one is generated.
func (s *Service) Export(ctx context.Context, id string) (*Info, error) {
	blob, err := s.db.ExportSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	if id == "" {
		id = "snapshot-" + time.Now().Format("2006-01-02-150405")
	}

	snapDir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create dir: %v", ErrExportFailed, err)
	}

	fileName := "data-0001" + dataFileExt
	if err := os.WriteFile(filepath.Join(snapDir, fileName), blob, 0o644); err != nil {
		return nil, fmt.Errorf("%w: write data file: %v", ErrExportFailed, err)
	}

	sum := sha256.Sum256(blob)
	m := Manifest{
		Version:    FormatVersion,
		CreatedAt:  time.Now().UTC(),
		DeviceID:   s.deviceID,
		DeviceName: s.deviceName,
		Files: []FileEntry{{
			Name:     fileName,
			Size:     int64(len(blob)),
			Checksum: hex.EncodeToString(sum[:]),
		}},
	}
	if err := s.writeManifest(snapDir, &m); err != nil {
		return nil, fmt.Errorf("%w: write manifest: %v", ErrExportFailed, err)
	}

	s.logger.Info("snapshot exported", "id", id, "size", len(blob))

	return &Info{
		ID:        id,
		Path:      snapDir,
		Size:      int64(len(blob)),
		Files:     1,
		CreatedAt: m.CreatedAt,
	}, nil
}

// Import applies the snapshot with the given id using the chosen merge
// strategy. All data files are loaded and verified before anything is
// applied; a failure anywhere leaves local data unchanged.
func (s *Service) Import(ctx context.Context, id string, strategy db.Strategy) (*ImportResult, error) {
	start := time.Now()

	snapDir := filepath.Join(s.dir, id)
	m, err := s.readManifest(snapDir)
	if err != nil {
		return nil, err
	}

	blobs := make([][]byte, 0, len(m.Files))
	for _, f := range m.Files {
		blob, err := loadDataFile(snapDir, f)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob)
	}

	if err := s.db.ImportSnapshots(ctx, blobs, strategy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	if s.reindexer != nil {
		if err := s.reindexer.ReindexAll(ctx); err != nil {
			s.logger.Warn("reindex after import failed", "id", id, "error", err)
		}
	}

	s.logger.Info("snapshot imported",
		"id", id,
		"strategy", string(strategy),
		"files", len(blobs),
		"duration", time.Since(start))

	return &ImportResult{
		ID:       id,
		Strategy: strategy,
		Files:    len(blobs),
		Duration: time.Since(start).String(),
	}, nil
}

// ImportDir applies a snapshot from an arbitrary directory rather than
// one managed under the service's snapshot dir. Used by the inbox watcher.
func (s *Service) ImportDir(ctx context.Context, dir string, strategy db.Strategy) (*ImportResult, error) {
	m, err := s.readManifest(dir)
	if err != nil {
		return nil, err
	}

	blobs := make([][]byte, 0, len(m.Files))
	for _, f := range m.Files {
		blob, err := loadDataFile(dir, f)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob)
	}

	if err := s.db.ImportSnapshots(ctx, blobs, strategy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	if s.reindexer != nil {
		if err := s.reindexer.ReindexAll(ctx); err != nil {
			s.logger.Warn("reindex after import failed", "dir", dir, "error", err)
		}
	}

	s.logger.Info("snapshot imported", "dir", dir, "strategy", string(strategy), "files", len(blobs))

	return &ImportResult{
		ID:       filepath.Base(dir),
		Strategy: strategy,
		Files:    len(blobs),
	}, nil
}

// List returns all snapshots on disk, newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var snapshots []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m, err := s.readManifest(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}

		var size int64
		for _, f := range m.Files {
			size += f.Size
		}
		snapshots = append(snapshots, Info{
			ID:        entry.Name(),
			Path:      filepath.Join(s.dir, entry.Name()),
			Size:      size,
			Files:     len(m.Files),
			CreatedAt: m.CreatedAt,
		})
	}

	// Sort by creation time, newest first
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	return snapshots, nil
}

// Get returns a snapshot by id.
func (s *Service) Get(ctx context.Context, id string) (*Info, error) {
	snapDir := filepath.Join(s.dir, id)
	m, err := s.readManifest(snapDir)
	if err != nil {
		return nil, err
	}

	var size int64
	for _, f := range m.Files {
		size += f.Size
	}
	return &Info{
		ID:        id,
		Path:      snapDir,
		Size:      size,
		Files:     len(m.Files),
		CreatedAt: m.CreatedAt,
	}, nil
}

// Delete removes a snapshot directory.
func (s *Service) Delete(ctx context.Context, id string) error {
	snapDir := filepath.Join(s.dir, id)
	if _, err := os.Stat(snapDir); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return err
	}
	return os.RemoveAll(snapDir)
}

func (s *Service) writeManifest(dir string, m *Manifest) error {
	f, err := os.Create(filepath.Join(dir, manifestName))
	if err != nil {
		return err
	}
	if err := json.MarshalWrite(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Service) readManifest(dir string) (*Manifest, error) {
	f, err := os.Open(filepath.Join(dir, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrManifestNotFound
		}
		return nil, err
	}
	defer f.Close()

	var m Manifest
	if err := json.UnmarshalRead(f, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestNotFound, err)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("%w: got %q", ErrVersionMismatch, m.Version)
	}
	return &m, nil
}

// loadDataFile reads one data file and verifies it against the manifest.
func loadDataFile(dir string, f FileEntry) ([]byte, error) {
	blob, err := os.ReadFile(filepath.Join(dir, f.Name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileLoad, f.Name, err)
	}
	if f.Checksum != "" {
		sum := sha256.Sum256(blob)
		if hex.EncodeToString(sum[:]) != f.Checksum {
			return nil, fmt.Errorf("%w: %s: checksum mismatch", ErrFileLoad, f.Name)
		}
	}
	return blob, nil
}
