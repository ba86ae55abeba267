package db

import (
	"database/sql"
	"fmt"
	"os"
)

// exportSnapshot serializes the whole database with VACUUM INTO: the result
// is a self-contained SQLite image, independent of the WAL state of the
// live file.
func (w *worker) exportSnapshot() ([]byte, error) {
	tmp, err := os.CreateTemp("", "margin-export-*.db")
	if err != nil {
		return nil, fmt.Errorf("%w: create export file: %v", ErrStorage, err)
	}
	path := tmp.Name()
	tmp.Close()
	// VACUUM INTO refuses to write over an existing file.
	os.Remove(path)
	defer os.Remove(path)

	if _, err := w.db.Exec(`VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("%w: vacuum into: %v", ErrStorage, err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read export file: %v", ErrStorage, err)
	}
	return blob, nil
}

// importSnapshots merges an ordered list of snapshot images into the live
// database inside one transaction. Under the replace strategy only the
// first snapshot clears the tables; later snapshots merge onto its rows.
func (w *worker) importSnapshots(blobs [][]byte, strategy Strategy) error {
	if !strategy.Valid() {
		return fmt.Errorf("%w: unknown merge strategy %q", ErrStorage, strategy)
	}
	if len(blobs) == 0 {
		return nil
	}

	// Parse every snapshot up front so a malformed file is caught before
	// the live database is touched at all.
	snaps := make([]*snapshotData, 0, len(blobs))
	for i, blob := range blobs {
		data, err := readSnapshot(blob)
		if err != nil {
			return fmt.Errorf("%w: snapshot %d: %v", ErrStorage, i+1, err)
		}
		snaps = append(snaps, data)
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin import: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	for i, snap := range snaps {
		effective := strategy
		if strategy == StrategyReplace {
			if i == 0 {
				if err := clearTables(tx); err != nil {
					return err
				}
			} else {
				effective = StrategyMerge
			}
		}
		if err := applySnapshot(tx, snap, effective); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit import: %v", ErrStorage, err)
	}
	return nil
}

// snapshotData is the parsed content of one foreign snapshot.
type snapshotData struct {
	tags        []tagRow
	annotations []annotationRow
	styles      []styleRow
}

type tagRow struct {
	id, name                          string
	description, category, color, icon sql.NullString
	priority                          int64
	createdAt                         string
	userID                            sql.NullString
}

type annotationRow struct {
	id, tagID, tokenIDs     string
	userID, note            sql.NullString
	createdAt, lastModified string
	version                 int64
}

type styleRow struct {
	tagID string
	userID, backgroundColor, textColor, underlineStyle,
	underlineColor, fontWeight, icon, iconPosition sql.NullString
	opacity sql.NullFloat64
}

// readSnapshot materializes a snapshot blob as a temporary SQLite file,
// verifies it carries the engine's schema, and reads out all rows.
func readSnapshot(blob []byte) (*snapshotData, error) {
	tmp, err := os.CreateTemp("", "margin-import-*.db")
	if err != nil {
		return nil, fmt.Errorf("create import file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write import file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close import file: %w", err)
	}

	foreign, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer foreign.Close()

	if err := checkSnapshotSchema(foreign); err != nil {
		return nil, err
	}

	var data snapshotData
	if data.tags, err = readTagRows(foreign); err != nil {
		return nil, err
	}
	if data.annotations, err = readAnnotationRows(foreign); err != nil {
		return nil, err
	}
	if data.styles, err = readStyleRows(foreign); err != nil {
		return nil, err
	}
	return &data, nil
}

// checkSnapshotSchema rejects blobs that are not SQLite files or that carry
// a foreign schema.
func checkSnapshotSchema(foreign *sql.DB) error {
	var n int
	err := foreign.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('tags', 'annotations', 'tag_styles')`).Scan(&n)
	if err != nil {
		return fmt.Errorf("not a valid snapshot: %w", err)
	}
	if n != 3 {
		return fmt.Errorf("snapshot is missing required tables (found %d of 3)", n)
	}
	return nil
}

func readTagRows(foreign *sql.DB) ([]tagRow, error) {
	rows, err := foreign.Query(`
		SELECT id, name, description, category, color, icon, priority, created_at, user_id
		FROM tags`)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	defer rows.Close()

	var out []tagRow
	for rows.Next() {
		var t tagRow
		if err := rows.Scan(&t.id, &t.name, &t.description, &t.category,
			&t.color, &t.icon, &t.priority, &t.createdAt, &t.userID); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func readAnnotationRows(foreign *sql.DB) ([]annotationRow, error) {
	rows, err := foreign.Query(`
		SELECT id, tag_id, token_ids, user_id, note, created_at, last_modified, version
		FROM annotations`)
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	defer rows.Close()

	var out []annotationRow
	for rows.Next() {
		var a annotationRow
		if err := rows.Scan(&a.id, &a.tagID, &a.tokenIDs, &a.userID,
			&a.note, &a.createdAt, &a.lastModified, &a.version); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func readStyleRows(foreign *sql.DB) ([]styleRow, error) {
	rows, err := foreign.Query(`
		SELECT tag_id, user_id, background_color, text_color, underline_style,
		       underline_color, font_weight, icon, icon_position, opacity
		FROM tag_styles`)
	if err != nil {
		return nil, fmt.Errorf("read tag styles: %w", err)
	}
	defer rows.Close()

	var out []styleRow
	for rows.Next() {
		var s styleRow
		if err := rows.Scan(&s.tagID, &s.userID, &s.backgroundColor, &s.textColor,
			&s.underlineStyle, &s.underlineColor, &s.fontWeight, &s.icon,
			&s.iconPosition, &s.opacity); err != nil {
			return nil, fmt.Errorf("scan tag style: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// clearTables wipes the annotation data, children first.
func clearTables(tx *sql.Tx) error {
	for _, table := range []string{"annotations", "tag_styles", "tags"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("%w: clear table %s: %v", ErrStorage, table, err)
		}
	}
	return nil
}

// applySnapshot writes one snapshot's rows under the given strategy.
// Tags go first, then annotations, then styles, so foreign key references
// resolve within the same snapshot.
func applySnapshot(tx *sql.Tx, snap *snapshotData, strategy Strategy) error {
	tagConflict := ``
	annConflict := ``
	styleConflict := ``

	switch strategy {
	case StrategyMerge:
		// Tags and styles carry no version field: the foreign row wins
		// unconditionally. Annotations are arbitrated by version, with
		// ties keeping the local row.
		tagConflict = `
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, description = excluded.description,
				category = excluded.category, color = excluded.color,
				icon = excluded.icon, priority = excluded.priority,
				created_at = excluded.created_at, user_id = excluded.user_id`
		annConflict = `
			ON CONFLICT(id) DO UPDATE SET
				tag_id = excluded.tag_id, token_ids = excluded.token_ids,
				user_id = excluded.user_id, note = excluded.note,
				created_at = excluded.created_at,
				last_modified = excluded.last_modified,
				version = excluded.version
			WHERE excluded.version > annotations.version`
		styleConflict = `
			ON CONFLICT(tag_id) DO UPDATE SET
				user_id = excluded.user_id,
				background_color = excluded.background_color,
				text_color = excluded.text_color,
				underline_style = excluded.underline_style,
				underline_color = excluded.underline_color,
				font_weight = excluded.font_weight, icon = excluded.icon,
				icon_position = excluded.icon_position,
				opacity = excluded.opacity`
	case StrategySkipExisting:
		tagConflict = ` ON CONFLICT(id) DO NOTHING`
		annConflict = ` ON CONFLICT(id) DO NOTHING`
		styleConflict = ` ON CONFLICT(tag_id) DO NOTHING`
	case StrategyReplace:
		// Tables were cleared; plain inserts.
	}

	for _, t := range snap.tags {
		_, err := tx.Exec(`
			INSERT INTO tags (id, name, description, category, color, icon, priority, created_at, user_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`+tagConflict,
			t.id, t.name, t.description, t.category, t.color, t.icon,
			t.priority, t.createdAt, t.userID,
		)
		if err != nil {
			return fmt.Errorf("%w: import tag %s: %v", ErrStorage, t.id, err)
		}
	}

	for _, a := range snap.annotations {
		_, err := tx.Exec(`
			INSERT INTO annotations (id, tag_id, token_ids, user_id, note, created_at, last_modified, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`+annConflict,
			a.id, a.tagID, a.tokenIDs, a.userID, a.note,
			a.createdAt, a.lastModified, a.version,
		)
		if err != nil {
			return fmt.Errorf("%w: import annotation %s: %v", ErrStorage, a.id, err)
		}
	}

	for _, s := range snap.styles {
		_, err := tx.Exec(`
			INSERT INTO tag_styles (tag_id, user_id, background_color, text_color, underline_style,
			                        underline_color, font_weight, icon, icon_position, opacity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`+styleConflict,
			s.tagID, s.userID, s.backgroundColor, s.textColor, s.underlineStyle,
			s.underlineColor, s.fontWeight, s.icon, s.iconPosition, s.opacity,
		)
		if err != nil {
			return fmt.Errorf("%w: import style for tag %s: %v", ErrStorage, s.tagID, err)
		}
	}

	return nil
}
