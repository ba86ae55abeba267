package store

import (
	"context"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/domain"
	apperrors "github.com/marginapp/margin-server/internal/errors"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the decode order in decodeTag.
const tagColumns = `id, name, description, category, color, icon, priority, created_at, user_id`

// decodeTag converts a gateway row into a domain.Tag, failing fast on any
// shape mismatch.
func decodeTag(r db.Row) (*domain.Tag, error) {
	var t domain.Tag
	var err error

	if t.ID, err = fieldString(r, "id"); err != nil {
		return nil, err
	}
	if t.Name, err = fieldString(r, "name"); err != nil {
		return nil, err
	}
	if t.Description, err = fieldNullString(r, "description"); err != nil {
		return nil, err
	}
	if t.Category, err = fieldNullString(r, "category"); err != nil {
		return nil, err
	}
	if t.Color, err = fieldNullString(r, "color"); err != nil {
		return nil, err
	}
	if t.Icon, err = fieldNullString(r, "icon"); err != nil {
		return nil, err
	}
	if t.Priority, err = fieldInt(r, "priority"); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = fieldTime(r, "created_at"); err != nil {
		return nil, err
	}
	if t.UserID, err = fieldNullString(r, "user_id"); err != nil {
		return nil, err
	}

	return &t, nil
}

// SaveTag upserts a tag by id.
func (s *Store) SaveTag(ctx context.Context, t *domain.Tag) error {
	return s.db.Execute(ctx, `
		INSERT INTO tags (id, name, description, category, color, icon, priority, created_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, description = excluded.description,
			category = excluded.category, color = excluded.color,
			icon = excluded.icon, priority = excluded.priority,
			created_at = excluded.created_at, user_id = excluded.user_id`,
		t.ID, t.Name, nullString(t.Description), nullString(t.Category),
		nullString(t.Color), nullString(t.Icon), t.Priority,
		formatTime(t.CreatedAt), nullString(t.UserID),
	)
}

// GetTag retrieves a tag by id.
// Returns errors.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFoundf("tag %s not found", id)
	}
	return decodeTag(rows[0])
}

// GetTagByName retrieves a tag by its exact name.
// Returns errors.ErrNotFound if no tag has that name.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFoundf("tag named %q not found", name)
	}
	return decodeTag(rows[0])
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}

	tags := make([]*domain.Tag, 0, len(rows))
	for _, r := range rows {
		t, err := decodeTag(r)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// DeleteTag removes a tag by id.
// Returns errors.ErrNotFound if the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	if _, err := s.GetTag(ctx, id); err != nil {
		return err
	}
	return s.db.Execute(ctx, `DELETE FROM tags WHERE id = ?`, id)
}
