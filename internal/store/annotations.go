package store

import (
	"context"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/domain"
	apperrors "github.com/marginapp/margin-server/internal/errors"
)

// annotationColumns is the ordered list of columns selected in annotation
// queries. Must match the decode order in decodeAnnotation.
const annotationColumns = `id, tag_id, token_ids, user_id, note, created_at, last_modified, version`

func decodeAnnotation(r db.Row) (*domain.Annotation, error) {
	var a domain.Annotation
	var err error

	if a.ID, err = fieldString(r, "id"); err != nil {
		return nil, err
	}
	if a.TagID, err = fieldString(r, "tag_id"); err != nil {
		return nil, err
	}
	encoded, err := fieldString(r, "token_ids")
	if err != nil {
		return nil, err
	}
	if a.TokenIDs, err = decodeTokenIDs(encoded); err != nil {
		return nil, err
	}
	if a.UserID, err = fieldNullString(r, "user_id"); err != nil {
		return nil, err
	}
	if a.Note, err = fieldNullString(r, "note"); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = fieldTime(r, "created_at"); err != nil {
		return nil, err
	}
	if a.LastModified, err = fieldTime(r, "last_modified"); err != nil {
		return nil, err
	}
	if a.Version, err = fieldInt(r, "version"); err != nil {
		return nil, err
	}

	return &a, nil
}

func decodeAnnotations(rows []db.Row) ([]*domain.Annotation, error) {
	annotations := make([]*domain.Annotation, 0, len(rows))
	for _, r := range rows {
		a, err := decodeAnnotation(r)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	return annotations, nil
}

// SaveAnnotation upserts an annotation by id. The token-id list is stored
// as a JSON array in a single column.
func (s *Store) SaveAnnotation(ctx context.Context, a *domain.Annotation) error {
	tokens, err := encodeTokenIDs(a.TokenIDs)
	if err != nil {
		return err
	}
	return s.db.Execute(ctx, `
		INSERT INTO annotations (id, tag_id, token_ids, user_id, note, created_at, last_modified, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tag_id = excluded.tag_id, token_ids = excluded.token_ids,
			user_id = excluded.user_id, note = excluded.note,
			created_at = excluded.created_at,
			last_modified = excluded.last_modified,
			version = excluded.version`,
		a.ID, a.TagID, tokens, nullString(a.UserID), nullString(a.Note),
		formatTime(a.CreatedAt), formatTime(a.LastModified), a.Version,
	)
}

// GetAnnotation retrieves an annotation by id.
// Returns errors.ErrNotFound if the annotation does not exist.
func (s *Store) GetAnnotation(ctx context.Context, id string) (*domain.Annotation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+annotationColumns+` FROM annotations WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFoundf("annotation %s not found", id)
	}
	return decodeAnnotation(rows[0])
}

// ListAnnotations returns all annotations, most recently touched first.
func (s *Store) ListAnnotations(ctx context.Context) ([]*domain.Annotation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+annotationColumns+` FROM annotations ORDER BY last_modified DESC`)
	if err != nil {
		return nil, err
	}
	return decodeAnnotations(rows)
}

// GetAnnotationsForTag returns all annotations referencing a tag, most
// recently touched first.
func (s *Store) GetAnnotationsForTag(ctx context.Context, tagID string) ([]*domain.Annotation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+annotationColumns+` FROM annotations
		WHERE tag_id = ?
		ORDER BY last_modified DESC`, tagID)
	if err != nil {
		return nil, err
	}
	return decodeAnnotations(rows)
}

// GetAnnotationsForToken returns every annotation whose token set contains
// the given token id. The membership test runs inside the storage engine
// via json_each, so an id that is a prefix of another ("gen.1.1.1" vs
// "gen.1.1.10") can never false-positive the way a substring match would.
func (s *Store) GetAnnotationsForToken(ctx context.Context, tokenID string) ([]*domain.Annotation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+annotationColumns+` FROM annotations
		WHERE EXISTS (
			SELECT 1 FROM json_each(annotations.token_ids)
			WHERE json_each.value = ?
		)
		ORDER BY last_modified DESC`, tokenID)
	if err != nil {
		return nil, err
	}
	return decodeAnnotations(rows)
}

// DeleteAnnotation removes an annotation by id.
// Returns errors.ErrNotFound if the annotation does not exist.
func (s *Store) DeleteAnnotation(ctx context.Context, id string) error {
	if _, err := s.GetAnnotation(ctx, id); err != nil {
		return err
	}
	return s.db.Execute(ctx, `DELETE FROM annotations WHERE id = ?`, id)
}

// DeleteAnnotationsForTag removes every annotation referencing a tag.
// Used by the tag deletion cascade; deleting zero rows is not an error.
func (s *Store) DeleteAnnotationsForTag(ctx context.Context, tagID string) error {
	return s.db.Execute(ctx, `DELETE FROM annotations WHERE tag_id = ?`, tagID)
}
