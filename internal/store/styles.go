package store

import (
	"context"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/domain"
	apperrors "github.com/marginapp/margin-server/internal/errors"
)

const styleColumns = `tag_id, user_id, background_color, text_color, underline_style,
	underline_color, font_weight, icon, icon_position, opacity`

func decodeStyle(r db.Row) (*domain.TagStyle, error) {
	var st domain.TagStyle
	var err error

	if st.TagID, err = fieldString(r, "tag_id"); err != nil {
		return nil, err
	}
	if st.UserID, err = fieldNullString(r, "user_id"); err != nil {
		return nil, err
	}
	if st.BackgroundColor, err = fieldNullString(r, "background_color"); err != nil {
		return nil, err
	}
	if st.TextColor, err = fieldNullString(r, "text_color"); err != nil {
		return nil, err
	}
	if st.UnderlineStyle, err = fieldNullString(r, "underline_style"); err != nil {
		return nil, err
	}
	if st.UnderlineColor, err = fieldNullString(r, "underline_color"); err != nil {
		return nil, err
	}
	if st.FontWeight, err = fieldNullString(r, "font_weight"); err != nil {
		return nil, err
	}
	if st.Icon, err = fieldNullString(r, "icon"); err != nil {
		return nil, err
	}
	if st.IconPosition, err = fieldNullString(r, "icon_position"); err != nil {
		return nil, err
	}
	if st.Opacity, err = fieldNullFloat(r, "opacity"); err != nil {
		return nil, err
	}

	return &st, nil
}

// SaveStyle upserts the style override for a tag.
func (s *Store) SaveStyle(ctx context.Context, st *domain.TagStyle) error {
	var opacity any
	if st.Opacity != 0 {
		opacity = st.Opacity
	}
	return s.db.Execute(ctx, `
		INSERT INTO tag_styles (tag_id, user_id, background_color, text_color, underline_style,
		                        underline_color, font_weight, icon, icon_position, opacity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tag_id) DO UPDATE SET
			user_id = excluded.user_id,
			background_color = excluded.background_color,
			text_color = excluded.text_color,
			underline_style = excluded.underline_style,
			underline_color = excluded.underline_color,
			font_weight = excluded.font_weight,
			icon = excluded.icon,
			icon_position = excluded.icon_position,
			opacity = excluded.opacity`,
		st.TagID, nullString(st.UserID), nullString(st.BackgroundColor),
		nullString(st.TextColor), nullString(st.UnderlineStyle),
		nullString(st.UnderlineColor), nullString(st.FontWeight),
		nullString(st.Icon), nullString(st.IconPosition), opacity,
	)
}

// GetStyle retrieves the style override for a tag.
// Returns errors.ErrNotFound if the tag has no style.
func (s *Store) GetStyle(ctx context.Context, tagID string) (*domain.TagStyle, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+styleColumns+` FROM tag_styles WHERE tag_id = ?`, tagID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFoundf("style for tag %s not found", tagID)
	}
	return decodeStyle(rows[0])
}

// ListStyles returns every style override.
func (s *Store) ListStyles(ctx context.Context) ([]*domain.TagStyle, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+styleColumns+` FROM tag_styles ORDER BY tag_id`)
	if err != nil {
		return nil, err
	}

	styles := make([]*domain.TagStyle, 0, len(rows))
	for _, r := range rows {
		st, err := decodeStyle(r)
		if err != nil {
			return nil, err
		}
		styles = append(styles, st)
	}
	return styles, nil
}

// DeleteStyle removes the style override for a tag. Used both directly and
// by the tag deletion cascade; deleting zero rows is not an error.
func (s *Store) DeleteStyle(ctx context.Context, tagID string) error {
	return s.db.Execute(ctx, `DELETE FROM tag_styles WHERE tag_id = ?`, tagID)
}
