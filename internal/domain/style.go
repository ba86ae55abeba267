package domain

// TagStyle is an optional per-tag presentation override.
// Keyed by TagID; its lifecycle is tied to the tag via cascading delete.
// UserID is empty for a global style.
type TagStyle struct {
	TagID           string  `json:"tag_id"`
	UserID          string  `json:"user_id,omitempty"`
	BackgroundColor string  `json:"background_color,omitempty"`
	TextColor       string  `json:"text_color,omitempty"`
	UnderlineStyle  string  `json:"underline_style,omitempty"`
	UnderlineColor  string  `json:"underline_color,omitempty"`
	FontWeight      string  `json:"font_weight,omitempty"`
	Icon            string  `json:"icon,omitempty"`
	IconPosition    string  `json:"icon_position,omitempty"`
	Opacity         float64 `json:"opacity,omitempty"`
}
