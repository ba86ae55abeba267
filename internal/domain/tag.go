package domain

import "time"

// Tag is a user-defined label applied to content via annotations.
// Name is unique among live tags; Priority orders overlapping annotations
// when the rendering layer stacks them.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"` // free-form grouping
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Priority    int64     `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      string    `json:"user_id,omitempty"`
}
