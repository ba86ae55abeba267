package domain

import "time"

// Annotation links exactly one tag to one or more token ids.
// The token list is stored as authored; order carries no meaning but is
// preserved. Version starts at 1 and increments on every mutation — it is
// the arbitration field for snapshot merges.
type Annotation struct {
	ID           string    `json:"id"`
	TagID        string    `json:"tag_id"`
	TokenIDs     []string  `json:"token_ids"`
	UserID       string    `json:"user_id,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
	Version      int64     `json:"version"`
}

// Touch advances LastModified and bumps the version by one.
// Call this exactly once per mutation, regardless of how many fields changed.
func (a *Annotation) Touch() {
	a.LastModified = time.Now().UTC()
	a.Version++
}

// InitTimestamps sets CreatedAt and LastModified to the same instant and
// the version to 1. Call this when creating a new annotation.
func (a *Annotation) InitTimestamps() {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.LastModified = now
	a.Version = 1
}

// ContainsToken reports whether the annotation's token set includes id.
func (a *Annotation) ContainsToken(id string) bool {
	for _, t := range a.TokenIDs {
		if t == id {
			return true
		}
	}
	return false
}
