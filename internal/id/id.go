package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate returns a new identifier of the form "<prefix>-<nanoid>", e.g.
// "tag-V1StGXR8_Z5jdHi6B-myT". The prefix makes ids self-describing in
// logs and snapshot files; the random part is a 21-character URL-safe
// NanoID, so ids can appear in routes without escaping.
//
// Fails only when the OS cannot supply secure random bytes.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is Generate for callers with no error path, such as
// fixture seeding. Panics when generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
