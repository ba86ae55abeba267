package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTokenID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected bool
	}{
		{"simple book", "gen.1.1.1", true},
		{"numbered book with hyphen", "1-ne.2.3.10", true},
		{"large positions", "rev.22.21.999", true},
		{"uppercase content id", "Gen.1.1.1", true},
		{"missing position", "gen.1.1", false},
		{"extra segment", "gen.1.1.1.1", false},
		{"non-numeric chapter", "gen.a.1.1", false},
		{"empty content id", ".1.1.1", false},
		{"empty string", "", false},
		{"whitespace", "gen .1.1.1", false},
		{"negative position", "gen.1.1.-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidTokenID(tt.id), "id: %q", tt.id)
		})
	}
}

func TestInvalidTokenIDs(t *testing.T) {
	ids := []string{"gen.1.1.1", "bogus", "1-ne.2.3.10", "gen.1", "gen.1"}

	bad := InvalidTokenIDs(ids)

	assert.Equal(t, []string{"bogus", "gen.1", "gen.1"}, bad)
}

func TestInvalidTokenIDs_AllValid(t *testing.T) {
	bad := InvalidTokenIDs([]string{"gen.1.1.1", "exo.2.2.2"})
	assert.Nil(t, bad)
}
