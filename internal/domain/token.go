// Package domain defines the entities of the Margin annotation engine:
// tags, annotations over token ids, and per-tag style overrides.
package domain

import "regexp"

// tokenIDPattern matches the token address grammar
// <content-id>.<int>.<int>.<int> (book/chapter/verse/position),
// e.g. "gen.1.1.1" or "1-ne.2.3.10".
var tokenIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+\.[0-9]+\.[0-9]+\.[0-9]+$`)

// ValidTokenID reports whether id matches the token address grammar.
func ValidTokenID(id string) bool {
	return tokenIDPattern.MatchString(id)
}

// InvalidTokenIDs returns every id in the list that fails the grammar.
// The result preserves input order and keeps duplicates.
func InvalidTokenIDs(ids []string) []string {
	var bad []string
	for _, id := range ids {
		if !ValidTokenID(id) {
			bad = append(bad, id)
		}
	}
	return bad
}
