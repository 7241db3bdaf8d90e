// Package authority describes a taxonomic name authority used to confirm
// authorship and parentage of names. GBIF implementation is in
// internal/iogbif.
package authority

import (
	"context"
	"strings"
)

// Match is an accepted name returned by the authority.
type Match struct {
	// Key is the canonical identifier of the accepted name.
	Key            string
	ScientificName string
	Authorship     string

	// Rank is upper-case, for example "SPECIES".
	Rank   string
	Status string

	Kingdom string
	Class   string
	Order   string
	Family  string
	Genus   string
	Species string
}

// ParentName returns the canonical name of the parent derived from the
// classification of the match. Empty string means the rank has no known
// parent.
func (m Match) ParentName() string {
	switch strings.ToUpper(m.Rank) {
	case "SUBSPECIES", "VARIETY", "FORM":
		return m.Species
	case "SPECIES":
		return m.Genus
	case "GENUS":
		return m.Family
	case "FAMILY":
		return m.Order
	case "ORDER":
		return m.Class
	}
	return ""
}

// Matcher finds accepted names that match a scientific name.
type Matcher interface {
	// MatchName returns accepted candidates for a name. Kind is the kind
	// of the authority resource (for GBIF it is "species"), groupHint
	// narrows results to a taxonomic group such as a kingdom.
	MatchName(
		ctx context.Context,
		kind, name string,
		collectionID int,
		groupHint string,
	) ([]Match, error)
}

// Converge returns the single canonical match of a result. It succeeds
// when there is exactly one match or when all matches share the same key.
func Converge(ms []Match) (Match, bool) {
	if len(ms) == 0 {
		return Match{}, false
	}
	key := ms[0].Key
	for _, m := range ms[1:] {
		if m.Key != key {
			return Match{}, false
		}
	}
	return ms[0], true
}
