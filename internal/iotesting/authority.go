package iotesting

import (
	"context"

	"github.com/gnames/sp7tree/pkg/authority"
)

// Matcher is an in-memory authority.Matcher. Names without an entry
// have no matches.
type Matcher struct {
	Matches map[string][]authority.Match

	// Err is returned by every call when set.
	Err error

	// Names records requested names in order.
	Names []string
}

// NewMatcher creates an empty Matcher.
func NewMatcher() *Matcher {
	return &Matcher{Matches: make(map[string][]authority.Match)}
}

func (m *Matcher) MatchName(
	_ context.Context,
	_ string,
	name string,
	_ int,
	_ string,
) ([]authority.Match, error) {
	m.Names = append(m.Names, name)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Matches[name], nil
}
