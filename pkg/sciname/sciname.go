// Package sciname wraps gnparser to compare scientific names and their
// authorships. This is a pure package, parsing is computation, not I/O.
package sciname

import (
	"strings"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
)

// Parser normalizes names according to a nomenclatural code.
type Parser struct {
	gnp gnparser.GNparser
}

// New creates a Parser for "botanical" or "zoological" code. Any other
// value falls back to botanical code.
func New(code string) *Parser {
	nc := nomcode.Botanical
	if strings.ToLower(code) == "zoological" {
		nc = nomcode.Zoological
	}
	cfg := gnparser.NewConfig(
		gnparser.OptCode(nc),
		gnparser.OptWithDetails(true),
	)
	return &Parser{gnp: gnparser.New(cfg)}
}

// Canonical returns the simple canonical form of a name. Unparseable names
// are returned with normalized whitespace.
func (p *Parser) Canonical(name string) string {
	name = squash(name)
	if name == "" {
		return ""
	}
	res := p.gnp.ParseName(name)
	if !res.Parsed || res.Canonical == nil {
		return name
	}
	return res.Canonical.Simple
}

// NormalizeAuthor returns a normalized authorship string. The author is
// parsed together with a placeholder genus so gnparser can apply its
// authorship rules.
func (p *Parser) NormalizeAuthor(author string) string {
	author = squash(author)
	if author == "" {
		return ""
	}
	res := p.gnp.ParseName("Aus " + author)
	if !res.Parsed || res.Authorship == nil || res.Authorship.Normalized == "" {
		return author
	}
	return res.Authorship.Normalized
}

// SameAuthor compares two authorships after normalization.
func (p *Parser) SameAuthor(a, b string) bool {
	return p.NormalizeAuthor(a) == p.NormalizeAuthor(b)
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
