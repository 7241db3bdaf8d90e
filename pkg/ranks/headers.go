package ranks

import (
	"cmp"
	"slices"
	"sort"
	"strings"

	"github.com/gnames/sp7tree/pkg/tree"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Layout describes the columns of an input file.
type Layout struct {
	// Headers keep the original order of columns.
	Headers []string

	// RankColumns are plain rank columns ordered from the most inclusive.
	RankColumns []string
}

// ClassifyHeaders validates a header row. Every header has to be a rank name,
// optionally decorated with Accepted prefix or Author, TaxonKey,
// TaxonKeySource suffixes, or one of reserved columns. Any unknown header
// makes the whole file unusable.
func (c *Cache) ClassifyHeaders(headers []string) (Layout, error) {
	res := Layout{Headers: slices.Clone(headers)}
	seen := make(map[string]struct{})
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == tree.IsAcceptedColumn || h == tree.IsHybridColumn {
			continue
		}
		if _, ok := c.byName[h]; ok {
			if _, dup := seen[h]; !dup {
				res.RankColumns = append(res.RankColumns, h)
				seen[h] = struct{}{}
			}
			continue
		}
		if _, err := c.Lookup(h); err != nil {
			return Layout{}, HeaderError(h, c.suggest(h))
		}
	}

	if len(res.RankColumns) == 0 {
		return Layout{}, NoRankColumnsError(headers)
	}

	slices.SortStableFunc(res.RankColumns, func(a, b string) int {
		return cmp.Compare(c.byName[a].RankID, c.byName[b].RankID)
	})
	return res, nil
}

// suggest finds the rank name closest to an unknown header.
func (c *Cache) suggest(header string) string {
	names := make([]string, len(c.ranks))
	for i, r := range c.ranks {
		names[i] = r.Name
	}
	if len(names) == 0 {
		return ""
	}

	base := BaseName(header)
	found := fuzzy.RankFindNormalizedFold(base, names)
	if len(found) > 0 {
		sort.Sort(found)
		return found[0].Target
	}

	best := names[0]
	dist := fuzzy.LevenshteinDistance(strings.ToLower(base), strings.ToLower(best))
	for _, n := range names[1:] {
		d := fuzzy.LevenshteinDistance(strings.ToLower(base), strings.ToLower(n))
		if d < dist {
			best, dist = n, d
		}
	}
	return best
}
