// Package ranks keeps rank definitions of one tree and maps column names of
// input files to them. The cache is loaded once and is read-only afterwards.
package ranks

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/gnames/sp7tree/pkg/tree"
)

// maxRanks bounds the number of rank definitions of one tree.
const maxRanks = 1000

// Column-name decorations.
const (
	AcceptedPrefix       = "Accepted"
	AuthorSuffix         = "Author"
	TaxonKeySuffix       = "TaxonKey"
	TaxonKeySourceSuffix = "TaxonKeySource"
)

// Cache holds rank definitions of a tree definition ordered by RankID.
type Cache struct {
	treeType  tree.Type
	treeDefID int
	ranks     []tree.Rank
	byName    map[string]tree.Rank
	byRankID  map[int]tree.Rank
}

// Load fetches all rank definitions of a tree definition.
func Load(
	ctx context.Context,
	client specify.Client,
	tt tree.Type,
	treeDefID int,
) (*Cache, error) {
	q := specify.Query{
		Limit:   maxRanks,
		Filters: map[string]string{"treedef": strconv.Itoa(treeDefID)},
		OrderBy: specify.FieldRankID,
	}
	objs, err := client.GetObjects(ctx, tt.DefItemKind(), q)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, TreeDefNotFoundError(tt, treeDefID, nil)
	}

	rs := make([]tree.Rank, 0, len(objs))
	for _, o := range objs {
		rs = append(rs, specify.RankFromObject(o))
	}
	return New(tt, treeDefID, rs), nil
}

// New creates a Cache from already known rank definitions.
func New(tt tree.Type, treeDefID int, rs []tree.Rank) *Cache {
	rs = slices.Clone(rs)
	slices.SortStableFunc(rs, func(a, b tree.Rank) int {
		return cmp.Compare(a.RankID, b.RankID)
	})
	res := &Cache{
		treeType:  tt,
		treeDefID: treeDefID,
		ranks:     rs,
		byName:    make(map[string]tree.Rank, len(rs)),
		byRankID:  make(map[int]tree.Rank, len(rs)),
	}
	for _, r := range rs {
		res.byName[r.Name] = r
		res.byRankID[r.RankID] = r
	}
	return res
}

// TreeType returns the tree type of the cache.
func (c *Cache) TreeType() tree.Type {
	return c.treeType
}

// TreeDefID returns the tree definition of the cache.
func (c *Cache) TreeDefID() int {
	return c.treeDefID
}

// Ranks returns rank definitions ordered from the most inclusive.
func (c *Cache) Ranks() []tree.Rank {
	return slices.Clone(c.ranks)
}

// ByRankID finds a rank by its numeric id.
func (c *Cache) ByRankID(id int) (tree.Rank, bool) {
	r, ok := c.byRankID[id]
	return r, ok
}

// Root returns the most inclusive rank of the tree.
func (c *Cache) Root() tree.Rank {
	if len(c.ranks) == 0 {
		return tree.Rank{}
	}
	return c.ranks[0]
}

// Lookup finds the rank of a column. Accepted prefix and Author,
// TaxonKey or TaxonKeySource suffixes are ignored.
func (c *Cache) Lookup(column string) (tree.Rank, error) {
	name := BaseName(column)
	r, ok := c.byName[name]
	if !ok {
		return tree.Rank{}, RankNotFoundError(column)
	}
	return r, nil
}

// BaseName strips decorations from a column name.
func BaseName(column string) string {
	name := strings.TrimPrefix(column, AcceptedPrefix)
	for _, suf := range []string{TaxonKeySourceSuffix, TaxonKeySuffix, AuthorSuffix} {
		if s, ok := strings.CutSuffix(name, suf); ok && s != "" {
			return s
		}
	}
	return name
}

// TreeDefIDFor finds the tree definition used by a collection. Storage
// trees are shared by the institution and use a configured id.
func TreeDefIDFor(
	ctx context.Context,
	client specify.Client,
	tt tree.Type,
	collectionID int,
	storageTreeDefID int,
) (int, error) {
	if tt == tree.Storage {
		return storageTreeDefID, nil
	}

	coll, err := client.GetObject(ctx, "collection", collectionID)
	if err != nil {
		return 0, err
	}
	if coll == nil {
		return 0, TreeDefNotFoundError(tt, collectionID, nil)
	}

	disc, err := client.GetObject(ctx, "discipline", coll.Ref("discipline"))
	if err != nil {
		return 0, err
	}
	if disc == nil {
		return 0, TreeDefNotFoundError(tt, collectionID, nil)
	}

	id := disc.Ref(tt.DefKind())
	if id == 0 {
		return 0, TreeDefNotFoundError(tt, collectionID, nil)
	}
	return id, nil
}
