package dedup_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/internal/iotesting"
	"github.com/gnames/sp7tree/pkg/authority"
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/gnames/sp7tree/pkg/dedup"
	"github.com/gnames/sp7tree/pkg/errcode"
	"github.com/gnames/sp7tree/pkg/ranks"
	"github.com/gnames/sp7tree/pkg/status"
	"github.com/gnames/sp7tree/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	fake    *iotesting.TaxonTree
	matcher *iotesting.Matcher
	engine  *dedup.Engine
	out     *bytes.Buffer
}

func setup(t *testing.T, opts ...config.Option) env {
	t.Helper()
	fake := iotesting.NewTaxonTree()
	rc, err := ranks.Load(context.Background(), fake, tree.Taxon,
		iotesting.TaxonTreeDefID)
	require.NoError(t, err)

	cfg := config.New()
	cfg.Update(append(
		[]config.Option{config.OptSpecifyCollectionID(iotesting.CollectionID)},
		opts...,
	))
	m := iotesting.NewMatcher()
	var buf bytes.Buffer
	e := dedup.New(cfg, fake, m, rc, status.NewWriter(&buf))
	return env{fake: fake, matcher: m, engine: e, out: &buf}
}

// species adds two "Draba incana" nodes under one genus.
func (v env) species(authorA, authorB string) (int, int) {
	g := v.fake.AddTaxon("Genus", "Draba", "Draba", "", v.fake.RootID)
	a := v.fake.AddTaxon("Species", "incana", "Draba incana", authorA, g)
	b := v.fake.AddTaxon("Species", "incana", "Draba incana", authorB, g)
	return a, b
}

func merges(f *iotesting.TaxonTree) []iotesting.Call {
	var res []iotesting.Call
	for _, c := range f.Calls {
		if c.Method == "MERGE" {
			res = append(res, c)
		}
	}
	return res
}

func TestWeigh(t *testing.T) {
	tests := []struct {
		msg                    string
		orig, cand             dedup.Candidate
		target, source, ow, cw int
	}{
		{
			msg:    "author only on original",
			orig:   dedup.Candidate{ID: 10, Author: "L."},
			cand:   dedup.Candidate{ID: 20},
			target: 10, source: 20, ow: 2, cw: 0,
		},
		{
			msg:    "author only on candidate wins with more children",
			orig:   dedup.Candidate{ID: 10},
			cand:   dedup.Candidate{ID: 20, Author: "L.", Children: 3},
			target: 20, source: 10, ow: 1, cw: 2,
		},
		{
			msg:    "smaller id wins among equals",
			orig:   dedup.Candidate{ID: 20, Author: "L."},
			cand:   dedup.Candidate{ID: 10, Author: "L."},
			target: 10, source: 20, ow: 0, cw: 1,
		},
		{
			msg:    "tie keeps original",
			orig:   dedup.Candidate{ID: 20, Author: "L.", Children: 2},
			cand:   dedup.Candidate{ID: 10, Author: "L."},
			target: 20, source: 10, ow: 1, cw: 1,
		},
		{
			msg:    "equal children give no point",
			orig:   dedup.Candidate{ID: 5, Children: 1},
			cand:   dedup.Candidate{ID: 6, Children: 1},
			target: 5, source: 6, ow: 1, cw: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			d := dedup.Weigh(tt.orig, tt.cand)
			assert.Equal(t, tt.target, d.TargetID)
			assert.Equal(t, tt.source, d.SourceID)
			assert.Equal(t, tt.ow, d.OriginalWeight)
			assert.Equal(t, tt.cw, d.CandidateWeight)
			assert.Equal(t, d, dedup.Weigh(tt.orig, tt.cand))
		})
	}
}

func TestScanMergesBlankAuthor(t *testing.T) {
	v := setup(t)
	withAuthor, blank := v.species("L.", "")

	require.NoError(t, v.engine.Scan(context.Background()))

	found := v.fake.FindTaxa("Draba incana")
	require.Len(t, found, 1)
	assert.Equal(t, withAuthor, found[0].ID)
	assert.Equal(t, "L.", found[0].Author)

	ms := merges(v.fake)
	require.Len(t, ms, 1)
	assert.Equal(t, blank, ms[0].ID)
	assert.Equal(t, withAuthor, ms[0].Target)

	assert.Empty(t, v.engine.Cases())
	assert.Empty(t, v.matcher.Names)
	assert.Equal(t, 1, v.engine.Stats().Merged)
	assert.Contains(t, v.out.String(), status.Merge(blank, withAuthor))
	assert.Contains(t, v.out.String(), status.NoLongerFound)
}

func TestScanParentMismatch(t *testing.T) {
	v := setup(t)
	f1 := v.fake.AddTaxon("Family", "Brassicaceae", "Brassicaceae", "", v.fake.RootID)
	f2 := v.fake.AddTaxon("Family", "Cruciferae", "Cruciferae", "", v.fake.RootID)
	g1 := v.fake.AddTaxon("Genus", "Draba", "Draba", "", f1)
	g2 := v.fake.AddTaxon("Genus", "Draba", "Draba", "", f2)

	require.NoError(t, v.engine.Scan(context.Background()))

	assert.Equal(t, 0, v.fake.CallCount("MERGE"))
	assert.Equal(t, 0, v.fake.CallCount("MOVE"))
	assert.Len(t, v.fake.FindTaxa("Draba"), 2)

	cases := v.engine.Cases()
	unique := make(map[string]tree.AmbivalentCase)
	for _, c := range cases {
		unique[fmt.Sprintf("%d|%d|%s", c.Node.ID, c.DuplicateOfID, c.Remarks)] = c
	}
	assert.Len(t, unique, 2)

	want := fmt.Sprintf("Ambivalence on parents: Brassicaceae [%d] vs Cruciferae [%d]",
		f1, f2)
	_, ok := unique[fmt.Sprintf("%d|%d|%s", g1, g2, want)]
	assert.True(t, ok)
	assert.Contains(t, v.out.String(), status.ParentConflict)
}

func TestScanParentReconciled(t *testing.T) {
	v := setup(t)
	f1 := v.fake.AddTaxon("Family", "Brassicaceae", "Brassicaceae", "", v.fake.RootID)
	f2 := v.fake.AddTaxon("Family", "Cruciferae", "Cruciferae", "", v.fake.RootID)
	g1 := v.fake.AddTaxon("Genus", "Draba", "Draba", "", f1)
	g2 := v.fake.AddTaxon("Genus", "Draba", "Draba", "", f2)
	v.matcher.Matches["Draba"] = []authority.Match{
		{Key: "3052556", Rank: "GENUS", Family: "Brassicaceae", Order: "Brassicales"},
	}

	require.NoError(t, v.engine.Scan(context.Background()))

	assert.Equal(t, 1, v.fake.CallCount("MOVE"))
	ms := merges(v.fake)
	require.Len(t, ms, 1)
	assert.Equal(t, g2, ms[0].ID)
	assert.Equal(t, g1, ms[0].Target)

	found := v.fake.FindTaxa("Draba")
	require.Len(t, found, 1)
	assert.Equal(t, f1, found[0].ParentID)
	assert.Contains(t, v.out.String(), status.Move(g2, f1))
	assert.Equal(t, 1, v.engine.Stats().Moved)
}

func TestScanMovedOriginalKeepsParent(t *testing.T) {
	v := setup(t)
	f1 := v.fake.AddTaxon("Family", "Brassicaceae", "Brassicaceae", "", v.fake.RootID)
	f2 := v.fake.AddTaxon("Family", "Cruciferae", "Cruciferae", "", v.fake.RootID)
	g1 := v.fake.AddTaxon("Genus", "Draba", "Draba", "", f2)
	g2 := v.fake.AddTaxon("Genus", "Draba", "Draba", "", f1)
	g3 := v.fake.AddTaxon("Genus", "Draba", "Draba", "", f1)
	v.matcher.Matches["Draba"] = []authority.Match{
		{Key: "3052556", Rank: "GENUS", Family: "Brassicaceae", Order: "Brassicales"},
	}

	require.NoError(t, v.engine.Scan(context.Background()))

	assert.Equal(t, 1, v.fake.CallCount("MOVE"))
	ms := merges(v.fake)
	require.Len(t, ms, 2)
	assert.Equal(t, g2, ms[0].ID)
	assert.Equal(t, g3, ms[1].ID)
	assert.Equal(t, g1, ms[1].Target)

	found := v.fake.FindTaxa("Draba")
	require.Len(t, found, 1)
	assert.Equal(t, f1, found[0].ParentID)

	cases := v.engine.Cases()
	require.Len(t, cases, 2)
	want := fmt.Sprintf("Ambivalence on parents: Cruciferae [%d] vs Brassicaceae [%d]",
		f2, f1)
	assert.Equal(t, g1, cases[0].Node.ID)
	assert.Equal(t, want, cases[0].Remarks)
	assert.Equal(t, g2, cases[1].Node.ID)
}

func TestScanPagesAfterMerges(t *testing.T) {
	v := setup(t, config.OptDedupBatchSize(4))
	g := v.fake.AddTaxon("Genus", "Draba", "Draba", "", v.fake.RootID)
	for _, sp := range []string{"incana", "nivalis", "incana", "nivalis", "lactea", "lactea"} {
		v.fake.AddTaxon("Species", sp, "Draba "+sp, "L.", g)
	}

	require.NoError(t, v.engine.Scan(context.Background()))

	assert.Equal(t, 3, v.engine.Stats().Merged)
	for _, sp := range []string{"incana", "nivalis", "lactea"} {
		assert.Len(t, v.fake.FindTaxa("Draba "+sp), 1, sp)
	}
}

func TestScanAuthorConflict(t *testing.T) {
	v := setup(t)
	v.species("L.", "(L.) DC.")
	v.matcher.Matches["Draba incana"] = []authority.Match{
		{Key: "1", Authorship: "L."},
		{Key: "2", Authorship: "(L.) DC."},
	}

	require.NoError(t, v.engine.Scan(context.Background()))

	assert.Equal(t, 0, v.fake.CallCount("MERGE"))
	assert.Equal(t, 0, v.fake.CallCount("PUT"))
	assert.Len(t, v.fake.FindTaxa("Draba incana"), 2)
	cases := v.engine.Cases()
	require.NotEmpty(t, cases)
	for _, c := range cases {
		assert.True(t, strings.HasPrefix(c.Remarks, "Ambivalence on authors"))
	}
	assert.Contains(t, v.out.String(), status.AuthorConflict)
}

func TestScanAuthorResolved(t *testing.T) {
	v := setup(t)
	a, b := v.species("L.", "(L.) DC.")
	v.matcher.Matches["Draba incana"] = []authority.Match{
		{Key: "3052629", Authorship: "L."},
		{Key: "3052629", Authorship: "L."},
	}

	require.NoError(t, v.engine.Scan(context.Background()))

	assert.Equal(t, 1, v.fake.CallCount("PUT"))
	ms := merges(v.fake)
	require.Len(t, ms, 1)
	assert.Equal(t, b, ms[0].ID)
	assert.Equal(t, a, ms[0].Target)
	assert.Empty(t, v.engine.Cases())
}

func TestScanSameAuthorSpelling(t *testing.T) {
	v := setup(t)
	v.species("L.", " L. ")

	require.NoError(t, v.engine.Scan(context.Background()))

	assert.Empty(t, v.matcher.Names)
	assert.Equal(t, 1, v.fake.CallCount("MERGE"))
}

func TestScanBlankAuthors(t *testing.T) {
	t.Run("force merge", func(t *testing.T) {
		v := setup(t)
		a, b := v.species("", "")

		require.NoError(t, v.engine.Scan(context.Background()))

		ms := merges(v.fake)
		require.Len(t, ms, 1)
		assert.Equal(t, b, ms[0].ID)
		assert.Equal(t, a, ms[0].Target)
		assert.Contains(t, v.out.String(), status.ForceMerge)
	})

	t.Run("authority fills author", func(t *testing.T) {
		v := setup(t)
		a, _ := v.species("", "")
		v.matcher.Matches["Draba incana"] = []authority.Match{
			{Key: "3052629", Authorship: "L."},
		}

		require.NoError(t, v.engine.Scan(context.Background()))

		found := v.fake.FindTaxa("Draba incana")
		require.Len(t, found, 1)
		assert.Equal(t, a, found[0].ID)
		assert.Equal(t, "L.", found[0].Author)
		assert.NotContains(t, v.out.String(), status.ForceMerge)
	})

	t.Run("no force", func(t *testing.T) {
		f := false
		v := setup(t, config.OptDedupForceMergeBlankAuthors(&f))
		v.species("", "")

		require.NoError(t, v.engine.Scan(context.Background()))

		assert.Equal(t, 0, v.fake.CallCount("MERGE"))
		assert.NotEmpty(t, v.engine.Cases())
	})
}

func TestScanCandidateWins(t *testing.T) {
	v := setup(t)
	a, b := v.species("", "L.")
	v.fake.AddTaxon("Subspecies", "incana", "Draba incana incana", "", b)
	v.fake.AddTaxon("Subspecies", "confusa", "Draba incana confusa", "", b)

	require.NoError(t, v.engine.Scan(context.Background()))

	ms := merges(v.fake)
	require.Len(t, ms, 1)
	assert.Equal(t, a, ms[0].ID)
	assert.Equal(t, b, ms[0].Target)
}

func TestMergeStatuses(t *testing.T) {
	tests := []struct {
		msg    string
		status int
		errors int
	}{
		{"already merged", 404, 0},
		{"server error", 500, 2},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			v := setup(t)
			_, b := v.species("L.", "")
			v.fake.MergeStatus[b] = tt.status

			require.NoError(t, v.engine.Scan(context.Background()))

			assert.Equal(t, 0, v.engine.Stats().Merged)
			assert.Equal(t, tt.errors, v.engine.Stats().Errors)
			if tt.errors > 0 {
				assert.Contains(t, v.out.String(), status.Error)
			}
		})
	}
}

func TestCheckIDs(t *testing.T) {
	v := setup(t)
	a, b := v.species("L.", "")

	v.engine.CheckIDs(context.Background(), []int{999, a})

	assert.True(t, strings.HasPrefix(v.out.String(), status.NotRetrieved))
	ms := merges(v.fake)
	require.Len(t, ms, 1)
	assert.Equal(t, b, ms[0].ID)
	assert.Equal(t, 1, v.engine.Stats().Handled)
}

func TestParseIDs(t *testing.T) {
	ids, err := dedup.ParseIDs(strings.NewReader("12\n\n# checked\n 15 \n"))
	require.NoError(t, err)
	assert.Equal(t, []int{12, 15}, ids)

	_, err = dedup.ParseIDs(strings.NewReader("12\nabc\n"))
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DedupIDFileError, gnErr.Code)
	assert.Equal(t, []any{2, "abc"}, gnErr.Vars)
}

func TestPairRows(t *testing.T) {
	assert.NoError(t, dedup.CheckPairHeaders([]string{"from_id", "to_id"}))
	assert.Error(t, dedup.CheckPairHeaders([]string{"to_id", "from_id"}))
	assert.Error(t, dedup.CheckPairHeaders([]string{"from_id"}))

	tests := []struct {
		msg      string
		from, to string
		ok       bool
	}{
		{"digits", "12", "15", true},
		{"letters", "12a", "15", false},
		{"blank", "", "15", false},
		{"negative", "-1", "15", false},
		{"decimal", "12", "1.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			p, err := dedup.NewPairRow(tree.Row{"from_id": tt.from, "to_id": tt.to})
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.from, p.FromID)
				return
			}
			require.Error(t, err)
			gnErr, ok := err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, errcode.DedupPairRowError, gnErr.Code)
		})
	}
}

func TestMergePair(t *testing.T) {
	v := setup(t)
	a, b := v.species("L.", "")
	p := dedup.PairRow{FromID: fmt.Sprint(b), ToID: fmt.Sprint(a)}

	res := v.engine.MergePair(context.Background(), p)
	assert.NoError(t, res.Err)
	assert.Equal(t, 200, res.Status)
	assert.Len(t, v.fake.FindTaxa("Draba incana"), 1)

	res = v.engine.MergePair(context.Background(), p)
	assert.Error(t, res.Err)
	assert.Equal(t, 404, res.Status)
}
