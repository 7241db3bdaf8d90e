package resolve_test

import (
	"context"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/internal/iotesting"
	"github.com/gnames/sp7tree/pkg/errcode"
	"github.com/gnames/sp7tree/pkg/ranks"
	"github.com/gnames/sp7tree/pkg/resolve"
	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/gnames/sp7tree/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sealRow = tree.Row{
	"Kingdom":       "Animalia",
	"Phylum":        "Chordata",
	"Class":         "Mammalia",
	"Order":         "Carnivora",
	"Family":        "Otariidae",
	"Genus":         "Eumetopias",
	"Species":       "jubatus",
	"SpeciesAuthor": "Schreber, 1776",
	"isAccepted":    "Yes",
}

var sealHeaders = []string{
	"Kingdom", "Phylum", "Class", "Order", "Family", "Genus", "Species",
	"SpeciesAuthor", "isAccepted",
}

func setup(t *testing.T) (*iotesting.TaxonTree, *resolve.Resolver, *ranks.Cache) {
	t.Helper()
	fake := iotesting.NewTaxonTree()
	rc, err := ranks.Load(context.Background(), fake, tree.Taxon,
		iotesting.TaxonTreeDefID)
	require.NoError(t, err)
	return fake, resolve.New(fake, rc, nil), rc
}

func layout(t *testing.T, rc *ranks.Cache, headers []string) ranks.Layout {
	t.Helper()
	l, err := rc.ClassifyHeaders(headers)
	require.NoError(t, err)
	return l
}

func gnCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	return gnErr.Code
}

func TestResolveRowAcceptedSpecies(t *testing.T) {
	fake, r, rc := setup(t)
	ctx := context.Background()
	l := layout(t, rc, sealHeaders)

	res, err := r.ResolveRow(ctx, l, sealRow)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Created)
	assert.Equal(t, 0, res.Found)
	assert.False(t, res.Synonym)

	n := res.Node
	require.NotNil(t, n)
	assert.Equal(t, "Eumetopias jubatus", n.FullName)
	assert.Equal(t, "jubatus", n.Name)
	assert.Equal(t, "Schreber, 1776", n.Author)
	assert.Equal(t, tree.SpeciesID, n.RankID)
	assert.True(t, n.IsAccepted)

	// walk up to the root
	var names []string
	id := n.ID
	for id != fake.RootID {
		node, ok := fake.Node(tree.Taxon, id)
		require.True(t, ok)
		names = append(names, node.FullName)
		id = node.ParentID
	}
	assert.Equal(t, []string{
		"Eumetopias jubatus", "Eumetopias", "Otariidae", "Carnivora",
		"Mammalia", "Chordata", "Animalia",
	}, names)
}

func TestResolveRowIdempotent(t *testing.T) {
	fake, r, rc := setup(t)
	ctx := context.Background()
	l := layout(t, rc, sealHeaders)

	first, err := r.ResolveRow(ctx, l, sealRow)
	require.NoError(t, err)
	count := fake.Count(tree.Taxon.Kind())

	second, err := r.ResolveRow(ctx, l, sealRow)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 7, second.Found)
	assert.Equal(t, count, fake.Count(tree.Taxon.Kind()))
	assert.Equal(t, first.Node.ID, second.Node.ID)
}

func TestResolveRowSynonym(t *testing.T) {
	fake, r, rc := setup(t)
	ctx := context.Background()

	row := tree.Row{
		"Kingdom":               "Animalia",
		"Phylum":                "Chordata",
		"Class":                 "Mammalia",
		"Order":                 "Carnivora",
		"Family":                "Otariidae",
		"Genus":                 "Gampsosteonyx",
		"Species":               "batesi",
		"isAccepted":            "No",
		"AcceptedGenus":         "Afrotyphlops",
		"AcceptedSpecies":       "lineolatus",
		"AcceptedSpeciesAuthor": "(Jan, 1864)",
	}
	headers := []string{
		"Kingdom", "Phylum", "Class", "Order", "Family", "Genus", "Species",
		"isAccepted", "AcceptedGenus", "AcceptedSpecies", "AcceptedSpeciesAuthor",
	}
	l := layout(t, rc, headers)

	res, err := r.ResolveRow(ctx, l, row)
	require.NoError(t, err)
	assert.True(t, res.Synonym)
	assert.Equal(t, 9, res.Created)

	syn := res.Node
	require.NotNil(t, syn)
	assert.Equal(t, "Gampsosteonyx batesi", syn.FullName)
	assert.False(t, syn.IsAccepted)

	accs := fake.FindTaxa("Afrotyphlops lineolatus")
	require.Len(t, accs, 1)
	acc := accs[0]
	assert.True(t, acc.IsAccepted)
	assert.Equal(t, "(Jan, 1864)", acc.Author)
	assert.Equal(t, acc.ID, syn.AcceptedID)

	// accepted genus is attached to the family of the synonym
	genus, ok := fake.Node(tree.Taxon, acc.ParentID)
	require.True(t, ok)
	assert.Equal(t, "Afrotyphlops", genus.FullName)
	family, ok := fake.Node(tree.Taxon, genus.ParentID)
	require.True(t, ok)
	assert.Equal(t, "Otariidae", family.FullName)

	// accepted node is persisted before the synonym
	var accPost, synPost int
	for i, c := range fake.Calls {
		if c.Method != "POST" {
			continue
		}
		switch c.ID {
		case acc.ID:
			accPost = i
		case syn.ID:
			synPost = i
		}
	}
	assert.Less(t, accPost, synPost)

	// every synonym points to an accepted node
	for _, n := range fake.Nodes(tree.Taxon) {
		if n.IsAccepted {
			continue
		}
		a, ok := fake.Node(tree.Taxon, n.AcceptedID)
		require.True(t, ok)
		assert.True(t, a.IsAccepted)
	}

	again, err := r.ResolveRow(ctx, l, row)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, syn.ID, again.Node.ID)
}

func TestResolveRowLinksExistingSynonym(t *testing.T) {
	fake, r, rc := setup(t)
	ctx := context.Background()

	genusID := fake.AddTaxon("Genus", "Aus", "Aus", "", fake.RootID)
	sp := fake.Ranks["Species"]
	synID := fake.AddNode(tree.Taxon, tree.Node{
		Name:      "bus",
		FullName:  "Aus bus",
		ParentID:  genusID,
		RankID:    sp.RankID,
		DefItemID: sp.DefItemID,
		TreeDefID: iotesting.TaxonTreeDefID,
	})

	row := tree.Row{
		"Genus":           "Aus",
		"Species":         "bus",
		"isAccepted":      "No",
		"AcceptedSpecies": "cus",
	}
	l := layout(t, rc, []string{"Genus", "Species", "isAccepted", "AcceptedSpecies"})

	res, err := r.ResolveRow(ctx, l, row)
	require.NoError(t, err)
	assert.Equal(t, synID, res.Node.ID)
	assert.Equal(t, 1, fake.CallCount("PUT"))

	accs := fake.FindTaxa("Aus cus")
	require.Len(t, accs, 1)
	assert.Equal(t, genusID, accs[0].ParentID)

	syn, ok := fake.Node(tree.Taxon, synID)
	require.True(t, ok)
	assert.False(t, syn.IsAccepted)
	assert.Equal(t, accs[0].ID, syn.AcceptedID)
	assert.Equal(t, 1, syn.Version)
}

func TestResolveRowAcceptedBecomesSynonym(t *testing.T) {
	fake, r, rc := setup(t)
	ctx := context.Background()
	headers := []string{"Genus", "Species", "isAccepted", "AcceptedSpecies"}
	l := layout(t, rc, headers)

	first, err := r.ResolveRow(ctx, l, tree.Row{
		"Genus": "Draba", "Species": "incana", "isAccepted": "Yes",
	})
	require.NoError(t, err)
	require.True(t, first.Node.IsAccepted)

	res, err := r.ResolveRow(ctx, l, tree.Row{
		"Genus": "Draba", "Species": "incana", "isAccepted": "No",
		"AcceptedSpecies": "contorta",
	})
	require.NoError(t, err)
	assert.True(t, res.Synonym)
	assert.Equal(t, first.Node.ID, res.Node.ID)
	assert.Equal(t, 1, fake.CallCount("PUT"))

	nodes := fake.FindTaxa("Draba incana")
	require.Len(t, nodes, 1)
	accs := fake.FindTaxa("Draba contorta")
	require.Len(t, accs, 1)
	assert.False(t, nodes[0].IsAccepted)
	assert.Equal(t, accs[0].ID, nodes[0].AcceptedID)
	assert.Equal(t, first.Node.ParentID, nodes[0].ParentID)
}

func TestResolveRowSynonymChains(t *testing.T) {
	fake, r, rc := setup(t)
	ctx := context.Background()
	headers := []string{"Genus", "Species", "isAccepted", "AcceptedSpecies"}
	l := layout(t, rc, headers)

	rows := []tree.Row{
		{"Genus": "Draba", "Species": "nivalis", "isAccepted": "No",
			"AcceptedSpecies": "incana"},
		{"Genus": "Draba", "Species": "incana", "isAccepted": "No",
			"AcceptedSpecies": "contorta"},
		{"Genus": "Draba", "Species": "lactea", "isAccepted": "No",
			"AcceptedSpecies": "incana"},
	}
	for _, row := range rows {
		_, err := r.ResolveRow(ctx, l, row)
		require.NoError(t, err)
	}

	accs := fake.FindTaxa("Draba contorta")
	require.Len(t, accs, 1)
	for _, name := range []string{"Draba nivalis", "Draba incana", "Draba lactea"} {
		nodes := fake.FindTaxa(name)
		require.Len(t, nodes, 1, name)
		assert.False(t, nodes[0].IsAccepted, name)
		assert.Equal(t, accs[0].ID, nodes[0].AcceptedID, name)
	}

	for _, n := range fake.Nodes(tree.Taxon) {
		if n.IsAccepted {
			continue
		}
		acc, ok := fake.Node(tree.Taxon, n.AcceptedID)
		require.True(t, ok, n.FullName)
		assert.True(t, acc.IsAccepted, n.FullName)
	}
}

func TestResolveRowSynonymErrors(t *testing.T) {
	tests := []struct {
		msg  string
		row  tree.Row
		code gn.ErrorCode
	}{
		{
			msg: "self-referential synonym",
			row: tree.Row{
				"Genus": "Aus", "Species": "bus", "isAccepted": "No",
				"AcceptedSpecies": "bus",
			},
			code: errcode.RowSelfSynonymError,
		},
		{
			msg: "no accepted name",
			row: tree.Row{
				"Genus": "Aus", "Species": "bus", "isAccepted": "No",
			},
			code: errcode.RowNoAcceptedNameError,
		},
		{
			msg: "bad isAccepted value",
			row: tree.Row{
				"Genus": "Aus", "Species": "bus", "isAccepted": "maybe",
			},
			code: errcode.RowIsAcceptedValueError,
		},
	}

	for _, v := range tests {
		fake, r, rc := setup(t)
		l := layout(t, rc,
			[]string{"Genus", "Species", "isAccepted", "AcceptedSpecies"})
		_, err := r.ResolveRow(context.Background(), l, v.row)
		assert.Equal(t, v.code, gnCode(t, err), v.msg)
		assert.Empty(t, fake.FindTaxa("Aus bus"), v.msg)
	}
}

func TestResolvePathBlankColumns(t *testing.T) {
	fake, r, _ := setup(t)
	ctx := context.Background()
	cols := []string{"Genus", "Subgenus", "Species", "Subspecies"}

	t.Run("blank middle column keeps parent", func(t *testing.T) {
		row := tree.Row{"Genus": "Draba", "Subgenus": "", "Species": "incana"}
		n, err := r.ResolvePath(ctx, cols, row, fake.RootID, 0)
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Equal(t, "Draba incana", n.FullName)

		genus := fake.FindTaxa("Draba")
		require.Len(t, genus, 1)
		assert.Equal(t, genus[0].ID, n.ParentID)
	})

	t.Run("blank last column returns parent", func(t *testing.T) {
		row := tree.Row{"Genus": "Draba"}
		n, err := r.ResolvePath(ctx, cols, row, fake.RootID, 0)
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Equal(t, "Draba", n.FullName)
	})

	t.Run("start beyond columns", func(t *testing.T) {
		n, err := r.ResolvePath(ctx, cols, tree.Row{}, fake.RootID, len(cols))
		require.NoError(t, err)
		assert.Nil(t, n)
	})
}

func TestResolvePathRankNotFound(t *testing.T) {
	fake, r, _ := setup(t)
	row := tree.Row{"Genus": "Draba", "Tribe": "Arabideae"}
	_, err := r.ResolvePath(context.Background(), []string{"Genus", "Tribe"},
		row, fake.RootID, 0)
	assert.Equal(t, errcode.RankNotFoundError, gnCode(t, err))

	// nodes created before the failure stay
	assert.Len(t, fake.FindTaxa("Draba"), 1)
}

func TestResolveRowEmpty(t *testing.T) {
	_, r, rc := setup(t)
	l := layout(t, rc, []string{"Genus", "Species"})
	_, err := r.ResolveRow(context.Background(), l, tree.Row{"Genus": " "})
	assert.Equal(t, errcode.RowAnchorError, gnCode(t, err))
}

func TestResolveRowStorage(t *testing.T) {
	ctx := context.Background()
	fake := iotesting.NewSpecify()
	defKind := tree.Storage.DefItemKind()

	var rs []tree.Rank
	for _, name := range []string{"Institution", "Collection", "Room", "Box"} {
		id := fake.Add(defKind, specify.Object{
			"name":    name,
			"rankid":  tree.StorageRanks[name],
			"treedef": specify.URI(tree.Storage.DefKind(), 1),
		})
		rs = append(rs, tree.Rank{Name: name, RankID: tree.StorageRanks[name], DefItemID: id})
	}
	rootID := fake.AddNode(tree.Storage, tree.Node{
		Name: "NHMD", FullName: "NHMD", RankID: 0, DefItemID: rs[0].DefItemID,
		TreeDefID: 1,
	})

	rc, err := ranks.Load(ctx, fake, tree.Storage, 1)
	require.NoError(t, err)
	r := resolve.New(fake, rc, nil)
	l, err := rc.ClassifyHeaders([]string{"Collection", "Room", "Box"})
	require.NoError(t, err)

	row := tree.Row{"Collection": "Botany", "Room": "R-12", "Box": "B-7"}
	res, err := r.ResolveRow(ctx, l, row)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, "B-7", res.Node.FullName)

	nodes := fake.Nodes(tree.Storage)
	require.Len(t, nodes, 4)
	assert.Equal(t, rootID, nodes[1].ParentID)
	assert.Equal(t, "Botany", nodes[1].FullName)
}
