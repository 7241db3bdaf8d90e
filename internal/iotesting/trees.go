package iotesting

import (
	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/gnames/sp7tree/pkg/tree"
)

// Remote ids of the seeded taxon tree.
const (
	TaxonTreeDefID = 1
	CollectionID   = 4
	DisciplineID   = 3
)

// TaxonRanks are rank definitions of the seeded taxon tree.
var TaxonRanks = []tree.Rank{
	{Name: "Life", RankID: tree.LifeID},
	{Name: "Kingdom", RankID: tree.KingdomID},
	{Name: "Phylum", RankID: tree.PhylumID},
	{Name: "Class", RankID: tree.ClassID},
	{Name: "Order", RankID: tree.OrderID},
	{Name: "Family", RankID: tree.FamilyID},
	{Name: "Genus", RankID: tree.GenusID},
	{Name: "Subgenus", RankID: tree.SubgenusID},
	{Name: "Species", RankID: tree.SpeciesID},
	{Name: "Subspecies", RankID: tree.SubspeciesID},
	{Name: "Variety", RankID: tree.VarietyID},
	{Name: "Subvariety", RankID: tree.SubvarietyID},
	{Name: "Forma", RankID: tree.FormaID},
	{Name: "Subforma", RankID: tree.SubformaID},
}

// TaxonTree is a fake with a collection, its discipline, a taxon tree
// definition with all TaxonRanks and a root "Life" node.
type TaxonTree struct {
	*Specify

	// Ranks by name, with remote DefItemID filled in.
	Ranks map[string]tree.Rank

	RootID int
}

// NewTaxonTree seeds a fake Specify with an empty taxon tree.
func NewTaxonTree() *TaxonTree {
	s := NewSpecify()
	res := &TaxonTree{Specify: s, Ranks: make(map[string]tree.Rank)}

	s.Add("discipline", specify.Object{
		"id":           DisciplineID,
		"taxontreedef": specify.URI(tree.Taxon.DefKind(), TaxonTreeDefID),
	})
	s.Add("collection", specify.Object{
		"id":             CollectionID,
		"collectionname": "Herbarium",
		"discipline":     specify.URI("discipline", DisciplineID),
	})
	s.Add(tree.Taxon.DefKind(), specify.Object{"id": TaxonTreeDefID})

	var parent int
	for _, r := range TaxonRanks {
		obj := specify.Object{
			specify.FieldName:   r.Name,
			specify.FieldRankID: r.RankID,
			"treedef":           specify.URI(tree.Taxon.DefKind(), TaxonTreeDefID),
		}
		if parent > 0 {
			obj[specify.FieldParent] = specify.URI(tree.Taxon.DefItemKind(), parent)
		}
		id := s.Add(tree.Taxon.DefItemKind(), obj)
		r.DefItemID = id
		r.ParentDefItemID = parent
		res.Ranks[r.Name] = r
		parent = id
	}

	life := res.Ranks["Life"]
	res.RootID = s.AddNode(tree.Taxon, tree.Node{
		Name:       "Life",
		FullName:   "Life",
		RankID:     life.RankID,
		DefItemID:  life.DefItemID,
		TreeDefID:  TaxonTreeDefID,
		IsAccepted: true,
	})
	return res
}

// AddTaxon stores a taxon of a rank under a parent and returns its id.
func (t *TaxonTree) AddTaxon(rank, name, fullName, author string, parentID int) int {
	r := t.Ranks[rank]
	return t.AddNode(tree.Taxon, tree.Node{
		Name:       name,
		FullName:   fullName,
		Author:     author,
		ParentID:   parentID,
		RankID:     r.RankID,
		DefItemID:  r.DefItemID,
		TreeDefID:  TaxonTreeDefID,
		IsAccepted: true,
	})
}

// FindTaxa returns taxa with a full name.
func (t *TaxonTree) FindTaxa(fullName string) []tree.Node {
	var res []tree.Node
	for _, n := range t.Nodes(tree.Taxon) {
		if n.FullName == fullName {
			res = append(res, n)
		}
	}
	return res
}
