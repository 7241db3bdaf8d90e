package resolve

import (
	"github.com/gnames/sp7tree/pkg/tree"
)

// NodeFactory builds a new node for a rank column of a row. Resolver fills
// in parent, rank and tree definition afterwards.
type NodeFactory interface {
	// NewNode gets the column, its rank, the row, fragments of the path
	// from the first non-blank column down to this one, and a flag that is
	// true for the deepest non-blank column of the row.
	NewNode(
		col string,
		rank tree.Rank,
		row tree.Row,
		path []tree.Fragment,
		deepest bool,
	) tree.Node
}

// FactoryFor returns the node factory of a tree type.
func FactoryFor(tt tree.Type) NodeFactory {
	if tt == tree.Taxon {
		return TaxonFactory{}
	}
	return PlainFactory{}
}

// TaxonFactory builds taxa. Full names follow taxonomic templates, authors
// and external keys come from decorated columns.
type TaxonFactory struct{}

func (TaxonFactory) NewNode(
	col string,
	_ tree.Rank,
	row tree.Row,
	path []tree.Fragment,
	deepest bool,
) tree.Node {
	name, _ := row.Value(col)
	key, src := row.TaxonKey(col)
	return tree.Node{
		Name:              name,
		FullName:          tree.FullName(path),
		Author:            row.Author(col),
		IsAccepted:        true,
		IsHybrid:          deepest && row.IsHybrid(),
		ExternalKey:       key,
		ExternalKeySource: src,
	}
}

// PlainFactory builds storage and geography nodes, their full name is
// the name itself.
type PlainFactory struct{}

func (PlainFactory) NewNode(
	col string,
	_ tree.Rank,
	row tree.Row,
	_ []tree.Fragment,
	_ bool,
) tree.Node {
	name, _ := row.Value(col)
	return tree.Node{
		Name:       name,
		FullName:   name,
		IsAccepted: true,
	}
}
