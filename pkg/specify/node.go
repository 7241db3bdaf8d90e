package specify

import (
	"github.com/gnames/sp7tree/pkg/tree"
)

// Field names of tree node objects.
const (
	FieldName           = "name"
	FieldFullName       = "fullname"
	FieldAuthor         = "author"
	FieldRankID         = "rankid"
	FieldParent         = "parent"
	FieldDefinition     = "definition"
	FieldDefinitionItem = "definitionitem"
	FieldIsAccepted     = "isaccepted"
	FieldAcceptedTaxon  = "acceptedtaxon"
	FieldIsHybrid       = "ishybrid"
	FieldExternalKey    = "taxonomicserialnumber"
	FieldKeySource      = "source"
	FieldVersion        = "version"
	FieldRemarks        = "remarks"
)

// NodeFromObject converts a remote node object of the given tree type.
func NodeFromObject(tt tree.Type, o Object) tree.Node {
	n := tree.Node{
		ID:         o.ID(),
		Name:       o.String(FieldName),
		FullName:   o.String(FieldFullName),
		ParentID:   o.Ref(FieldParent),
		RankID:     o.Int(FieldRankID),
		DefItemID:  o.Ref(FieldDefinitionItem),
		TreeDefID:  o.Ref(FieldDefinition),
		IsAccepted: true,
		Version:    o.Version(),
		Remarks:    o.String(FieldRemarks),
	}
	if tt != tree.Taxon {
		return n
	}

	n.Author = o.String(FieldAuthor)
	if v, ok := o[FieldIsAccepted].(bool); ok {
		n.IsAccepted = v
	}
	n.AcceptedID = o.Ref(FieldAcceptedTaxon)
	n.IsHybrid = o.Bool(FieldIsHybrid)
	n.ExternalKey = o.String(FieldExternalKey)
	n.ExternalKeySource = o.String(FieldKeySource)
	return n
}

// NodeToObject converts a node to the representation accepted by create and
// update calls.
func NodeToObject(tt tree.Type, n tree.Node) Object {
	o := Object{
		FieldName:           n.Name,
		FieldFullName:       n.FullName,
		FieldRankID:         n.RankID,
		FieldDefinition:     URI(tt.DefKind(), n.TreeDefID),
		FieldDefinitionItem: URI(tt.DefItemKind(), n.DefItemID),
	}
	if n.ParentID > 0 {
		o[FieldParent] = URI(tt.Kind(), n.ParentID)
	}
	if n.ID > 0 {
		o["id"] = n.ID
		o[FieldVersion] = n.Version
	}
	if n.Remarks != "" {
		o[FieldRemarks] = n.Remarks
	}
	if tt != tree.Taxon {
		return o
	}

	o[FieldIsAccepted] = n.IsAccepted
	o[FieldIsHybrid] = n.IsHybrid
	if n.Author != "" {
		o[FieldAuthor] = n.Author
	}
	if n.AcceptedID > 0 {
		o[FieldAcceptedTaxon] = URI(tt.Kind(), n.AcceptedID)
	}
	if n.ExternalKey != "" {
		o[FieldExternalKey] = n.ExternalKey
		o[FieldKeySource] = n.ExternalKeySource
	}
	return o
}

// RankFromObject converts a tree definition item.
func RankFromObject(o Object) tree.Rank {
	return tree.Rank{
		Name:            o.String(FieldName),
		RankID:          o.Int(FieldRankID),
		DefItemID:       o.ID(),
		ParentDefItemID: o.Ref(FieldParent),
	}
}
