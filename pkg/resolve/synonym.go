package resolve

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/gnames/sp7tree/pkg/tree"
)

const relinkBatch = 100

type acceptedPart struct {
	rank tree.Rank
	name string
}

// resolveSynonym resolves the accepted name of a synonym row first and then
// finds or creates the synonym linked to it. The synonym is never persisted
// before its accepted node has an id.
func (r *Resolver) resolveSynonym(
	ctx context.Context,
	st *state,
	idx int,
	rank tree.Rank,
	parentID int,
) (*tree.Node, error) {
	syn := r.newNode(st, idx, rank, parentID)

	acc, err := r.resolveAccepted(ctx, st, syn)
	if err != nil {
		return nil, err
	}
	st.res.Synonym = true

	syn.IsAccepted = false
	syn.AcceptedID = acc.ID

	// an accepted node with the same signature is turned into the synonym
	found, err := r.findOne(ctx, r.signature(syn, true))
	if err != nil {
		return nil, err
	}
	if found == nil {
		return r.create(ctx, st, syn)
	}
	if found.ID == acc.ID {
		return nil, SelfSynonymError(syn.FullName, syn.Author)
	}

	st.res.Found++
	if !found.IsAccepted && found.AcceptedID == acc.ID {
		return found, nil
	}

	wasAccepted := found.IsAccepted
	found.IsAccepted = false
	found.AcceptedID = acc.ID
	tt := r.ranks.TreeType()
	obj, err := r.client.UpdateObject(ctx, tt.Kind(), found.ID,
		specify.NodeToObject(tt, *found))
	if err != nil {
		return nil, err
	}
	res := specify.NodeFromObject(tt, obj)
	slog.Info("Linked synonym", "id", res.ID, "fullname", res.FullName,
		"accepted_id", acc.ID)

	if wasAccepted {
		if err = r.relinkSynonyms(ctx, res.ID, acc.ID); err != nil {
			return nil, err
		}
	}
	return &res, nil
}

// relinkSynonyms points synonyms of a node that lost its accepted status to
// the new accepted node, so no synonym refers to another synonym.
func (r *Resolver) relinkSynonyms(ctx context.Context, fromID, toID int) error {
	tt := r.ranks.TreeType()
	q := specify.Query{
		Limit:   relinkBatch,
		Filters: map[string]string{specify.FieldAcceptedTaxon: strconv.Itoa(fromID)},
		OrderBy: "id",
	}
	for {
		objs, err := r.client.GetObjects(ctx, tt.Kind(), q)
		if err != nil {
			return err
		}
		for _, o := range objs {
			n := specify.NodeFromObject(tt, o)
			n.AcceptedID = toID
			_, err = r.client.UpdateObject(ctx, tt.Kind(), n.ID,
				specify.NodeToObject(tt, n))
			if err != nil {
				return err
			}
			slog.Info("Relinked synonym", "id", n.ID, "fullname", n.FullName,
				"from_id", fromID, "accepted_id", toID)
		}
		// updated synonyms no longer match the filter
		if len(objs) < q.Limit {
			return nil
		}
	}
}

// resolveAccepted finds or creates the accepted node described by
// Accepted<Rank> columns together with its parent chain.
func (r *Resolver) resolveAccepted(
	ctx context.Context,
	st *state,
	syn tree.Node,
) (*tree.Node, error) {
	parts, author, err := r.acceptedParts(st.row, syn.FullName)
	if err != nil {
		return nil, err
	}

	frags := make([]tree.Fragment, len(parts))
	for i, p := range parts {
		frags[i] = tree.Fragment{RankID: p.rank.RankID, Name: p.name}
	}
	fullName := tree.FullName(frags)
	if fullName == syn.FullName && author == syn.Author {
		return nil, SelfSynonymError(syn.FullName, syn.Author)
	}

	parentID := r.synonymAnchor(st, syn)
	for i, p := range parts[:len(parts)-1] {
		n := tree.Node{
			Name:       p.name,
			FullName:   tree.FullName(frags[:i+1]),
			IsAccepted: true,
		}
		r.place(&n, p.rank, parentID)
		var node *tree.Node
		if i == 0 {
			node, err = r.getOrCreateTreeWide(ctx, st, n)
		} else {
			node, err = r.getOrCreate(ctx, st, n)
		}
		if err != nil {
			return nil, err
		}
		parentID = node.ID
	}

	last := parts[len(parts)-1]
	acc := tree.Node{
		Name:       last.name,
		FullName:   fullName,
		Author:     author,
		IsAccepted: true,
	}
	r.place(&acc, last.rank, parentID)

	filters := r.signature(acc, true)
	filters[specify.FieldName] = acc.Name
	found, err := r.findOne(ctx, filters)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return r.create(ctx, st, acc)
	}
	st.res.Found++
	if found.IsAccepted {
		return found, nil
	}

	// the accepted name is itself a synonym, its accepted node is used
	if found.AcceptedID == 0 {
		return nil, SynonymChainError(syn.FullName, found.FullName)
	}
	obj, err := r.client.GetObject(ctx, r.ranks.TreeType().Kind(), found.AcceptedID)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, SynonymChainError(syn.FullName, found.FullName)
	}
	res := specify.NodeFromObject(r.ranks.TreeType(), obj)
	if !res.IsAccepted {
		return nil, SynonymChainError(syn.FullName, found.FullName)
	}
	slog.Info("Accepted name is a synonym", "fullname", found.FullName,
		"accepted_id", res.ID, "accepted", res.FullName)
	return &res, nil
}

// acceptedParts collects rank names of the accepted name from Genus down to
// the most specific non-blank Accepted<Rank> column. A blank AcceptedGenus
// is replaced by the Genus of the row.
func (r *Resolver) acceptedParts(
	row tree.Row,
	synName string,
) ([]acceptedPart, string, error) {
	var accRank string
	for _, name := range tree.AcceptedScan {
		if _, ok := row.Accepted(name); ok {
			accRank = name
			break
		}
	}
	if accRank == "" {
		return nil, "", NoAcceptedNameError(synName)
	}
	target, err := r.ranks.Lookup(accRank)
	if err != nil {
		return nil, "", err
	}

	var res []acceptedPart
	for _, rk := range r.ranks.Ranks() {
		if rk.RankID < tree.GenusID || rk.RankID > target.RankID {
			continue
		}
		v, ok := row.Accepted(rk.Name)
		if !ok && rk.RankID == tree.GenusID {
			v, ok = row.Value(rk.Name)
		}
		if !ok {
			continue
		}
		res = append(res, acceptedPart{rank: rk, name: v})
	}
	if len(res) < 2 || res[0].rank.RankID != tree.GenusID {
		return nil, "", NoAcceptedNameError(synName)
	}
	return res, row.AcceptedAuthor(accRank), nil
}

// synonymAnchor returns the node above the genus of the synonym path. The
// accepted chain is attached there when its genus does not exist yet.
func (r *Resolver) synonymAnchor(st *state, syn tree.Node) int {
	for i := range st.cols {
		n, ok := st.path[i]
		if !ok {
			continue
		}
		if n.RankID >= tree.GenusID {
			return n.ParentID
		}
	}
	return syn.ParentID
}

// getOrCreateTreeWide looks up a node by full name and rank regardless of
// its parent. Accepted genera often sit in another family than genera of
// their synonyms.
func (r *Resolver) getOrCreateTreeWide(
	ctx context.Context,
	st *state,
	n tree.Node,
) (*tree.Node, error) {
	filters := map[string]string{
		specify.FieldFullName:   n.FullName,
		specify.FieldRankID:     strconv.Itoa(n.RankID),
		specify.FieldDefinition: strconv.Itoa(n.TreeDefID),
	}
	found, err := r.findOne(ctx, filters)
	if err != nil {
		return nil, err
	}
	if found != nil {
		st.res.Found++
		return found, nil
	}
	return r.create(ctx, st, n)
}
