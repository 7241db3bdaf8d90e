// Package resolve finds or creates chains of tree nodes described by rows of
// input data. Every node is looked up before it is created, so running the
// same row twice does not create new nodes.
package resolve

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gnames/sp7tree/pkg/ranks"
	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/gnames/sp7tree/pkg/tree"
)

// Resolver walks rank columns of rows and resolves them against a remote
// tree.
type Resolver struct {
	client  specify.Client
	ranks   *ranks.Cache
	factory NodeFactory
}

// New creates a Resolver. Nil factory means the default factory of the
// tree type of the cache.
func New(client specify.Client, rc *ranks.Cache, f NodeFactory) *Resolver {
	if f == nil {
		f = FactoryFor(rc.TreeType())
	}
	return &Resolver{client: client, ranks: rc, factory: f}
}

// Result describes the outcome of one row.
type Result struct {
	// Node is the deepest node of the row.
	Node *tree.Node

	// Created and Found count nodes created and reused.
	Created int
	Found   int

	// Synonym is true when the deepest node was linked as a synonym.
	Synonym bool
}

type state struct {
	cols    []string
	row     tree.Row
	synonym bool
	deepest int
	path    map[int]*tree.Node
	last    *tree.Node
	res     Result
}

func (r *Resolver) newState(cols []string, row tree.Row) (*state, error) {
	accepted, err := row.IsAccepted()
	if err != nil {
		return nil, err
	}
	st := &state{
		cols:    cols,
		row:     row,
		synonym: !accepted,
		deepest: -1,
		path:    make(map[int]*tree.Node),
	}
	for i, c := range cols {
		if !row.Blank(c) {
			st.deepest = i
		}
	}
	return st, nil
}

// ResolvePath resolves rank columns of a row starting at index start under
// a known parent. It returns the deepest node, or nil when there is nothing
// to resolve. When trailing columns are blank, the last resolved parent is
// returned.
func (r *Resolver) ResolvePath(
	ctx context.Context,
	cols []string,
	row tree.Row,
	parentID int,
	start int,
) (*tree.Node, error) {
	st, err := r.newState(cols, row)
	if err != nil {
		return nil, err
	}
	return r.resolvePath(ctx, st, parentID, start)
}

// ResolveRow resolves all rank columns of a row. The first non-blank column
// is anchored by its full name anywhere in the tree, or created under the
// root of the tree.
func (r *Resolver) ResolveRow(
	ctx context.Context,
	layout ranks.Layout,
	row tree.Row,
) (Result, error) {
	st, err := r.newState(layout.RankColumns, row)
	if err != nil {
		return Result{}, err
	}
	if st.deepest < 0 {
		return Result{}, AnchorError(layout.RankColumns)
	}

	first := 0
	for first < len(st.cols) && row.Blank(st.cols[first]) {
		first++
	}

	anchor, err := r.anchor(ctx, st, first)
	if err != nil {
		return Result{}, err
	}
	st.path[first] = anchor
	st.last = anchor

	node, err := r.resolvePath(ctx, st, anchor.ID, first+1)
	if err != nil {
		return st.res, err
	}
	if node == nil {
		node = anchor
	}
	st.res.Node = node
	return st.res, nil
}

func (r *Resolver) resolvePath(
	ctx context.Context,
	st *state,
	parentID int,
	idx int,
) (*tree.Node, error) {
	if idx >= len(st.cols) {
		return nil, nil
	}

	col := st.cols[idx]
	if st.row.Blank(col) {
		res, err := r.resolvePath(ctx, st, parentID, idx+1)
		if err != nil {
			return nil, err
		}
		if res == nil && idx == len(st.cols)-1 {
			if st.last != nil && st.last.ID == parentID {
				return st.last, nil
			}
			return &tree.Node{ID: parentID}, nil
		}
		return res, nil
	}

	rank, err := r.ranks.Lookup(col)
	if err != nil {
		return nil, err
	}

	var node *tree.Node
	if st.synonym && idx == st.deepest && rank.RankID >= tree.SpeciesID {
		node, err = r.resolveSynonym(ctx, st, idx, rank, parentID)
	} else {
		node, err = r.getOrCreate(ctx, st, r.newNode(st, idx, rank, parentID))
	}
	if err != nil {
		return nil, err
	}
	st.path[idx] = node
	st.last = node

	res, err := r.resolvePath(ctx, st, node.ID, idx+1)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return node, nil
	}
	return res, nil
}

// anchor finds the node of the first non-blank column by full name and rank
// anywhere in the tree. A missing node is created under the tree root.
func (r *Resolver) anchor(
	ctx context.Context,
	st *state,
	idx int,
) (*tree.Node, error) {
	rank, err := r.ranks.Lookup(st.cols[idx])
	if err != nil {
		return nil, err
	}
	n := r.newNode(st, idx, rank, 0)
	found, err := r.findOne(ctx, r.signature(n, false))
	if err != nil {
		return nil, err
	}
	if found != nil {
		st.res.Found++
		return found, nil
	}

	rootID, err := r.rootID(ctx)
	if err != nil {
		return nil, err
	}
	if rootID == 0 {
		return nil, TreeRootNotFoundError(r.ranks.TreeType(), r.ranks.TreeDefID())
	}
	n.ParentID = rootID
	return r.create(ctx, st, n)
}

func (r *Resolver) rootID(ctx context.Context) (int, error) {
	root := r.ranks.Root()
	q := specify.Query{
		Limit: 1,
		Filters: map[string]string{
			specify.FieldRankID:     strconv.Itoa(root.RankID),
			specify.FieldDefinition: strconv.Itoa(r.ranks.TreeDefID()),
		},
		OrderBy: "id",
	}
	objs, err := r.client.GetObjects(ctx, r.ranks.TreeType().Kind(), q)
	if err != nil {
		return 0, err
	}
	if len(objs) == 0 {
		return 0, nil
	}
	return objs[0].ID(), nil
}

// newNode builds the node of a column with path fragments taken from the
// row.
func (r *Resolver) newNode(
	st *state,
	idx int,
	rank tree.Rank,
	parentID int,
) tree.Node {
	var path []tree.Fragment
	for i := 0; i <= idx; i++ {
		v, ok := st.row.Value(st.cols[i])
		if !ok {
			continue
		}
		rk, err := r.ranks.Lookup(st.cols[i])
		if err != nil {
			continue
		}
		path = append(path, tree.Fragment{RankID: rk.RankID, Name: v})
	}
	n := r.factory.NewNode(st.cols[idx], rank, st.row, path, idx == st.deepest)
	r.place(&n, rank, parentID)
	return n
}

func (r *Resolver) place(n *tree.Node, rank tree.Rank, parentID int) {
	n.ParentID = parentID
	n.RankID = rank.RankID
	n.DefItemID = rank.DefItemID
	n.TreeDefID = r.ranks.TreeDefID()
}

// signature returns filters that identify an existing node. Parent is
// included only when withParent is true.
func (r *Resolver) signature(n tree.Node, withParent bool) map[string]string {
	res := map[string]string{
		specify.FieldFullName:   n.FullName,
		specify.FieldRankID:     strconv.Itoa(n.RankID),
		specify.FieldDefinition: strconv.Itoa(n.TreeDefID),
	}
	if withParent && n.ParentID > 0 {
		res[specify.FieldParent] = strconv.Itoa(n.ParentID)
	}
	if n.Author != "" {
		res[specify.FieldAuthor] = n.Author
	}
	return res
}

// findOne returns the first node that matches filters. When dirty data
// gives several matches, the first one wins.
func (r *Resolver) findOne(
	ctx context.Context,
	filters map[string]string,
) (*tree.Node, error) {
	q := specify.Query{Limit: 1, Filters: filters, OrderBy: "id"}
	objs, err := r.client.GetObjects(ctx, r.ranks.TreeType().Kind(), q)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, nil
	}
	n := specify.NodeFromObject(r.ranks.TreeType(), objs[0])
	return &n, nil
}

func (r *Resolver) getOrCreate(
	ctx context.Context,
	st *state,
	n tree.Node,
) (*tree.Node, error) {
	found, err := r.findOne(ctx, r.signature(n, true))
	if err != nil {
		return nil, err
	}
	if found != nil {
		st.res.Found++
		return found, nil
	}
	return r.create(ctx, st, n)
}

func (r *Resolver) create(
	ctx context.Context,
	st *state,
	n tree.Node,
) (*tree.Node, error) {
	tt := r.ranks.TreeType()
	obj, err := r.client.CreateObject(ctx, tt.Kind(), specify.NodeToObject(tt, n))
	if err != nil {
		return nil, NodeCreateError(n.FullName, err)
	}
	res := specify.NodeFromObject(tt, obj)
	st.res.Created++
	slog.Debug("Created node",
		"kind", tt.Kind(), "id", res.ID, "fullname", res.FullName,
		"parent", res.ParentID)
	return &res, nil
}
