package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/sp7tree/pkg/authority"
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/gnames/sp7tree/pkg/ranks"
	"github.com/gnames/sp7tree/pkg/sciname"
	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/gnames/sp7tree/pkg/status"
	"github.com/gnames/sp7tree/pkg/tree"
)

// authorityKind is the resource of name matches.
const authorityKind = "species"

// Engine scans a tree for duplicates and merges them.
type Engine struct {
	client  specify.Client
	matcher authority.Matcher
	parser  *sciname.Parser
	ranks   *ranks.Cache
	rep     status.Reporter

	cfg          config.DedupConfig
	kingdom      string
	collectionID int

	cases []tree.AmbivalentCase
	stats Stats
}

// New creates an Engine for the tree described by the rank cache. A nil
// reporter discards progress tokens.
func New(
	cfg *config.Config,
	client specify.Client,
	matcher authority.Matcher,
	rc *ranks.Cache,
	rep status.Reporter,
) *Engine {
	if rep == nil {
		rep = status.Discard{}
	}
	return &Engine{
		client:       client,
		matcher:      matcher,
		parser:       sciname.New(cfg.Tree.NomCode),
		ranks:        rc,
		rep:          rep,
		cfg:          cfg.Dedup,
		kingdom:      cfg.Authority.Kingdom,
		collectionID: cfg.Specify.CollectionID,
	}
}

// Cases returns ambivalent cases collected so far.
func (e *Engine) Cases() []tree.AmbivalentCase {
	return e.cases
}

// Stats returns counters of the run.
func (e *Engine) Stats() Stats {
	return e.stats
}

func (e *Engine) kind() string {
	return e.ranks.TreeType().Kind()
}

// Scan walks ranks from the deepest one up to MinRankID and handles every
// node page by page until a page comes back empty. Merged nodes leave the
// rank, so the next offset steps back by the number of merges in a page.
// Some nodes get handled twice, none are skipped.
func (e *Engine) Scan(ctx context.Context) error {
	rs := e.ranks.Ranks()
	defID := strconv.Itoa(e.ranks.TreeDefID())
	for i := len(rs) - 1; i >= 0; i-- {
		rk := rs[i]
		e.rep.Token(status.Rank(rk.RankID))
		if rk.RankID < e.cfg.MinRankID {
			continue
		}
		slog.Info("Scanning rank", "rank", rk.Name, "rank_id", rk.RankID)

		for offset := 0; ; {
			q := specify.Query{
				Limit:  e.cfg.BatchSize,
				Offset: offset,
				Filters: map[string]string{
					specify.FieldDefinition: defID,
					specify.FieldRankID:     strconv.Itoa(rk.RankID),
				},
				OrderBy: "id",
			}
			objs, err := e.client.GetObjects(ctx, e.kind(), q)
			if err != nil {
				return err
			}
			slog.Debug("Fetched batch", "rank_id", rk.RankID,
				"offset", offset, "count", len(objs))
			if len(objs) == 0 {
				break
			}
			merged := e.stats.Merged
			for _, o := range objs {
				e.HandleNode(ctx, specify.NodeFromObject(e.ranks.TreeType(), o))
			}
			offset = max(0, offset+len(objs)-(e.stats.Merged-merged))
		}
	}
	return nil
}

// CheckIDs handles nodes given by their ids before a general scan.
func (e *Engine) CheckIDs(ctx context.Context, ids []int) {
	slog.Info("Checking pre-collected node ids", "count", len(ids))
	for _, id := range ids {
		o, err := e.client.GetObject(ctx, e.kind(), id)
		if err != nil {
			e.fail(err, "id", id)
			continue
		}
		if o == nil {
			slog.Warn("Cannot retrieve node", "id", id)
			e.rep.Token(status.NotRetrieved)
			continue
		}
		e.HandleNode(ctx, specify.NodeFromObject(e.ranks.TreeType(), o))
	}
}

// HandleNode compares a node with every other node of the same full name
// and rank. It stops when the node itself has been merged away.
func (e *Engine) HandleNode(ctx context.Context, n tree.Node) {
	e.stats.Handled++
	e.rep.Token(status.Handling)
	e.rep.Token(status.Node(n.ID))
	slog.Info("Handling node", "id", n.ID, "fullname", n.FullName,
		"rank_id", n.RankID)

	q := specify.Query{
		Limit: e.cfg.CandidateLimit,
		Filters: map[string]string{
			specify.FieldDefinition: strconv.Itoa(e.ranks.TreeDefID()),
			specify.FieldRankID:     strconv.Itoa(n.RankID),
			specify.FieldFullName:   n.FullName,
		},
		OrderBy: "id",
	}
	objs, err := e.client.GetObjects(ctx, e.kind(), q)
	if err != nil {
		e.fail(err, "id", n.ID)
		return
	}
	if len(objs) < 2 {
		slog.Info("Duplicates no longer found", "id", n.ID, "fullname", n.FullName)
		e.rep.Token(status.NoLongerFound)
		return
	}

	for _, o := range objs {
		cand := specify.NodeFromObject(e.ranks.TreeType(), o)
		if cand.ID == n.ID {
			continue
		}
		p := &Pair{Original: n, Candidate: cand}
		gone, err := e.handlePair(ctx, p)
		// moves and author updates carry over to the next candidate
		n = p.Original
		if err != nil {
			e.fail(err, "id", n.ID, "candidate_id", cand.ID)
			continue
		}
		if gone {
			break
		}
	}
}

// handlePair processes one duplicate pair. It reports if the original
// does not exist anymore.
func (e *Engine) handlePair(ctx context.Context, p *Pair) (bool, error) {
	if p.Original.ParentID != p.Candidate.ParentID {
		p.Conflict = ParentMismatch
		e.addParentCases(ctx, p)
		e.rep.Token(status.ParentConflict)

		ok1 := e.reconcileParent(ctx, &p.Original)
		ok2 := e.reconcileParent(ctx, &p.Candidate)
		if !ok1 || !ok2 || p.Original.ParentID != p.Candidate.ParentID {
			return false, nil
		}
		p.Conflict = NoConflict
	}
	return e.mergeDuplicate(ctx, p)
}

// mergeDuplicate merges a pair sharing the same parent once authorship
// conflicts are resolved.
func (e *Engine) mergeDuplicate(ctx context.Context, p *Pair) (bool, error) {
	e.stats.Duplicates++
	e.rep.Token(status.Duplicate)
	slog.Info("Duplicate detected", "original", p.Original.ID,
		"duplicate", p.Candidate.ID, "fullname", p.Original.FullName)

	if !e.resolveAuthors(ctx, p) {
		p.Conflict = AuthorMismatch
		e.addCase(p.Original, p.Candidate, authorRemark(p.Original, p.Candidate))
		e.addCase(p.Candidate, p.Original, authorRemark(p.Candidate, p.Original))
		e.rep.Token(status.AuthorConflict)
		return false, nil
	}

	oc, err := e.childCount(ctx, p.Original.ID)
	if err != nil {
		return false, err
	}
	cc, err := e.childCount(ctx, p.Candidate.ID)
	if err != nil {
		return false, err
	}
	d := Weigh(
		Candidate{ID: p.Original.ID, Author: p.Original.Author, Children: oc},
		Candidate{ID: p.Candidate.ID, Author: p.Candidate.Author, Children: cc},
	)
	slog.Debug("Weighed duplicates", "original_weight", d.OriginalWeight,
		"candidate_weight", d.CandidateWeight, "target", d.TargetID)

	e.rep.Token(status.Resolved)
	if err = e.merge(ctx, d.SourceID, d.TargetID); err != nil {
		return false, err
	}
	return d.SourceID == p.Original.ID, nil
}

// resolveAuthors reports if authorship of a pair allows a merge. Differing
// authors need a confirmation by the authority. When both authors are
// blank the authority is asked for one, and the merge may be forced.
func (e *Engine) resolveAuthors(ctx context.Context, p *Pair) bool {
	a, b := p.Original.Author, p.Candidate.Author
	switch {
	case a == "" && b == "":
		slog.Info("Author info is missing", "fullname", p.Original.FullName)
		if e.resolveByAuthority(ctx, p) {
			return true
		}
		if config.Bool(e.cfg.ForceMergeBlankAuthors) {
			e.rep.Token(status.ForceMerge)
			return true
		}
		return false
	case a == "" || b == "":
		return true
	case e.parser.SameAuthor(a, b):
		return true
	}
	slog.Info("Authors differ, asking authority", "original", a, "duplicate", b)
	return e.resolveByAuthority(ctx, p)
}

// resolveByAuthority sets the authorship of both nodes from an unambiguous
// authority match.
func (e *Engine) resolveByAuthority(ctx context.Context, p *Pair) bool {
	ms, err := e.matcher.MatchName(ctx, authorityKind, p.Original.FullName,
		e.collectionID, e.kingdom)
	if err != nil {
		slog.Warn("Name authority failed", "fullname", p.Original.FullName,
			"error", err)
		return false
	}
	m, ok := authority.Converge(ms)
	if !ok || m.Authorship == "" {
		slog.Info("No unambiguous authority match", "fullname", p.Original.FullName,
			"matches", len(ms))
		return false
	}

	for _, n := range []*tree.Node{&p.Original, &p.Candidate} {
		if n.Author == m.Authorship {
			continue
		}
		if err = e.updateAuthor(ctx, n, m.Authorship); err != nil {
			e.fail(err, "id", n.ID)
			return false
		}
	}
	return true
}

func (e *Engine) updateAuthor(ctx context.Context, n *tree.Node, author string) error {
	o, err := e.client.GetObject(ctx, e.kind(), n.ID)
	if err != nil {
		return err
	}
	if o == nil {
		return fmt.Errorf("node %d not found", n.ID)
	}
	o[specify.FieldAuthor] = author
	res, err := e.client.UpdateObject(ctx, e.kind(), n.ID, o)
	if err != nil {
		return err
	}
	slog.Info("Updated author", "id", n.ID, "from", n.Author, "to", author)
	n.Author = author
	n.Version = res.Version()
	return nil
}

// reconcileParent moves a node under the parent given by the authority.
// It succeeds when the node was moved or already sits under that parent.
func (e *Engine) reconcileParent(ctx context.Context, n *tree.Node) bool {
	ms, err := e.matcher.MatchName(ctx, authorityKind, n.FullName,
		e.collectionID, e.kingdom)
	if err != nil {
		slog.Warn("Name authority failed", "fullname", n.FullName, "error", err)
		return false
	}
	if len(ms) == 0 {
		slog.Info("No authority match for parent", "fullname", n.FullName)
		return false
	}
	name := ms[0].ParentName()
	if name == "" {
		slog.Error("Cannot get parent from authority", "fullname", n.FullName,
			"rank", ms[0].Rank)
		e.rep.Token(status.Error)
		return false
	}

	cur, err := e.client.GetObject(ctx, e.kind(), n.ParentID)
	if err != nil || cur == nil {
		slog.Info("Cannot retrieve current parent", "id", n.ParentID)
		return false
	}
	if e.parser.Canonical(cur.String(specify.FieldFullName)) == name {
		slog.Info("Parent already certified", "id", n.ID, "parent", name)
		return true
	}

	q := specify.Query{
		Limit: 10,
		Filters: map[string]string{
			specify.FieldFullName:   name,
			specify.FieldDefinition: strconv.Itoa(e.ranks.TreeDefID()),
		},
		OrderBy: "id",
	}
	objs, err := e.client.GetObjects(ctx, e.kind(), q)
	if err != nil {
		e.fail(err, "id", n.ID)
		return false
	}
	if len(objs) == 0 {
		slog.Info("Certified parent is not in the tree", "parent", name)
		return false
	}

	e.rep.Token(status.Resolved)
	target := objs[0].ID()
	if err = e.move(ctx, n.ID, target); err != nil {
		e.fail(err, "id", n.ID)
		return false
	}
	n.ParentID = target
	return true
}

func (e *Engine) merge(ctx context.Context, sourceID, targetID int) error {
	e.rep.Token(status.Merge(sourceID, targetID))
	start := time.Now()
	st, err := e.client.MergeNodes(ctx, e.kind(), sourceID, targetID)
	dur := time.Since(start)
	e.rep.Token(status.Duration(dur))
	switch {
	case err != nil:
		return MergeError(sourceID, targetID, st, err)
	case specify.MergeSucceeded(st):
		e.stats.Merged++
		slog.Info("Merged", "source", sourceID, "target", targetID,
			"duration", dur)
	case st == specify.StatusAlreadyMerged:
		slog.Info("Node already merged", "source", sourceID, "target", targetID)
	default:
		return MergeError(sourceID, targetID, st, nil)
	}
	return nil
}

func (e *Engine) move(ctx context.Context, nodeID, parentID int) error {
	e.rep.Token(status.Move(nodeID, parentID))
	start := time.Now()
	st, err := e.client.MoveNode(ctx, e.kind(), nodeID, parentID)
	dur := time.Since(start)
	e.rep.Token(status.Duration(dur))
	if err != nil || st != specify.StatusOK {
		return MoveError(nodeID, parentID, st, err)
	}
	e.stats.Moved++
	slog.Info("Moved", "id", nodeID, "parent", parentID, "duration", dur)
	return nil
}

func (e *Engine) childCount(ctx context.Context, id int) (int, error) {
	q := specify.Query{
		Limit:   e.cfg.CandidateLimit,
		Filters: map[string]string{specify.FieldParent: strconv.Itoa(id)},
	}
	objs, err := e.client.GetObjects(ctx, e.kind(), q)
	if err != nil {
		return 0, err
	}
	return len(objs), nil
}

func (e *Engine) parentName(ctx context.Context, id int) string {
	o, err := e.client.GetObject(ctx, e.kind(), id)
	if err != nil || o == nil {
		return ""
	}
	return o.String(specify.FieldFullName)
}

func (e *Engine) addParentCases(ctx context.Context, p *Pair) {
	on := e.parentName(ctx, p.Original.ParentID)
	cn := e.parentName(ctx, p.Candidate.ParentID)
	e.addCase(p.Original, p.Candidate,
		parentRemark(on, p.Original.ParentID, cn, p.Candidate.ParentID))
	e.addCase(p.Candidate, p.Original,
		parentRemark(cn, p.Candidate.ParentID, on, p.Original.ParentID))
}

func (e *Engine) addCase(n, dup tree.Node, remark string) {
	slog.Info("Ambivalent case", "id", n.ID, "duplicate_of", dup.ID,
		"remark", remark)
	e.stats.Ambivalent++
	e.cases = append(e.cases, tree.AmbivalentCase{
		Node:          n,
		Remarks:       joinRemarks(n.Remarks, remark),
		DuplicateOfID: dup.ID,
	})
}

func (e *Engine) fail(err error, args ...any) {
	e.stats.Errors++
	e.rep.Token(status.Error)
	slog.Error("Duplicate handling failed", append(args, "error", err)...)
}

// Remarks are written from the point of view of the node, so the same
// conflict found while handling either node produces equal cases.
func parentRemark(own string, ownID int, other string, otherID int) string {
	return fmt.Sprintf("Ambivalence on parents: %s [%d] vs %s [%d]",
		own, ownID, other, otherID)
}

func authorRemark(n, other tree.Node) string {
	return fmt.Sprintf("Ambivalence on authors: %s vs %s", n.Author, other.Author)
}

func joinRemarks(rs ...string) string {
	var res []string
	for _, r := range rs {
		if r = strings.TrimSpace(r); r != "" {
			res = append(res, r)
		}
	}
	return strings.Join(res, " | ")
}
