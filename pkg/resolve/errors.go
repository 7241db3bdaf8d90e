package resolve

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
	"github.com/gnames/sp7tree/pkg/tree"
)

func AnchorError(cols []string) error {
	msg := "Row has no values in rank columns <em>%s</em>"
	vars := []any{strings.Join(cols, ", ")}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RowAnchorError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: empty row", fn),
	}
}

func TreeRootNotFoundError(tt tree.Type, treeDefID int) error {
	msg := "Cannot find root node of <em>%s</em> tree %d"
	vars := []any{tt, treeDefID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TreeRootNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: no root in %s tree %d", fn, tt, treeDefID),
	}
}

func NoAcceptedNameError(synonym string) error {
	msg := "Synonym <em>%s</em> has no accepted name"
	vars := []any{synonym}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RowNoAcceptedNameError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: no accepted name for %q", fn, synonym),
	}
}

func SelfSynonymError(name, author string) error {
	msg := "Synonym <em>%s %s</em> points to itself"
	vars := []any{name, author}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RowSelfSynonymError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: self-referential synonym %q", fn, name),
	}
}

func SynonymChainError(synonym, accepted string) error {
	msg := "Accepted name <em>%s</em> of <em>%s</em> is a synonym without an accepted node"
	vars := []any{accepted, synonym}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RowSynonymChainError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %q is not accepted", fn, accepted),
	}
}

func NodeCreateError(fullName string, err error) error {
	msg := "Cannot create node <em>%s</em>"
	vars := []any{fullName}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RowNodeCreateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: create %q: %w", fn, fullName, err),
	}
}
