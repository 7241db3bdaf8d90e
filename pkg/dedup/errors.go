package dedup

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
)

func MergeError(sourceID, targetID, status int, err error) error {
	msg := "Cannot merge node <em>%d</em> into <em>%d</em> (status %d)"
	vars := []any{sourceID, targetID, status}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	if err == nil {
		err = fmt.Errorf("unexpected status %d", status)
	}
	return &gn.Error{
		Code: errcode.DedupMergeError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: merge %d->%d: %w", fn, sourceID, targetID, err),
	}
}

func MoveError(nodeID, parentID, status int, err error) error {
	msg := "Cannot move node <em>%d</em> under <em>%d</em> (status %d)"
	vars := []any{nodeID, parentID, status}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	if err == nil {
		err = fmt.Errorf("unexpected status %d", status)
	}
	return &gn.Error{
		Code: errcode.DedupMoveError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: move %d=>%d: %w", fn, nodeID, parentID, err),
	}
}

func IDFileError(line int, value string) error {
	msg := "Line %d of id file is not a node id: <em>%s</em>"
	vars := []any{line, value}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DedupIDFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: bad id %q on line %d", fn, value, line),
	}
}

func PairHeaderError(headers []string) error {
	msg := "Merge pairs need headers <em>from_id,to_id</em>, got <em>%s</em>"
	vars := []any{strings.Join(headers, ",")}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaHeaderError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: bad headers %v", fn, headers),
	}
}

func PairRowError(from, to string, err error) error {
	msg := "Invalid merge pair <em>%s -> %s</em>"
	vars := []any{from, to}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DedupPairRowError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %w", fn, err),
	}
}
