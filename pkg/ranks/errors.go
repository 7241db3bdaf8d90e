package ranks

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
	"github.com/gnames/sp7tree/pkg/tree"
)

func RankNotFoundError(column string) error {
	msg := "Rank for column <em>%s</em> not found"
	vars := []any{column}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RankNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: no rank for column %q", fn, column),
	}
}

func HeaderError(header, suggestion string) error {
	msg := "Unknown column <em>%s</em>"
	vars := []any{header}
	if suggestion != "" {
		msg += ", did you mean <em>%s</em>?"
		vars = append(vars, suggestion)
	}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaHeaderError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: unknown header %q", fn, header),
	}
}

func NoRankColumnsError(headers []string) error {
	msg := "No rank columns among headers <em>%s</em>"
	vars := []any{strings.Join(headers, ", ")}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaNoRankColumnsError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: no rank columns", fn),
	}
}

func TreeDefNotFoundError(tt tree.Type, id int, err error) error {
	msg := "Cannot find <em>%s</em> tree definition for id %d"
	vars := []any{tt, id}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	if err == nil {
		err = fmt.Errorf("tree definition not found")
	}
	return &gn.Error{
		Code: errcode.TreeDefNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %s tree definition %d: %w", fn, tt, id, err),
	}
}
