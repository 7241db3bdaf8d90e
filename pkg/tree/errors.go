package tree

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
)

func TypeError(s string) error {
	msg := "Unknown tree type <em>%s</em>, use taxon, storage or geography"
	vars := []any{s}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ConfigTreeTypeError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: unknown tree type %q", fn, s),
	}
}

func IsAcceptedValueError(val string) error {
	msg := "Column isAccepted has value <em>%s</em>, expected Yes or No"
	vars := []any{val}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RowIsAcceptedValueError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: bad isAccepted value %q", fn, val),
	}
}
