package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
)

// CredentialsError reports incomplete Specify connection settings.
func CredentialsError(fields []string) error {
	msg := "Specify settings are incomplete: <em>%s</em>"
	vars := []any{strings.Join(fields, "; ")}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ConfigCredentialsError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: invalid specify config: %s",
			fn, strings.Join(fields, "; ")),
	}
}
