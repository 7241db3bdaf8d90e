package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateSpecify checks that connection settings are complete enough to
// log into Specify. It is called before any remote work starts.
func (c *Config) ValidateSpecify() error {
	err := validate.Struct(c.Specify)
	if err == nil {
		if c.Specify.Collection == "" && c.Specify.CollectionID == 0 {
			return CredentialsError([]string{"collection or collection_id"})
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return CredentialsError([]string{err.Error()})
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldMessage(fe))
	}
	return CredentialsError(fields)
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", name)
	default:
		return fmt.Sprintf("%s failed on %s", name, fe.Tag())
	}
}
