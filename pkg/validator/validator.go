package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator re-checks request payloads at the service boundary, so callers
// that bypass the HTTP layer get the same guard clauses as gin binding. It
// reads the same `binding` tags the handlers bind with.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.SetTagName("binding")
	return &Validator{validate: v}
}

// Validate checks struct tags and returns the first violation.
func (v *Validator) Validate(obj interface{}) error {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("field %s failed on %s", first.Field(), first.Tag())
	}
	return err
}

// Var validates a single value against the given rule, e.g. "required,uuid".
func (v *Validator) Var(value interface{}, rule string) error {
	return v.validate.Var(value, rule)
}
