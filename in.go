package oasbind

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// In checks that a value is one of values.
func In(values ...any) Rule {
	want := make([]string, len(values))
	for i := range values {
		want[i] = fmt.Sprintf("'%v'", values[i])
	}
	return &inRule{
		validation.In(values...).Error(fmt.Sprintf("must be one of %s", strings.Join(want, ", "))),
	}
}

type inRule struct {
	validation.InRule
}

func (r *inRule) Validate(value any) error {
	if err := r.InRule.Validate(value); err != nil {
		return fmt.Errorf("%s got '%v'", err, value)
	}
	return nil
}
