package oasbind

import (
	"errors"
	"reflect"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NotNil checks that a pointer, slice, map or interface value is not nil.
var NotNil Rule = validation.NotNil

// Each applies rules to every element of a slice, array or map.
func Each(rules ...Rule) Rule {
	return validation.Each(ozzoRules(rules)...)
}

// When applies rules only when condition holds. Chain Else for the
// opposite case.
func When(condition bool, rules ...Rule) validation.WhenRule {
	return validation.When(condition, ozzoRules(rules)...)
}

// Date checks that a string value parses with layout.
func Date(layout string) validation.DateRule {
	return validation.Date(layout)
}

// Unique checks that key returns a distinct value for every index of a
// slice or array.
func Unique(key func(i int) any) Rule {
	return uniqueRule{key: key}
}

type uniqueRule struct {
	key func(i int) any
}

func (r uniqueRule) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil
	}
	rv = reflect.Indirect(rv)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		seen := make(map[any]struct{}, rv.Len())
		for i := range rv.Len() {
			seen[r.key(i)] = struct{}{}
		}
		if len(seen) != rv.Len() {
			return errors.New("must be unique")
		}
		return nil
	}
	return errors.New("must be a slice")
}

func ozzoRules(rules []Rule) []validation.Rule {
	out := make([]validation.Rule, len(rules))
	for i, r := range rules {
		out[i] = r
	}
	return out
}
