package oasbind

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Length checks that the rune length of a string, or the length of a slice
// or map, is within [lo, hi]. A hi of 0 means no upper bound.
func Length(lo, hi int) Rule {
	return validation.RuneLength(lo, hi)
}
