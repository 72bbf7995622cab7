package oasbind

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Required checks that a value is not empty.
var Required Rule = validation.Required

// NilOrNotEmpty checks that a value is either nil or not empty, so a
// nullable field may be absent but not blank.
var NilOrNotEmpty Rule = validation.NilOrNotEmpty
