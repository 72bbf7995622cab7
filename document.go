package oasbind

import (
	"context"
)

type (
	// RuleFunc validates a value and returns an error if it is invalid.
	RuleFunc func(value any) error

	// Rule validates a single value. Every ozzo-validation rule is a Rule.
	Rule interface {
		Validate(value any) error
	}

	// FieldRules binds a struct field pointer to its rules.
	FieldRules struct {
		fieldPtr any
		rules    []Rule
	}

	// Ruler is implemented by structs bound from a validated body that
	// carry extra rules the schema cannot express.
	//
	//	func (p *Pet) Rules() []*oasbind.FieldRules {
	//	    return []*oasbind.FieldRules{
	//	        oasbind.Field(&p.Name, oasbind.Required, oasbind.Length(1, 64)),
	//	    }
	//	}
	Ruler interface {
		Rules() []*FieldRules
	}

	// ContextRuler is like Ruler but receives the request context.
	ContextRuler interface {
		Rules(ctx context.Context) []*FieldRules
	}

	// ValueRuler is implemented by non-struct types that carry their own
	// rules, applied wherever the type appears as a struct field.
	//
	//	type Kind string
	//
	//	func (k Kind) ValueRules() []oasbind.Rule {
	//	    return []oasbind.Rule{oasbind.In(Kind("cat"), Kind("dog"))}
	//	}
	ValueRuler interface {
		ValueRules() []Rule
	}
)
