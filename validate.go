package oasbind

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate applies the rules of value. Structs implementing Ruler or
// ContextRuler are validated field by field; values implementing ValueRuler
// get their own rules; collections are walked for Ruler elements.
func Validate(ctx context.Context, value any) error {
	return validateCore(ctx, value)
}

// ValidateStruct validates a struct with explicit field rules.
func ValidateStruct(ctx context.Context, structPtr any, fields ...*FieldRules) error {
	return validation.ValidateStruct(structPtr, convertFieldRules(ctx, structPtr, fields...)...)
}

// By wraps f into a Rule.
func By(f RuleFunc) Rule {
	return validation.By(validation.RuleFunc(f))
}

func validateCore(ctx context.Context, value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil
	}

	if r, ok := value.(Ruler); ok {
		return validation.ValidateStruct(value, convertFieldRules(ctx, value, r.Rules()...)...)
	}
	if r, ok := value.(ContextRuler); ok {
		return validation.ValidateStruct(value, convertFieldRules(ctx, value, r.Rules(ctx)...)...)
	}
	// ozzo hands struct field values to the bridge rule by value.
	if rv.Kind() == reflect.Struct {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		pi := ptr.Interface()
		if r, ok := pi.(Ruler); ok {
			return validation.ValidateStruct(pi, convertFieldRules(ctx, pi, r.Rules()...)...)
		}
		if r, ok := pi.(ContextRuler); ok {
			return validation.ValidateStruct(pi, convertFieldRules(ctx, pi, r.Rules(ctx)...)...)
		}
	}

	if vr, ok := value.(ValueRuler); ok {
		return validateValueRules(value, vr.ValueRules())
	}

	if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil
	}

	rv = reflect.Indirect(rv)

	switch rv.Kind() {
	case reflect.Map:
		if shouldAutoValidate(rv.Type().Elem()) {
			return validateMap(ctx, rv)
		}
	case reflect.Slice, reflect.Array:
		if shouldAutoValidate(rv.Type().Elem()) {
			return validateSlice(ctx, rv)
		}
	case reflect.Ptr, reflect.Interface:
		return validateCore(ctx, rv.Elem().Interface())
	}

	return nil
}

func validateValueRules(value any, rules []Rule) error {
	for _, rule := range rules {
		if err := rule.Validate(value); err != nil {
			return err
		}
	}
	return nil
}

// shouldAutoValidate reports whether elements of elemType, possibly nested in
// collections, implement Ruler or ContextRuler.
func shouldAutoValidate(elemType reflect.Type) bool {
	if elemType.Kind() == reflect.Struct {
		if _, ok := reflect.New(elemType).Interface().(Ruler); ok {
			return true
		}
		if _, ok := reflect.New(elemType).Interface().(ContextRuler); ok {
			return true
		}
	}
	if elemType.Kind() == reflect.Slice || elemType.Kind() == reflect.Array {
		return shouldAutoValidate(elemType.Elem())
	}
	if elemType.Kind() == reflect.Map {
		return shouldAutoValidate(elemType.Elem())
	}
	return false
}

func validateElement(ctx context.Context, v reflect.Value) error {
	if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil
	}

	var ptr reflect.Value
	if v.CanAddr() {
		ptr = v.Addr()
	} else if v.Type().Kind() == reflect.Struct {
		ptr = reflect.New(v.Type())
		ptr.Elem().Set(v)
	}

	if ptr.IsValid() {
		pi := ptr.Interface()
		if _, ok := pi.(Ruler); ok {
			return validateCore(ctx, pi)
		}
		if _, ok := pi.(ContextRuler); ok {
			return validateCore(ctx, pi)
		}
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return validateCore(ctx, v.Interface())
	}

	return nil
}

func validateSlice(ctx context.Context, rv reflect.Value) error {
	errs := validation.Errors{}
	for i := range rv.Len() {
		if err := validateElement(ctx, rv.Index(i)); err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateMap(ctx context.Context, rv reflect.Value) error {
	errs := validation.Errors{}
	for _, key := range rv.MapKeys() {
		if err := validateElement(ctx, rv.MapIndex(key)); err != nil {
			errs[fmt.Sprintf("%v", key.Interface())] = err
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// rulerBridge recurses from an ozzo field rule into nested Ruler values.
type rulerBridge struct {
	ctx context.Context
}

func (b *rulerBridge) Validate(value any) error {
	if value == nil {
		return nil
	}
	return validateCore(b.ctx, value)
}

// convertFieldRules translates FieldRules into ozzo field rules, each followed
// by a rulerBridge.
func convertFieldRules(ctx context.Context, structPtr any, fields ...*FieldRules) []*validation.FieldRules {
	flat := expandFields(ctx, structPtr, fields)

	vFields := make([]*validation.FieldRules, len(flat))
	for i, fr := range flat {
		rules := make([]validation.Rule, len(fr.rules), len(fr.rules)+1)
		for j, r := range fr.rules {
			rules[j] = validation.Rule(r)
		}
		rules = append(rules, &rulerBridge{ctx: ctx})
		vFields[i] = validation.Field(fr.fieldPtr, rules...)
	}
	return vFields
}
