package oasbind

import (
	"context"
	"reflect"
)

// Field creates a FieldRules binding a struct field pointer to its rules.
func Field[T any](fieldPtr *T, rules ...Rule) *FieldRules {
	return &FieldRules{
		fieldPtr: fieldPtr,
		rules:    rules,
	}
}

// expandFields inlines the rules of embedded Ruler and ContextRuler fields
// into the parent's rule set, so error keys stay flat.
func expandFields(ctx context.Context, structPtr any, fields []*FieldRules) []*FieldRules {
	structVal := reflect.Indirect(reflect.ValueOf(structPtr))
	if !structVal.IsValid() || structVal.Kind() != reflect.Struct {
		return fields
	}

	result := make([]*FieldRules, 0, len(fields))
	for _, fr := range fields {
		fv := reflect.ValueOf(fr.fieldPtr)
		if fv.Kind() == reflect.Ptr {
			if sf := findStructField(structVal, fv); sf != nil && sf.Anonymous {
				embeddedPtr := fv.Interface()
				if r, ok := embeddedPtr.(Ruler); ok {
					result = append(result, expandFields(ctx, embeddedPtr, r.Rules())...)
					continue
				}
				if r, ok := embeddedPtr.(ContextRuler); ok {
					result = append(result, expandFields(ctx, embeddedPtr, r.Rules(ctx))...)
					continue
				}
			}
		}
		result = append(result, fr)
	}
	return result
}

// findStructField returns the field of structVal whose address is fieldPtr.
func findStructField(structVal reflect.Value, fieldPtr reflect.Value) *reflect.StructField {
	ptr := fieldPtr.Pointer()
	for i := range structVal.NumField() {
		sf := structVal.Type().Field(i)
		if ptr == structVal.Field(i).UnsafeAddr() && sf.Type == fieldPtr.Elem().Type() {
			return &sf
		}
	}
	return nil
}
