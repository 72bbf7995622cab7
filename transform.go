package oasbind

import (
	"context"
	"reflect"
	"strings"
)

// Normalizer is implemented by bound types that adjust themselves after
// decoding and before their rules run. Bind calls Normalize on the top
// level value first, then depth-first on nested values implementing it.
type Normalizer interface {
	Normalize()
}

// ContextNormalizer is like Normalizer but receives the request context.
type ContextNormalizer interface {
	Normalize(ctx context.Context)
}

func normalize(ctx context.Context, v any) {
	if v == nil {
		return
	}
	callNormalize(ctx, v)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		walkNormalize(ctx, rv)
	}
}

func callNormalize(ctx context.Context, v any) {
	switch n := v.(type) {
	case ContextNormalizer:
		n.Normalize(ctx)
	case Normalizer:
		n.Normalize()
	}
}

// normalizeValue normalizes one field, slice element or map value. Map
// values are not addressable, so they are copied and stored back.
func normalizeValue(ctx context.Context, v reflect.Value, store func(reflect.Value)) {
	switch v.Kind() {
	case reflect.Struct:
		if v.CanAddr() {
			callNormalize(ctx, v.Addr().Interface())
			walkNormalize(ctx, v)
			return
		}
		if store == nil {
			return
		}
		cp := reflect.New(v.Type())
		cp.Elem().Set(v)
		callNormalize(ctx, cp.Interface())
		walkNormalize(ctx, cp.Elem())
		store(cp.Elem())
	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		callNormalize(ctx, v.Interface())
		if v.Elem().Kind() == reflect.Struct {
			walkNormalize(ctx, v.Elem())
		}
	}
}

func walkNormalize(ctx context.Context, rv reflect.Value) {
	for i := range rv.NumField() {
		if !rv.Type().Field(i).IsExported() {
			continue
		}
		field := rv.Field(i)
		switch field.Kind() {
		case reflect.Slice:
			for j := range field.Len() {
				normalizeValue(ctx, field.Index(j), nil)
			}
		case reflect.Map:
			iter := field.MapRange()
			for iter.Next() {
				key := iter.Key()
				normalizeValue(ctx, iter.Value(), func(v reflect.Value) { field.SetMapIndex(key, v) })
			}
		default:
			normalizeValue(ctx, field, nil)
		}
	}
}

// TrimSpace trims every settable string of the struct pointed to by v,
// following nested structs, pointers, slices and map values.
//
//	func (p *Pet) Normalize() { oasbind.TrimSpace(p) }
func TrimSpace(v any) {
	mapStrings(reflect.ValueOf(v), strings.TrimSpace)
}

// ToLower lower-cases every settable string of the struct pointed to by v.
func ToLower(v any) {
	mapStrings(reflect.ValueOf(v), strings.ToLower)
}

func mapStrings(v reflect.Value, f func(string) string) {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			mapStrings(v.Elem(), f)
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(f(v.String()))
		}
	case reflect.Struct:
		for i := range v.NumField() {
			if v.Type().Field(i).IsExported() {
				mapStrings(v.Field(i), f)
			}
		}
	case reflect.Slice:
		for j := range v.Len() {
			mapStrings(v.Index(j), f)
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			val := iter.Value()
			switch val.Kind() {
			case reflect.String, reflect.Struct:
				cp := reflect.New(val.Type()).Elem()
				cp.Set(val)
				mapStrings(cp, f)
				v.SetMapIndex(iter.Key(), cp)
			}
		}
	}
}
