package oasbind

import (
	"context"
	"fmt"
	"strings"
)

// Loc is the path to a failing value. Segments are strings (object keys,
// parameter names) or ints (array indices).
type Loc []any

// Join returns a new Loc with segments appended; l is left untouched.
func (l Loc) Join(segments ...any) Loc {
	out := make(Loc, 0, len(l)+len(segments))
	out = append(out, l...)
	return append(out, segments...)
}

func (l Loc) String() string {
	parts := make([]string, len(l))
	for i, s := range l {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, ".")
}

type locKey struct{}

// WithErrorLoc returns a context whose validation error location is the
// current one extended by path. Errors built with [NewValidationError] from
// the returned context are prefixed with that location.
//
//	ctx = oasbind.WithErrorLoc(ctx, "body", 0, "name")
//	return oasbind.NewValidationError(ctx, "Name is not unique")
func WithErrorLoc(ctx context.Context, path ...any) context.Context {
	return context.WithValue(ctx, locKey{}, ErrorLoc(ctx).Join(path...))
}

// ErrorLoc returns the validation error location carried by ctx.
func ErrorLoc(ctx context.Context) Loc {
	if ctx == nil {
		return nil
	}
	loc, _ := ctx.Value(locKey{}).(Loc)
	return loc
}
