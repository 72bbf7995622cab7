package oasbind

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadAndCompile reads the schema file at path and compiles it.
func LoadAndCompile(ctx context.Context, path string, loader SchemaLoader) (Schema, *Spec, error) {
	schema, err := ReadSchema(path, loader)
	if err != nil {
		return nil, nil, err
	}
	spec, err := Compile(ctx, schema)
	if err != nil {
		return nil, nil, err
	}
	return schema, spec, nil
}

type compiled struct {
	schema Schema
	spec   *Spec
}

// compileCache memoizes LoadAndCompile by absolute path. Entries are never
// invalidated: a schema file changed on disk is only picked up on restart.
type compileCache struct {
	group   singleflight.Group
	entries sync.Map
}

var defaultCache = &compileCache{}

func (c *compileCache) load(ctx context.Context, path string, loader SchemaLoader) (Schema, *Spec, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}
	if v, ok := c.entries.Load(key); ok {
		e := v.(compiled)
		return e.schema, e.spec, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.entries.Load(key); ok {
			return v, nil
		}
		schema, spec, err := LoadAndCompile(ctx, path, loader)
		if err != nil {
			return nil, err
		}
		e := compiled{schema: schema, spec: spec}
		c.entries.Store(key, e)
		return e, nil
	})
	if err != nil {
		return nil, nil, err
	}
	e := v.(compiled)
	return e.schema, e.spec, nil
}

// LoadAndCompileCached is LoadAndCompile memoized by path for the life of the
// process. Concurrent first calls for one path share a single compile.
func LoadAndCompileCached(ctx context.Context, path string, loader SchemaLoader) (Schema, *Spec, error) {
	return defaultCache.load(ctx, path, loader)
}
