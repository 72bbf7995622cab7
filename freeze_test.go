package oasbind_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/oasbind"
)

func TestFreezeCopies(t *testing.T) {
	src := map[string]any{
		"name": "Ann",
		"tags": []any{"a", map[string]any{"k": "v"}},
	}
	frozen := oasbind.Freeze(src).(oasbind.Map)

	src["name"] = "Bob"
	src["tags"].([]any)[0] = "z"

	name, _ := frozen.String("name")
	assert.Equal(t, "Ann", name)
	tags, ok := frozen.List("tags")
	require.True(t, ok)
	assert.Equal(t, "a", tags.Get(0))
	nested, ok := tags.Get(1).(oasbind.Map)
	require.True(t, ok)
	assert.Equal(t, []string{"k"}, nested.Keys())
}

func TestThawReturnsIndependentCopy(t *testing.T) {
	frozen := oasbind.Freeze(map[string]any{"items": []any{1}})
	thawed := oasbind.Thaw(frozen).(map[string]any)
	thawed["items"].([]any)[0] = 2

	items, _ := frozen.(oasbind.Map).List("items")
	assert.Equal(t, 1, items.Get(0))
}

func TestFrozenMarshalJSON(t *testing.T) {
	frozen := oasbind.Freeze(map[string]any{"b": []any{}, "a": map[string]any{}})
	data, err := json.Marshal(frozen)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {}, "b": []}`, string(data))

	data, err = json.Marshal(oasbind.Map{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestMapIteration(t *testing.T) {
	m := oasbind.Freeze(map[string]any{"c": 3, "a": 1, "b": 2}).(oasbind.Map)

	var keys []string
	var sum int
	for k, v := range m.All() {
		keys = append(keys, k)
		sum += v.(int)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Equal(t, 6, sum)
	assert.Equal(t, 3, m.Len())

	_, ok := m.Map("a")
	assert.False(t, ok)
	_, ok = m.Get("missing")
	assert.False(t, ok)
}
