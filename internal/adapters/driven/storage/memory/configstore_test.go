package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(
		map[string]any{"codes.delete_policy": "legacy"},
		map[string]any{"analytics.max_logs": int64(10)},
	)

	assert.Equal(t, "legacy", store.GetString("codes.delete_policy"))
	assert.Equal(t, 10, store.GetInt("analytics.max_logs"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetUnset(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("ai.model", "original"))
	require.NoError(t, store.Set("ai.model", "updated"))
	assert.Equal(t, "updated", store.GetString("ai.model"))

	require.NoError(t, store.Unset("ai.model"))
	assert.False(t, store.Has("ai.model"))
	assert.NoError(t, store.Unset("ai.model"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"str":   "value",
		"int":   42,
		"int64": int64(7),
		"float": 3.9,
		"bool":  true,
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("str"), "value"},
		{"string wrong type", store.GetString("int"), ""},
		{"string missing", store.GetString("missing"), ""},
		{"int", store.GetInt("int"), 42},
		{"int64", store.GetInt("int64"), 7},
		{"float truncates", store.GetInt("float"), 3},
		{"int wrong type", store.GetInt("bool"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Concurrent(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set("analytics.max_logs", i)
			_ = store.GetInt("analytics.max_logs")
		}()
	}
	wg.Wait()

	assert.True(t, store.Has("analytics.max_logs"))
}
