package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestBolt_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store, err := OpenBolt(path)
	assert.NoError(t, err)

	_, found, err := store.Get(ctx, "data.currentIPv4")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, store.Set(ctx, "data.currentIPv4", "203.0.113.7"))
	assert.NoError(t, store.Close())

	store, err = OpenBolt(path)
	assert.NoError(t, err)
	defer store.Close()

	value, found, err := store.Get(ctx, "data.currentIPv4")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "203.0.113.7", value)

	all, err := store.All(ctx)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"data.currentIPv4": "203.0.113.7"}, all)
}

func TestBolt_SecondOpenTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := OpenBolt(path)
	assert.NoError(t, err)
	defer store.Close()

	_, err = OpenBolt(path)
	assert.Error(t, err)
}

func TestSetIfChanged(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	previous, changed, err := SetIfChanged(ctx, store, "data.currentIPv6", "2001:db8::1")
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "", previous)

	previous, changed, err = SetIfChanged(ctx, store, "data.currentIPv6", "2001:db8::1")
	assert.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "2001:db8::1", previous)

	previous, changed, err = SetIfChanged(ctx, store, "data.currentIPv6", NotAvailable)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "2001:db8::1", previous)
	assert.Equal(t, map[string]string{"data.currentIPv6": NotAvailable}, store.Snapshot())
}
