package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "a", []byte(`{"n":1}`)))
	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(v))

	require.NoError(t, s.Set(ctx, "a", []byte(`{"n":2}`)))
	v, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(v))

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, s.Delete(ctx, "a"))
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte(`[1]`)
	require.NoError(t, m.Set(context.Background(), "k", buf))
	buf[1] = '2'

	v, err := m.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(v))
}

func TestFile(t *testing.T) {
	exerciseStore(t, NewFile(filepath.Join(t.TempDir(), "state", "checkout.json")))
}

func TestFile_SharedBetweenInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkout.json")
	ctx := context.Background()

	require.NoError(t, NewFile(path).Set(ctx, "k", []byte(`"v"`)))
	v, err := NewFile(path).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"v"`, string(v))
}

func TestFile_RejectsNonJSON(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "checkout.json"))
	assert.Error(t, f.Set(context.Background(), "k", []byte("not json")))
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkout.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o600))

	_, err := NewFile(path).Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

type brokenStore struct {
	Store
	failWrites bool
	failReads  bool
}

var errDisk = errors.New("disk full")

func (b *brokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	if b.failReads {
		return nil, errDisk
	}
	return b.Store.Get(ctx, key)
}

func (b *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	if b.failWrites {
		return errDisk
	}
	return b.Store.Set(ctx, key, value)
}

func (b *brokenStore) Delete(ctx context.Context, key string) error {
	if b.failWrites {
		return errDisk
	}
	return b.Store.Delete(ctx, key)
}

func TestFallback_Healthy(t *testing.T) {
	f := NewFallback(NewMemory(), nil)
	exerciseStore(t, f)
	assert.False(t, f.Degraded())
}

func TestFallback_DegradesToMemory(t *testing.T) {
	ctx := context.Background()
	primary := &brokenStore{Store: NewMemory(), failWrites: true}
	f := NewFallback(primary, nil)

	require.NoError(t, f.Set(ctx, "k", []byte(`1`)))
	assert.True(t, f.Degraded())

	v, err := f.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `1`, string(v))

	// Primary never received it.
	_, err = primary.Store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Recovery moves the key back to the primary.
	primary.failWrites = false
	require.NoError(t, f.Set(ctx, "k", []byte(`2`)))
	assert.False(t, f.Degraded())
	v, err = primary.Store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `2`, string(v))
}

func TestFallback_DeleteShadowsStalePrimary(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	require.NoError(t, inner.Set(ctx, "k", []byte(`"old"`)))

	primary := &brokenStore{Store: inner, failWrites: true}
	f := NewFallback(primary, nil)

	require.NoError(t, f.Delete(ctx, "k"))
	_, err := f.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFallback_ReadFailure(t *testing.T) {
	primary := &brokenStore{Store: NewMemory(), failReads: true}
	f := NewFallback(primary, nil)

	_, err := f.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
