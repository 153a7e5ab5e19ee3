package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestKV(t *testing.T) (*PebbleKV, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db")
	kv, err := NewPebbleKV(DefaultPebbleConfig(path))
	require.NoError(t, err)
	return kv, path
}

func TestPebbleKV_GetSet(t *testing.T) {
	kv, _ := openTestKV(t)
	defer kv.Close()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, []byte("k"), []byte("v")))

	got, err := kv.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = kv.Get(ctx, []byte("absent"))
	assert.True(t, IsNotFound(err))
}

func TestPebbleKV_BatchAndIterate(t *testing.T) {
	kv, _ := openTestKV(t)
	defer kv.Close()
	ctx := context.Background()

	batch := kv.NewBatch()
	for i := 0; i < 5; i++ {
		require.NoError(t, batch.Set([]byte(fmt.Sprintf("r%02d", i)), []byte(fmt.Sprintf("v%d", i))))
	}
	require.NoError(t, batch.Set([]byte("z"), []byte("outside")))
	assert.Equal(t, 6, batch.Count())
	require.NoError(t, kv.CommitBatch(ctx, batch))
	require.NoError(t, batch.Close())

	iter, err := kv.NewIterator(&IteratorOptions{LowerBound: []byte("r"), UpperBound: []byte("s")})
	require.NoError(t, err)
	defer iter.Close()

	var values []string
	for iter.First(); iter.Valid(); iter.Next() {
		values = append(values, string(iter.Value()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"v0", "v1", "v2", "v3", "v4"}, values)
}

func TestPebbleKV_ReadOnlyReopen(t *testing.T) {
	kv, path := openTestKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, []byte("k"), []byte("v")))
	require.NoError(t, kv.Close())

	config := DefaultPebbleConfig(path)
	config.ReadOnly = true
	ro, err := NewPebbleKV(config)
	require.NoError(t, err)
	defer ro.Close()

	got, err := ro.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.NoError(t, ro.Flush())
}

func TestPebbleKV_Closed(t *testing.T) {
	kv, _ := openTestKV(t)
	require.NoError(t, kv.Close())
	require.NoError(t, kv.Close())

	_, err := kv.Get(context.Background(), []byte("k"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = kv.NewIterator(nil)
	assert.ErrorIs(t, err, ErrClosed)
}
