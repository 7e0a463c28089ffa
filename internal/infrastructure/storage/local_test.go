package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "a.pdf", strings.NewReader("%PDF-1.4 body")))

	rc, size, err := store.Open(ctx, "a.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "%PDF-1.4 body", string(data))
	assert.Equal(t, int64(len(data)), size)

	require.NoError(t, store.Delete(ctx, "a.pdf"))
	_, _, err = store.Open(ctx, "a.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "a.pdf"))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../x.pdf", "dir/x.pdf", ""} {
		assert.Error(t, store.Save(ctx, name, strings.NewReader("x")), name)
		_, _, err := store.Open(ctx, name)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
}
