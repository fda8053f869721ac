package helperstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Load(ctx, "user1")
	require.ErrorIs(t, err, ErrNotFound)

	helper := []byte{1, 2, 3}
	require.NoError(t, m.Save(ctx, "user1", helper))
	helper[0] = 9

	got, err := m.Load(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	got[1] = 9
	again, _ := m.Load(ctx, "user1")
	assert.Equal(t, []byte{1, 2, 3}, again)

	require.NoError(t, m.Delete(ctx, "user1"))
	_, err = m.Load(ctx, "user1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, m.Close())
}
