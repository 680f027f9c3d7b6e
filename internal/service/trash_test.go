package service

import (
	"CloudVault/internal/errs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrashRestorePurgeEmpty(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	a := mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "a")
	require.NoError(t, DeleteFile(ctx, alice.ID, a.ID))
	advance(time.Minute)
	b := mustUpload(t, ctx, alice.ID, work.ID, "b.txt", "b")
	require.NoError(t, DeleteFile(ctx, alice.ID, b.ID))
	advance(2 * time.Minute)
	c := mustUpload(t, ctx, alice.ID, work.ID, "c.txt", "c")
	require.NoError(t, DeleteFile(ctx, alice.ID, c.ID))

	items, err := ListTrash(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c.txt", items[0].Name)
	assert.Equal(t, "a.txt", items[2].Name)

	n, err := RestoreTrash(ctx, alice.ID, []uint64{items[0].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	// the file does not come back
	files, err := ListFiles(ctx, alice.ID, &work.ID)
	require.NoError(t, err)
	assert.Empty(t, files)

	n, err = PurgeTrash(ctx, alice.ID, []uint64{items[1].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = EmptyTrash(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = EmptyTrash(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTrashForeignIDsRejected(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	bob := mustUser(t, ctx, "bob")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	bobWork := mustWorkFolder(t, ctx, bob.ID, "Docs")
	require.NoError(t, DeleteFile(ctx, alice.ID, mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "a").ID))
	require.NoError(t, DeleteFile(ctx, bob.ID, mustUpload(t, ctx, bob.ID, bobWork.ID, "b.txt", "b").ID))

	mine, err := ListTrash(ctx, alice.ID)
	require.NoError(t, err)
	theirs, err := ListTrash(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, theirs, 1)

	_, err = PurgeTrash(ctx, alice.ID, []uint64{mine[0].ID, theirs[0].ID})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = RestoreTrash(ctx, alice.ID, nil)
	assert.ErrorIs(t, err, errs.ErrValidation)

	// nothing removed on failure
	mine, err = ListTrash(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
