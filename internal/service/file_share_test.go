package service

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileShareDownloadChecks(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	file := mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "hello")

	share, err := CreateFileShare(ctx, alice.ID, file.ID, dto.CreateLinkRequest{
		Password:     "pw1234",
		ExpireDays:   2,
		MaxDownloads: ptr(2),
	})
	require.NoError(t, err)
	assert.Len(t, share.ShareURL, 16)
	require.NotNil(t, share.ExpiresAt)

	_, _, _, err = DownloadFileShare(ctx, "missing", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, _, _, err = DownloadFileShare(ctx, share.ShareURL, "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	for i := 0; i < 2; i++ {
		_, rc, _, err := DownloadFileShare(ctx, share.ShareURL, "pw1234")
		require.NoError(t, err)
		assert.Equal(t, "hello", readAll(t, rc))
	}
	_, _, _, err = DownloadFileShare(ctx, share.ShareURL, "pw1234")
	assert.ErrorIs(t, err, errs.ErrLimitReached)

	links, err := ListFileShares(ctx, alice.ID, file.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, 2, links[0].DownloadCount)
}

func TestFileShareExpiryMarksStatus(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	file := mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "hello")

	share, err := CreateFileShare(ctx, alice.ID, file.ID, dto.CreateLinkRequest{ExpireDays: 1})
	require.NoError(t, err)

	advance(25 * time.Hour)
	_, _, _, err = DownloadFileShare(ctx, share.ShareURL, "")
	assert.ErrorIs(t, err, errs.ErrExpired)

	var stored model.FileShare
	require.NoError(t, repo.Db.First(&stored, share.ID).Error)
	assert.Equal(t, model.ShareStatusExpired, stored.Status)
}

func TestFileShareValidationAndDelete(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	bob := mustUser(t, ctx, "bob")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	file := mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "hello")

	_, err := CreateFileShare(ctx, alice.ID, file.ID, dto.CreateLinkRequest{ExpireDays: -1})
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = CreateFileShare(ctx, alice.ID, file.ID, dto.CreateLinkRequest{MaxDownloads: ptr(0)})
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = CreateFileShare(ctx, bob.ID, file.ID, dto.CreateLinkRequest{})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	share, err := CreateFileShare(ctx, alice.ID, file.ID, dto.CreateLinkRequest{})
	require.NoError(t, err)
	assert.Nil(t, share.ExpiresAt)

	assert.ErrorIs(t, DeleteFileShare(ctx, bob.ID, share.ID), errs.ErrNotFound)
	require.NoError(t, DeleteFileShare(ctx, alice.ID, share.ID))
	_, _, _, err = DownloadFileShare(ctx, share.ShareURL, "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
