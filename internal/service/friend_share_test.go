package service

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendFriendShareRequiresFriendship(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	bob := mustUser(t, ctx, "bob")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	file := mustUpload(t, ctx, alice.ID, work.ID, "plan.txt", "plan")

	_, err := SendFriendShare(ctx, alice.ID, dto.SendFriendShareRequest{FileID: file.ID, ReceiverID: bob.ID})
	assert.ErrorIs(t, err, errs.ErrAuthorization)

	befriend(t, ctx, alice, bob)
	_, err = SendFriendShare(ctx, alice.ID, dto.SendFriendShareRequest{FileID: file.ID, ReceiverID: alice.ID})
	assert.ErrorIs(t, err, errs.ErrValidation)
	// bob cannot share alice's file
	_, err = SendFriendShare(ctx, bob.ID, dto.SendFriendShareRequest{FileID: file.ID, ReceiverID: alice.ID})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	share, err := SendFriendShare(ctx, alice.ID, dto.SendFriendShareRequest{FileID: file.ID, ReceiverID: bob.ID, Message: " hi "})
	require.NoError(t, err)
	assert.Equal(t, model.FriendSharePending, share.Status)
	assert.Equal(t, "hi", share.Message)

	_, err = SendFriendShare(ctx, alice.ID, dto.SendFriendShareRequest{FileID: file.ID, ReceiverID: bob.ID})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestFriendShareAcceptSaveDownload(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	bob := mustUser(t, ctx, "bob")
	befriend(t, ctx, alice, bob)
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	inbox := mustWorkFolder(t, ctx, bob.ID, "Inbox")
	file := mustUpload(t, ctx, alice.ID, work.ID, "plan.txt", "the plan")

	share, err := SendFriendShare(ctx, alice.ID, dto.SendFriendShareRequest{FileID: file.ID, ReceiverID: bob.ID})
	require.NoError(t, err)

	received, err := ReceivedFriendShares(ctx, bob.ID, dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, received.Shares, 1)
	assert.Equal(t, "alice", received.Shares[0].Sender.Username)
	require.NotNil(t, received.Shares[0].File)
	assert.Equal(t, "plan.txt", received.Shares[0].File.Name)
	sent, err := SentFriendShares(ctx, alice.ID, dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sent.Pagination.Total)

	_, err = SaveFriendShare(ctx, bob.ID, share.ID, inbox.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	_, _, _, err = OpenFriendShare(ctx, bob.ID, share.ID)
	assert.ErrorIs(t, err, errs.ErrAuthorization)
	// only the receiver sees it
	_, err = AcceptFriendShare(ctx, alice.ID, share.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	accepted, err := AcceptFriendShare(ctx, bob.ID, share.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendShareAccepted, accepted.Status)
	_, err = RejectFriendShare(ctx, bob.ID, share.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, rc, _, err := OpenFriendShare(ctx, bob.ID, share.ID)
	require.NoError(t, err)
	assert.Equal(t, "the plan", readAll(t, rc))

	saved, err := SaveFriendShare(ctx, bob.ID, share.ID, inbox.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, saved.UserID)
	assert.Equal(t, "plan.txt", saved.Name)
	assert.NotEqual(t, file.Path, saved.Path)

	_, err = SaveFriendShare(ctx, bob.ID, share.ID, inbox.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)

	// the copy survives deletion of the original
	require.NoError(t, DeleteFile(ctx, alice.ID, file.ID))
	_, rc, _, err = OpenFile(ctx, bob.ID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "the plan", readAll(t, rc))

	all, err := ReceivedFriendShares(ctx, bob.ID, dto.PageQuery{Status: "all"})
	require.NoError(t, err)
	require.Len(t, all.Shares, 1)
	assert.Equal(t, model.FriendShareSaved, all.Shares[0].Status)
	require.NotNil(t, all.Shares[0].SavedFolderID)
	assert.Equal(t, inbox.ID, *all.Shares[0].SavedFolderID)
}

func TestSaveFriendShareNameConflict(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	bob := mustUser(t, ctx, "bob")
	befriend(t, ctx, alice, bob)
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	inbox := mustWorkFolder(t, ctx, bob.ID, "Inbox")
	file := mustUpload(t, ctx, alice.ID, work.ID, "plan.txt", "the plan")
	mustUpload(t, ctx, bob.ID, inbox.ID, "plan.txt", "my own plan")

	share, err := SendFriendShare(ctx, alice.ID, dto.SendFriendShareRequest{FileID: file.ID, ReceiverID: bob.ID})
	require.NoError(t, err)
	_, err = AcceptFriendShare(ctx, bob.ID, share.ID)
	require.NoError(t, err)

	_, err = SaveFriendShare(ctx, bob.ID, share.ID, inbox.ID)
	assert.ErrorIs(t, err, errs.ErrConflict)

	// still saveable elsewhere
	other := mustFolder(t, ctx, bob.ID, "other", inbox.ParentID)
	saved, err := SaveFriendShare(ctx, bob.ID, share.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, saved.FolderID)
}
