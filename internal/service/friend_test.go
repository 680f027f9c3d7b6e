package service

import (
	"CloudVault/internal/errs"
	"CloudVault/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchByCode(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	bob := mustUser(t, ctx, "bob")

	res, err := SearchByCode(ctx, alice.ID, strings.ToLower(bob.UserCode))
	require.NoError(t, err)
	assert.Equal(t, bob.ID, res.User.ID)
	assert.Empty(t, res.User.Email)
	assert.Nil(t, res.Friendship)

	_, err = SearchByCode(ctx, alice.ID, alice.UserCode)
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = SearchByCode(ctx, alice.ID, "ZZZZZZZZ")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	res, err = SearchByCode(ctx, bob.ID, alice.UserCode)
	require.NoError(t, err)
	require.NotNil(t, res.Friendship)
	assert.Equal(t, model.FriendshipPending, res.Friendship.Status)
	assert.Equal(t, "received", res.Friendship.Direction)
}

func TestFriendRequestLifecycle(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	bob := mustUser(t, ctx, "bob")
	carol := mustUser(t, ctx, "carol")

	_, err := SendFriendRequest(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = SendFriendRequest(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	req, err := SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = SendFriendRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, errs.ErrConflict)

	lists, err := ListFriendRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, lists.Received, 1)
	assert.Equal(t, alice.ID, lists.Received[0].User.ID)
	assert.Empty(t, lists.Sent)

	// only the addressee can answer
	assert.ErrorIs(t, AcceptFriendRequest(ctx, alice.ID, req.ID), errs.ErrNotFound)
	require.NoError(t, AcceptFriendRequest(ctx, bob.ID, req.ID))

	ok, err := AreFriends(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = SendFriendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, errs.ErrConflict)

	friends, err := ListFriends(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, alice.ID, friends[0].User.ID)

	other, err := SendFriendRequest(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	require.NoError(t, RejectFriendRequest(ctx, alice.ID, other.ID))
	assert.ErrorIs(t, RejectFriendRequest(ctx, alice.ID, other.ID), errs.ErrNotFound)

	require.NoError(t, RemoveFriend(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, RemoveFriend(ctx, alice.ID, bob.ID), errs.ErrNotFound)
	ok, err = AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
