package service

import (
	"CloudVault/config"
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/model"
	"CloudVault/utils"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := setupService(t)

	res, err := Register(ctx, dto.RegisterRequest{Username: "alice", Email: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Len(t, res.User.UserCode, 8)

	claims, err := utils.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserId)

	byName, err := Login(ctx, dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byName.User.ID)

	byEmail, err := Login(ctx, dto.LoginRequest{Username: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byEmail.User.ID)

	_, err = Login(ctx, dto.LoginRequest{Username: "alice", Password: "wrong-pass"})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, err = Login(ctx, dto.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestRegisterValidationAndConflicts(t *testing.T) {
	ctx := setupService(t)
	mustUser(t, ctx, "alice")

	cases := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{"missing email", dto.RegisterRequest{Username: "bob", Password: "secret123"}, errs.ErrValidation},
		{"bad email", dto.RegisterRequest{Username: "bob", Email: "bob", Password: "secret123"}, errs.ErrValidation},
		{"short password", dto.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "123"}, errs.ErrValidation},
		{"username taken", dto.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "secret123"}, errs.ErrConflict},
		{"email taken", dto.RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "secret123"}, errs.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Register(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBootstrapAdmin(t *testing.T) {
	ctx := setupService(t)

	created, err := BootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	config.AppConfig.AdminEmail = "root@example.com"
	config.AppConfig.AdminPassword = "rootpass"
	created, err = BootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = BootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	res, err := Login(ctx, dto.LoginRequest{Username: "admin", Password: "rootpass"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.User.Role)
}
