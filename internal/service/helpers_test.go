package service

import (
	"CloudVault/config"
	"CloudVault/internal/repo"
	"CloudVault/internal/storage"
	"CloudVault/model"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setupService wires an in-memory database, a temp blob store and a
// minimal config for one test.
func setupService(t *testing.T) context.Context {
	t.Helper()
	repo.UseTestDB(t)

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	prevStore, prevBucket := storage.Default, storage.Bucket
	storage.Default, storage.Bucket = store, "vault"

	prevCfg := config.AppConfig
	config.AppConfig = config.Config{
		JWTSecret:       "test-secret",
		JWTTTL:          time.Hour,
		PreviewMaxBytes: 1 << 20,
		FrontendURL:     "http://localhost:3000",
	}

	prevNow := Now
	t.Cleanup(func() {
		storage.Default, storage.Bucket = prevStore, prevBucket
		config.AppConfig = prevCfg
		Now = prevNow
	})
	return context.Background()
}

// advance moves the service clock forward by d.
func advance(d time.Duration) {
	base := Now()
	Now = func() time.Time { return base.Add(d) }
}

func mustUser(t *testing.T, ctx context.Context, name string) *model.User {
	t.Helper()
	u, err := createUser(ctx, name, name+"@example.com", "secret123", model.RoleUser)
	require.NoError(t, err)
	return u
}

func befriend(t *testing.T, ctx context.Context, a, b *model.User) {
	t.Helper()
	req, err := SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, AcceptFriendRequest(ctx, b.ID, req.ID))
}

func mustFolder(t *testing.T, ctx context.Context, owner uint64, name string, parent *uint64) *model.Folder {
	t.Helper()
	f, err := CreateFolder(ctx, owner, name, parent)
	require.NoError(t, err)
	return f
}

// mustWorkFolder creates a top-level folder with one child and returns
// the child, which can hold files.
func mustWorkFolder(t *testing.T, ctx context.Context, owner uint64, name string) *model.Folder {
	t.Helper()
	root := mustFolder(t, ctx, owner, name, nil)
	return mustFolder(t, ctx, owner, "work", &root.ID)
}

func mustUpload(t *testing.T, ctx context.Context, owner, folderID uint64, name, body string) *model.File {
	t.Helper()
	f, err := UploadFile(ctx, owner, folderID, name, int64(len(body)), strings.NewReader(body))
	require.NoError(t, err)
	return f
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func blobExists(t *testing.T, ctx context.Context, key string) bool {
	t.Helper()
	_, err := storage.Default.StatObject(ctx, storage.Bucket, key)
	if err != nil {
		require.True(t, storage.IsNotFound(err), "unexpected stat error: %v", err)
		return false
	}
	return true
}

func ptr[T any](v T) *T { return &v }
