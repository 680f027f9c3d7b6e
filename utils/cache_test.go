package utils

import (
	"CloudVault/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "user:folder:list:7", BuildCacheKey(CacheKeyUserFolderList, uint64(7)))
	assert.Equal(t, "public_share:token:abc", BuildCacheKey(CacheKeyPublicShareToken, "abc"))
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	// Redis is not configured in unit tests
	assert.NoError(t, SetFolderListToCache(ctx, 1, []model.Folder{{Name: "Docs"}}, time.Minute))
	_, ok := GetFolderListFromCache(ctx, 1)
	assert.False(t, ok)

	assert.NoError(t, SetShareIDByToken(ctx, "abc", 3, time.Minute))
	_, ok = GetShareIDByToken(ctx, "abc")
	assert.False(t, ok)
	assert.NoError(t, InvalidateShareToken(ctx, "abc"))
}
