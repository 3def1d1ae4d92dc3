package jobs

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	gdb "github.com/inkpost/inkpost-backend/internal/db"
	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
	"github.com/inkpost/inkpost-backend/internal/media"
)

func TestSweepRemovesOnlyOrphanedFiles(t *testing.T) {
	ctx := context.Background()

	database := gdb.NewInMemoryDatabase()
	require.NoError(t, gdb.ConnectAndMigrate(ctx, database, gdb.AllSchemas()))
	t.Cleanup(func() { _ = database.Disconnect(ctx) })

	logger := zap.NewNop().Sugar()
	storage, err := media.NewStorage(t.TempDir(), logger)
	require.NoError(t, err)

	users := database.Repository(entities.UserSchema)
	posts := database.Repository(entities.PostSchema)
	images := database.Repository(entities.PostImageSchema)

	user, err := users.Create(ctx, map[string]interface{}{
		"username":      "casey",
		"email":         "casey@example.com",
		"first_name":    "Casey",
		"last_name":     "Reed",
		"password_hash": "x",
	})
	require.NoError(t, err)

	post, err := posts.Create(ctx, map[string]interface{}{
		"title":    "with image",
		"body":     "",
		"owner_id": user["id"],
	})
	require.NoError(t, err)

	// An image-referenced file, a preview-referenced file, and an orphan
	_, keptPath, err := storage.Save(post["id"].(string), strings.NewReader("kept"), "kept.png")
	require.NoError(t, err)
	_, previewPath, err := storage.Save(post["id"].(string), strings.NewReader("preview"), "preview.png")
	require.NoError(t, err)
	_, orphanPath, err := storage.Save(post["id"].(string), strings.NewReader("orphan"), "orphan.png")
	require.NoError(t, err)

	_, err = images.Create(ctx, map[string]interface{}{
		"title":   "kept",
		"path":    keptPath,
		"post_id": post["id"],
	})
	require.NoError(t, err)

	_, err = posts.Update(ctx, interfaces.StringID(post["id"].(string)), map[string]interface{}{
		"preview": previewPath,
	})
	require.NoError(t, err)

	sweeper := NewMediaSweeper(storage, posts, images, time.Minute, logger)
	require.NoError(t, sweeper.Sweep(ctx))

	files, err := storage.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{keptPath, previewPath}, files)
	assert.NotContains(t, files, orphanPath)
}
