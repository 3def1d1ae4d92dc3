package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gdb "github.com/inkpost/inkpost-backend/internal/db"
	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

func TestSeedAllIsIdempotent(t *testing.T) {
	ctx := context.Background()

	database := gdb.NewInMemoryDatabase()
	require.NoError(t, gdb.ConnectAndMigrate(ctx, database, gdb.AllSchemas()))
	t.Cleanup(func() { _ = database.Disconnect(ctx) })

	require.NoError(t, seedAll(ctx, database))
	require.NoError(t, seedAll(ctx, database))

	count := func(schema *interfaces.Schema) int64 {
		n, err := database.Repository(schema).Count(ctx, &interfaces.Query{})
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, int64(len(gdb.CategoryFixtures)), count(entities.CategorySchema))
	assert.Equal(t, int64(len(gdb.UserFixtures)), count(entities.UserSchema))

	// Every seeded post belongs to a seeded account
	posts, err := database.Repository(entities.PostSchema).FindMany(ctx, &interfaces.Query{})
	require.NoError(t, err)
	require.NotEmpty(t, posts.Data)
	for _, post := range posts.Data {
		assert.NotEmpty(t, post["owner_id"])
	}
}
