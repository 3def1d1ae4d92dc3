package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	db := NewDatabase()
	ctx := context.Background()
	require.NoError(t, db.Connect(ctx))
	require.NoError(t, db.Migrate(ctx, []*interfaces.Schema{
		entities.UserSchema,
		entities.CategorySchema,
		entities.PostSchema,
		entities.PostImageSchema,
		entities.CommentSchema,
		entities.FavoriteSchema,
		entities.LikeSchema,
	}))
	t.Cleanup(func() { _ = db.Disconnect(ctx) })
	return db
}

func createUser(t *testing.T, db *Database, username string) map[string]interface{} {
	t.Helper()
	record, err := db.Repository(entities.UserSchema).Create(context.Background(), map[string]interface{}{
		"username":      username,
		"email":         username + "@example.com",
		"first_name":    "Test",
		"last_name":     "User",
		"password_hash": "x",
		"is_admin":      false,
	})
	require.NoError(t, err)
	return record
}

func createPost(t *testing.T, db *Database, title, ownerID string) map[string]interface{} {
	t.Helper()
	record, err := db.Repository(entities.PostSchema).Create(context.Background(), map[string]interface{}{
		"title":    title,
		"body":     "body",
		"owner_id": ownerID,
	})
	require.NoError(t, err)
	return record
}

func TestCreateEnforcesUniqueFields(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	createUser(t, db, "alice")

	_, err := db.Repository(entities.UserSchema).Create(ctx, map[string]interface{}{
		"username":      "alice",
		"email":         "other@example.com",
		"first_name":    "Other",
		"last_name":     "User",
		"password_hash": "x",
	})
	assert.ErrorIs(t, err, interfaces.ErrUniqueConstraint)
}

func TestCreateEnforcesCompositeUniqueIndex(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	user := createUser(t, db, "alice")
	post := createPost(t, db, "hello", user["id"].(string))

	favorites := db.Repository(entities.FavoriteSchema)
	pair := map[string]interface{}{
		"owner_id": user["id"],
		"post_id":  post["id"],
	}

	_, err := favorites.Create(ctx, pair)
	require.NoError(t, err)

	_, err = favorites.Create(ctx, pair)
	assert.ErrorIs(t, err, interfaces.ErrUniqueConstraint)
}

func TestCreateEnforcesForeignKeys(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	_, err := db.Repository(entities.PostSchema).Create(ctx, map[string]interface{}{
		"title":    "orphan",
		"body":     "body",
		"owner_id": "no-such-user",
	})
	assert.ErrorIs(t, err, interfaces.ErrForeignKeyConstraint)
}

func TestDeleteCascadesThroughReferences(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	user := createUser(t, db, "alice")
	commenter := createUser(t, db, "bob")
	post := createPost(t, db, "cascade me", user["id"].(string))

	comments := db.Repository(entities.CommentSchema)
	_, err := comments.Create(ctx, map[string]interface{}{
		"content":  "nice",
		"owner_id": commenter["id"],
		"post_id":  post["id"],
	})
	require.NoError(t, err)

	// Deleting the user removes their post, and the post's comments with it
	require.NoError(t, db.Repository(entities.UserSchema).Delete(ctx, interfaces.StringID(user["id"].(string))))

	_, err = db.Repository(entities.PostSchema).GetByID(ctx, interfaces.StringID(post["id"].(string)))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	count, err := comments.Count(ctx, &interfaces.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDeleteSetsNullReferences(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	user := createUser(t, db, "alice")
	category, err := db.Repository(entities.CategorySchema).Create(ctx, map[string]interface{}{"name": "Travel"})
	require.NoError(t, err)

	posts := db.Repository(entities.PostSchema)
	post, err := posts.Create(ctx, map[string]interface{}{
		"title":       "categorized",
		"body":        "body",
		"owner_id":    user["id"],
		"category_id": category["id"],
	})
	require.NoError(t, err)

	require.NoError(t, db.Repository(entities.CategorySchema).Delete(ctx, interfaces.StringID(category["id"].(string))))

	updated, err := posts.GetByID(ctx, interfaces.StringID(post["id"].(string)))
	require.NoError(t, err)
	assert.Nil(t, updated["category_id"])
}

func TestDeleteWhereReportsRemovedCount(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	user := createUser(t, db, "alice")
	post := createPost(t, db, "liked", user["id"].(string))

	likes := db.Repository(entities.LikeSchema)
	_, err := likes.Create(ctx, map[string]interface{}{
		"owner_id": user["id"],
		"post_id":  post["id"],
	})
	require.NoError(t, err)

	where := &interfaces.Filters{Conditions: []interfaces.Filter{
		{Field: "owner_id", Value: user["id"]},
		{Field: "post_id", Value: post["id"]},
	}}

	removed, err := likes.DeleteWhere(ctx, where)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = likes.DeleteWhere(ctx, where)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestFindManyFiltersSortsAndPaginates(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	user := createUser(t, db, "alice")
	for _, title := range []string{"go basics", "go generics", "rust basics", "zig notes", "go modules"} {
		createPost(t, db, title, user["id"].(string))
	}

	posts := db.Repository(entities.PostSchema)
	limit, offset := 2, 0
	page, err := posts.FindMany(ctx, &interfaces.Query{
		Where: &interfaces.Filters{Conditions: []interfaces.Filter{
			{Field: "title", Operator: &interfaces.FilterOperator{Like: "go"}},
		}},
		OrderBy: []interfaces.OrderBy{{Field: "title", Direction: "asc"}},
		Limit:   &limit,
		Offset:  &offset,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "go basics", page.Data[0]["title"])
	assert.Equal(t, "go generics", page.Data[1]["title"])
}

func TestTransactionRollbackRestoresState(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	createUser(t, db, "alice")

	err := db.Transaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		createUser(t, db, "bob")
		return assert.AnError
	})
	require.Error(t, err)

	count, err := db.Repository(entities.UserSchema).Count(ctx, &interfaces.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
