package blog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/auth"
	gdb "github.com/inkpost/inkpost-backend/internal/db"
	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/media"
)

type testServices struct {
	users      *UserService
	posts      *PostService
	comments   *CommentService
	categories *CategoryService
	reactions  *ReactionService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	database := gdb.NewInMemoryDatabase()
	ctx := context.Background()
	require.NoError(t, gdb.ConnectAndMigrate(ctx, database, gdb.AllSchemas()))
	t.Cleanup(func() { _ = database.Disconnect(ctx) })

	storage, err := media.NewStorage(t.TempDir(), zap.NewNop().Sugar())
	require.NoError(t, err)

	repos := NewRepositories(database)
	logger := zap.NewNop().Sugar()
	policy := auth.PasswordPolicy{MinLength: 8}

	return &testServices{
		users:      NewUserService(repos, policy, 4, logger),
		posts:      NewPostService(repos, storage, 4, logger),
		comments:   NewCommentService(repos, logger),
		categories: NewCategoryService(repos, logger),
		reactions:  NewReactionService(repos, logger),
	}
}

func registerUser(t *testing.T, svc *testServices, username string) *entities.User {
	t.Helper()
	user, err := svc.users.Register(context.Background(), RegisterInput{
		Username:             username,
		Email:                username + "@example.com",
		FirstName:            "Casey",
		LastName:             "Reed",
		Password:             "tr0ub4dor-and-more",
		PasswordConfirmation: "tr0ub4dor-and-more",
	})
	require.NoError(t, err)
	return user
}

func makeAdmin(t *testing.T, svc *testServices, user *entities.User) *entities.User {
	t.Helper()
	admin := *user
	admin.IsAdmin = true
	return &admin
}

func TestRegisterRejectsMismatchedPasswords(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.users.Register(context.Background(), RegisterInput{
		Username:             "casey",
		Email:                "casey@example.com",
		FirstName:            "Casey",
		Password:             "tr0ub4dor-and-more",
		PasswordConfirmation: "something-else",
	})

	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, KindValidation, domainErr.Kind)
	assert.Contains(t, domainErr.Fields["password"], "passwords do not match")
}

func TestRegisterRejectsLowercaseFirstName(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.users.Register(context.Background(), RegisterInput{
		Username:             "casey",
		Email:                "casey@example.com",
		FirstName:            "casey",
		Password:             "tr0ub4dor-and-more",
		PasswordConfirmation: "tr0ub4dor-and-more",
	})

	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, KindValidation, domainErr.Kind)
	assert.NotEmpty(t, domainErr.Fields["first_name"])
}

func TestRegisterRejectsBlankLastName(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.users.Register(context.Background(), RegisterInput{
		Username:             "casey",
		Email:                "casey@example.com",
		FirstName:            "Casey",
		LastName:             "  ",
		Password:             "tr0ub4dor-and-more",
		PasswordConfirmation: "tr0ub4dor-and-more",
	})

	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, KindValidation, domainErr.Kind)
	assert.Contains(t, domainErr.Fields["last_name"], "last name is required")
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.users.Register(context.Background(), RegisterInput{
		Username:             "casey",
		Email:                "casey@example.com",
		FirstName:            "Casey",
		Password:             "12345678901",
		PasswordConfirmation: "12345678901",
	})

	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, KindValidation, domainErr.Kind)
	assert.NotEmpty(t, domainErr.Fields["password"])
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := newTestServices(t)
	registerUser(t, svc, "casey")

	_, err := svc.users.Register(context.Background(), RegisterInput{
		Username:             "casey",
		Email:                "other@example.com",
		FirstName:            "Casey",
		Password:             "tr0ub4dor-and-more",
		PasswordConfirmation: "tr0ub4dor-and-more",
	})

	assert.Equal(t, KindConflict, KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	svc := newTestServices(t)
	registerUser(t, svc, "casey")

	user, err := svc.users.Authenticate(context.Background(), "casey", "tr0ub4dor-and-more")
	require.NoError(t, err)
	assert.Equal(t, "casey", user.Username)

	_, err = svc.users.Authenticate(context.Background(), "casey", "wrong")
	assert.Equal(t, KindUnauthenticated, KindOf(err))

	_, err = svc.users.Authenticate(context.Background(), "nobody", "tr0ub4dor-and-more")
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestPostListPaginatesAndOrdersOldestFirst(t *testing.T) {
	svc := newTestServices(t)
	owner := registerUser(t, svc, "casey")
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := svc.posts.Create(ctx, owner, CreatePostInput{Title: fmt.Sprintf("post %d", i)})
		require.NoError(t, err)
	}

	first, total, err := svc.posts.List(ctx, PostFilter{}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, first, 4)
	assert.Equal(t, "post 0", first[0].Title)
	assert.Equal(t, "post 3", first[3].Title)

	second, _, err := svc.posts.List(ctx, PostFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "post 4", second[0].Title)
}

func TestPostListFilters(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, svc, "alice")
	bob := registerUser(t, svc, "bob")

	_, err := svc.posts.Create(ctx, alice, CreatePostInput{Title: "Go concurrency patterns"})
	require.NoError(t, err)
	_, err = svc.posts.Create(ctx, alice, CreatePostInput{Title: "Gardening in spring"})
	require.NoError(t, err)
	_, err = svc.posts.Create(ctx, bob, CreatePostInput{Title: "Go modules explained"})
	require.NoError(t, err)

	// Title search is a case-insensitive substring match
	posts, total, err := svc.posts.List(ctx, PostFilter{Search: "go "}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, posts, 2)

	posts, _, err = svc.posts.List(ctx, PostFilter{OwnerID: bob.ID}, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Go modules explained", posts[0].Title)
}

func TestPostCreateRejectsDuplicateTitle(t *testing.T) {
	svc := newTestServices(t)
	owner := registerUser(t, svc, "casey")
	ctx := context.Background()

	_, err := svc.posts.Create(ctx, owner, CreatePostInput{Title: "unique title"})
	require.NoError(t, err)

	_, err = svc.posts.Create(ctx, owner, CreatePostInput{Title: "unique title"})
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestPostUpdateIsOwnerOnly(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, svc, "alice")
	stranger := registerUser(t, svc, "bob")

	post, err := svc.posts.Create(ctx, owner, CreatePostInput{Title: "mine"})
	require.NoError(t, err)

	newTitle := "still mine"
	_, err = svc.posts.Update(ctx, stranger, post.ID, UpdatePostInput{Title: &newTitle})
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	// Even an admin cannot edit someone else's post
	admin := makeAdmin(t, svc, stranger)
	_, err = svc.posts.Update(ctx, admin, post.ID, UpdatePostInput{Title: &newTitle})
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	updated, err := svc.posts.Update(ctx, owner, post.ID, UpdatePostInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "still mine", updated.Title)
}

func TestPostDeleteAllowsOwnerAndAdmin(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, svc, "alice")
	stranger := registerUser(t, svc, "bob")

	post, err := svc.posts.Create(ctx, owner, CreatePostInput{Title: "target"})
	require.NoError(t, err)

	err = svc.posts.Delete(ctx, stranger, post.ID)
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	admin := makeAdmin(t, svc, stranger)
	require.NoError(t, svc.posts.Delete(ctx, admin, post.ID))

	_, err = svc.posts.Get(ctx, post.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCommentOnMissingPost(t *testing.T) {
	svc := newTestServices(t)
	author := registerUser(t, svc, "casey")

	_, err := svc.comments.Create(context.Background(), author, "no-such-post", "hello")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCommentDeletePermissions(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	postOwner := registerUser(t, svc, "owner")
	author := registerUser(t, svc, "author")
	stranger := registerUser(t, svc, "stranger")

	post, err := svc.posts.Create(ctx, postOwner, CreatePostInput{Title: "discussion"})
	require.NoError(t, err)

	newComment := func() *entities.Comment {
		comment, err := svc.comments.Create(ctx, author, post.ID, "a take")
		require.NoError(t, err)
		return comment
	}

	// A bystander cannot delete
	comment := newComment()
	err = svc.comments.Delete(ctx, stranger, comment.ID)
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	// The author can
	require.NoError(t, svc.comments.Delete(ctx, author, comment.ID))

	// The post owner can
	comment = newComment()
	require.NoError(t, svc.comments.Delete(ctx, postOwner, comment.ID))

	// An administrator can
	comment = newComment()
	require.NoError(t, svc.comments.Delete(ctx, makeAdmin(t, svc, stranger), comment.ID))
}

func TestFavoriteAddIsIdempotentConflict(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, svc, "owner")
	fan := registerUser(t, svc, "fan")

	post, err := svc.posts.Create(ctx, owner, CreatePostInput{Title: "favorited"})
	require.NoError(t, err)

	_, err = svc.reactions.AddFavorite(ctx, fan, post.ID)
	require.NoError(t, err)

	_, err = svc.reactions.AddFavorite(ctx, fan, post.ID)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestConcurrentFavoriteAddsInsertExactlyOnce(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, svc, "owner")
	fan := registerUser(t, svc, "fan")

	post, err := svc.posts.Create(ctx, owner, CreatePostInput{Title: "contested"})
	require.NoError(t, err)

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, addErr := svc.reactions.AddFavorite(ctx, fan, post.ID)
			errs <- addErr
		}()
	}
	wg.Wait()
	close(errs)

	var created, conflicts int
	for addErr := range errs {
		switch {
		case addErr == nil:
			created++
		case KindOf(addErr) == KindConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", addErr)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)

	favorites, err := svc.reactions.ListFavorites(ctx, fan.ID)
	require.NoError(t, err)
	assert.Len(t, favorites, 1)
}

func TestFavoriteRemoveAndReAdd(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, svc, "owner")
	fan := registerUser(t, svc, "fan")

	post, err := svc.posts.Create(ctx, owner, CreatePostInput{Title: "favorited"})
	require.NoError(t, err)

	// Removing before adding is a 404
	err = svc.reactions.RemoveFavorite(ctx, fan, post.ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.reactions.AddFavorite(ctx, fan, post.ID)
	require.NoError(t, err)
	require.NoError(t, svc.reactions.RemoveFavorite(ctx, fan, post.ID))

	// After removal the pair is free again
	_, err = svc.reactions.AddFavorite(ctx, fan, post.ID)
	require.NoError(t, err)

	favorites, err := svc.reactions.ListFavorites(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, post.ID, favorites[0].ID)
}

func TestLikeCountsAppearOnPostDetail(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, svc, "owner")
	fanA := registerUser(t, svc, "fana")
	fanB := registerUser(t, svc, "fanb")

	post, err := svc.posts.Create(ctx, owner, CreatePostInput{Title: "popular"})
	require.NoError(t, err)

	_, err = svc.reactions.AddLike(ctx, fanA, post.ID)
	require.NoError(t, err)
	_, err = svc.reactions.AddLike(ctx, fanB, post.ID)
	require.NoError(t, err)
	_, err = svc.reactions.AddFavorite(ctx, fanA, post.ID)
	require.NoError(t, err)

	detail, err := svc.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.LikeCount)
	assert.Equal(t, int64(1), detail.FavoriteCount)

	likers, err := svc.reactions.ListPostLikers(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, likers, 2)
}

func TestCategoryManagementIsAdminOnly(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	user := registerUser(t, svc, "casey")

	_, err := svc.categories.Create(ctx, user, "Travel")
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	admin := makeAdmin(t, svc, user)
	category, err := svc.categories.Create(ctx, admin, "Travel")
	require.NoError(t, err)

	_, err = svc.categories.Create(ctx, admin, "Travel")
	assert.Equal(t, KindConflict, KindOf(err))

	err = svc.categories.Delete(ctx, user, category.ID)
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	require.NoError(t, svc.categories.Delete(ctx, admin, category.ID))
}

func TestCategoryDeleteLeavesPostsUncategorized(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	user := registerUser(t, svc, "casey")
	admin := makeAdmin(t, svc, user)

	category, err := svc.categories.Create(ctx, admin, "Travel")
	require.NoError(t, err)

	post, err := svc.posts.Create(ctx, user, CreatePostInput{
		Title:      "A week in Lisbon",
		CategoryID: &category.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, post.CategoryID)

	require.NoError(t, svc.categories.Delete(ctx, admin, category.ID))

	detail, err := svc.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Post.CategoryID)
}

func TestUserDeleteCascadesPosts(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	user := registerUser(t, svc, "casey")

	post, err := svc.posts.Create(ctx, user, CreatePostInput{Title: "doomed"})
	require.NoError(t, err)

	require.NoError(t, svc.users.Delete(ctx, user, user.ID))

	_, err = svc.posts.Get(ctx, post.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUserDetailIncludesComments(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, svc, "owner")
	commenter := registerUser(t, svc, "commenter")

	post, err := svc.posts.Create(ctx, owner, CreatePostInput{Title: "commented"})
	require.NoError(t, err)

	_, err = svc.comments.Create(ctx, commenter, post.ID, "first")
	require.NoError(t, err)
	_, err = svc.comments.Create(ctx, commenter, post.ID, "second")
	require.NoError(t, err)

	user, comments, err := svc.users.GetDetail(ctx, commenter.ID)
	require.NoError(t, err)
	assert.Equal(t, "commenter", user.Username)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
}
