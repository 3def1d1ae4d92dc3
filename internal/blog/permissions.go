package blog

import "github.com/inkpost/inkpost-backend/internal/db/entities"

// Permission predicates. Each endpoint names the predicates it requires, so
// an audit of who can do what reads directly from the call sites.

// IsAdmin reports whether the actor holds the administrator flag
func IsAdmin(actor *entities.User) bool {
	return actor != nil && actor.IsAdmin
}

// IsPostOwner reports whether the actor owns the post
func IsPostOwner(actor *entities.User, post *entities.Post) bool {
	return actor != nil && post != nil && actor.ID == post.OwnerID
}

// IsCommentAuthor reports whether the actor wrote the comment
func IsCommentAuthor(actor *entities.User, comment *entities.Comment) bool {
	return actor != nil && comment != nil && actor.ID == comment.OwnerID
}

// CanEditPost allows only the owner to modify a post
func CanEditPost(actor *entities.User, post *entities.Post) bool {
	return IsPostOwner(actor, post)
}

// CanDeletePost allows the owner or an administrator to remove a post
func CanDeletePost(actor *entities.User, post *entities.Post) bool {
	return IsPostOwner(actor, post) || IsAdmin(actor)
}

// CanDeleteComment allows the comment author, the owner of the commented
// post, or an administrator to remove a comment.
func CanDeleteComment(actor *entities.User, comment *entities.Comment, post *entities.Post) bool {
	return IsCommentAuthor(actor, comment) || IsPostOwner(actor, post) || IsAdmin(actor)
}

// CanManageCategories allows only administrators to create or delete
// categories.
func CanManageCategories(actor *entities.User) bool {
	return IsAdmin(actor)
}
