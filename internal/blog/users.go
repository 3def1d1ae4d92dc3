package blog

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/auth"
	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// UserService handles registration, credential checks, and user listings
type UserService struct {
	repos    *Repositories
	policy   auth.PasswordPolicy
	logger   *zap.SugaredLogger
	pageSize int
}

// NewUserService creates a user service
func NewUserService(repos *Repositories, policy auth.PasswordPolicy, pageSize int, logger *zap.SugaredLogger) *UserService {
	return &UserService{
		repos:    repos,
		policy:   policy,
		logger:   logger,
		pageSize: pageSize,
	}
}

// RegisterInput carries the registration form fields
type RegisterInput struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Register validates the input, hashes the password, and creates the
// account. All field violations are collected into one validation error.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*entities.User, error) {
	fields := map[string][]string{}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if input.Username == "" {
		fields["username"] = append(fields["username"], "username is required")
	}
	if input.Email == "" {
		fields["email"] = append(fields["email"], "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		fields["email"] = append(fields["email"], "email is invalid")
	}
	if input.FirstName == "" {
		fields["first_name"] = append(fields["first_name"], "first name is required")
	} else if !isTitleCased(input.FirstName) {
		fields["first_name"] = append(fields["first_name"], "first name must start with an uppercase letter")
	}
	if input.LastName == "" {
		fields["last_name"] = append(fields["last_name"], "last name is required")
	}

	if input.Password != input.PasswordConfirmation {
		fields["password"] = append(fields["password"], "passwords do not match")
	}
	violations := s.policy.Validate(input.Password, input.Username, input.Email, input.FirstName, input.LastName)
	fields["password"] = append(fields["password"], violations...)
	if len(fields["password"]) == 0 {
		delete(fields, "password")
	}

	if len(fields) > 0 {
		return nil, NewValidation(fields)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, NewInternal(err)
	}

	record, err := s.repos.Users.Create(ctx, map[string]interface{}{
		"username":      input.Username,
		"email":         input.Email,
		"first_name":    input.FirstName,
		"last_name":     input.LastName,
		"password_hash": hash,
		"is_admin":      false,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrUniqueConstraint) {
			return nil, NewConflict("username or email already taken")
		}
		return nil, NewInternal(err)
	}

	user := entities.UserFromRecord(record)
	s.logger.Infow("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks a username/password pair and returns the account.
// Unknown usernames and wrong passwords fail identically.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entities.User, error) {
	record, err := s.repos.Users.FindOne(ctx, &interfaces.Query{
		Where: eqFilter("username", username),
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, NewUnauthenticated("invalid credentials")
		}
		return nil, NewInternal(err)
	}

	user := entities.UserFromRecord(record)
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, NewUnauthenticated("invalid credentials")
	}

	return user, nil
}

// GetByID returns a single user
func (s *UserService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	record, err := s.repos.Users.GetByID(ctx, interfaces.StringID(id))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, NewNotFound("user")
		}
		return nil, NewInternal(err)
	}
	return entities.UserFromRecord(record), nil
}

// List returns one page of users ordered by creation time
func (s *UserService) List(ctx context.Context, page int) ([]*entities.User, int64, error) {
	limit, offset := pageBounds(page, s.pageSize)
	result, err := s.repos.Users.FindMany(ctx, &interfaces.Query{
		OrderBy: []interfaces.OrderBy{{Field: "created_at", Direction: "asc"}},
		Limit:   &limit,
		Offset:  &offset,
	})
	if err != nil {
		return nil, 0, NewInternal(err)
	}

	users := make([]*entities.User, 0, len(result.Data))
	for _, record := range result.Data {
		users = append(users, entities.UserFromRecord(record))
	}
	return users, result.Total, nil
}

// GetDetail returns a user together with every comment they wrote
func (s *UserService) GetDetail(ctx context.Context, id string) (*entities.User, []*entities.Comment, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.repos.Comments.FindMany(ctx, &interfaces.Query{
		Where:   eqFilter("owner_id", id),
		OrderBy: []interfaces.OrderBy{{Field: "created_at", Direction: "asc"}},
	})
	if err != nil {
		return nil, nil, NewInternal(err)
	}

	comments := make([]*entities.Comment, 0, len(result.Data))
	for _, record := range result.Data {
		comments = append(comments, entities.CommentFromRecord(record))
	}
	return user, comments, nil
}

// Delete removes a user account. Only administrators or the account holder
// may delete; posts and comments cascade away with the account.
func (s *UserService) Delete(ctx context.Context, actor *entities.User, id string) error {
	if actor == nil {
		return NewUnauthenticated("authentication required")
	}
	if actor.ID != id && !IsAdmin(actor) {
		return NewPermissionDenied("cannot delete another user's account")
	}

	if err := s.repos.Users.Delete(ctx, interfaces.StringID(id)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return NewNotFound("user")
		}
		return NewInternal(err)
	}

	s.logger.Infow("user deleted", "user_id", id, "actor_id", actor.ID)
	return nil
}

// isTitleCased reports whether every word starts with an uppercase letter
// followed by lowercase ones.
func isTitleCased(s string) bool {
	expectUpper := true
	for _, r := range s {
		if !unicode.IsLetter(r) {
			expectUpper = true
			continue
		}
		if expectUpper {
			if !unicode.IsUpper(r) {
				return false
			}
		} else if unicode.IsUpper(r) {
			return false
		}
		expectUpper = false
	}
	return true
}

// pageBounds converts a 1-based page number into limit/offset
func pageBounds(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
