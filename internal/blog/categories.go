package blog

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// CategoryService handles the category reference data. Reads are public;
// writes are restricted to administrators.
type CategoryService struct {
	repos  *Repositories
	logger *zap.SugaredLogger
}

// NewCategoryService creates a category service
func NewCategoryService(repos *Repositories, logger *zap.SugaredLogger) *CategoryService {
	return &CategoryService{repos: repos, logger: logger}
}

// List returns every category ordered by name
func (s *CategoryService) List(ctx context.Context) ([]*entities.Category, error) {
	result, err := s.repos.Categories.FindMany(ctx, &interfaces.Query{
		OrderBy: []interfaces.OrderBy{{Field: "name", Direction: "asc"}},
	})
	if err != nil {
		return nil, NewInternal(err)
	}

	categories := make([]*entities.Category, 0, len(result.Data))
	for _, record := range result.Data {
		categories = append(categories, entities.CategoryFromRecord(record))
	}
	return categories, nil
}

// Get returns a single category
func (s *CategoryService) Get(ctx context.Context, id string) (*entities.Category, error) {
	record, err := s.repos.Categories.GetByID(ctx, interfaces.StringID(id))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, NewNotFound("category")
		}
		return nil, NewInternal(err)
	}
	return entities.CategoryFromRecord(record), nil
}

// Create adds a category. Administrators only; names are unique.
func (s *CategoryService) Create(ctx context.Context, actor *entities.User, name string) (*entities.Category, error) {
	if actor == nil {
		return nil, NewUnauthenticated("authentication required")
	}
	if !CanManageCategories(actor) {
		return nil, NewPermissionDenied("only administrators can manage categories")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidation(map[string][]string{"name": {"name is required"}})
	}

	record, err := s.repos.Categories.Create(ctx, map[string]interface{}{"name": name})
	if err != nil {
		if errors.Is(err, interfaces.ErrUniqueConstraint) {
			return nil, NewConflict("a category with this name already exists")
		}
		return nil, NewInternal(err)
	}

	category := entities.CategoryFromRecord(record)
	s.logger.Infow("category created", "category_id", category.ID, "name", name)
	return category, nil
}

// Delete removes a category. Administrators only; posts referencing it keep
// existing with a null category.
func (s *CategoryService) Delete(ctx context.Context, actor *entities.User, id string) error {
	if actor == nil {
		return NewUnauthenticated("authentication required")
	}
	if !CanManageCategories(actor) {
		return NewPermissionDenied("only administrators can manage categories")
	}

	if err := s.repos.Categories.Delete(ctx, interfaces.StringID(id)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return NewNotFound("category")
		}
		return NewInternal(err)
	}

	s.logger.Infow("category deleted", "category_id", id, "actor_id", actor.ID)
	return nil
}
