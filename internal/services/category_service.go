package services

import (
	"context"
	"fmt"

	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/sirupsen/logrus"
)

// CategoryService maneja la lógica de negocio para Category
type CategoryService struct {
	db           Transactor
	categoryRepo CategoryStore
	events       notifier
	logger       *logrus.Logger
}

// NewCategoryService crea una nueva instancia del servicio
func NewCategoryService(db Transactor, categoryRepo CategoryStore, publisher EventPublisher, logger *logrus.Logger) *CategoryService {
	return &CategoryService{
		db:           db,
		categoryRepo: categoryRepo,
		events:       notifier{publisher: publisher, logger: logger},
		logger:       logger,
	}
}

// Create crea una nueva categoría
func (s *CategoryService) Create(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	if err := validateName("name", req.Name, categoryNameMaxLen); err != nil {
		return nil, err
	}

	category := &models.Category{Name: req.Name, Description: req.Description}
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		if err := s.ensureNameAvailable(ctx, q, req.Name); err != nil {
			return err
		}
		if err := s.categoryRepo.Create(ctx, q, category); err != nil {
			if isDuplicate(err) {
				return models.ConflictOn("name", "Category name already exists")
			}
			return fmt.Errorf("error creating category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("Category created successfully")
	s.events.notify(ctx, EventCategoryCreated, map[string]any{"category_id": category.ID, "name": category.Name})

	return category, nil
}

// GetByID obtiene una categoría por ID
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var category *models.Category
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		var err error
		category, err = s.getCategory(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// List obtiene una página de categorías
func (s *CategoryService) List(ctx context.Context, skip, limit int) ([]models.Category, error) {
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}

	var categories []models.Category
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		var err error
		categories, err = s.categoryRepo.List(ctx, q, skip, limit)
		if err != nil {
			return fmt.Errorf("error listing categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Search busca categorías por subcadena del nombre
func (s *CategoryService) Search(ctx context.Context, name string) ([]models.Category, error) {
	term, err := searchTerm("name", name)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	err = s.db.WithTransaction(ctx, func(q database.Querier) error {
		var err error
		categories, err = s.categoryRepo.SearchByName(ctx, q, term)
		if err != nil {
			return fmt.Errorf("error searching categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Update aplica los campos presentes de la petición
func (s *CategoryService) Update(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error) {
	if err := requiredOptional("name", req.Name); err != nil {
		return nil, err
	}
	if req.Name.Set {
		if err := validateName("name", *req.Name.Value, categoryNameMaxLen); err != nil {
			return nil, err
		}
	}

	var category *models.Category
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		var err error
		category, err = s.getCategory(ctx, q, id)
		if err != nil {
			return err
		}

		if req.Name.Set && *req.Name.Value != category.Name {
			if err := s.ensureNameAvailable(ctx, q, *req.Name.Value); err != nil {
				return err
			}
			category.Name = *req.Name.Value
		}
		if req.Description.Set {
			category.Description = req.Description.Value
		}

		if err := s.categoryRepo.Update(ctx, q, category); err != nil {
			switch {
			case isNotFound(err):
				return models.NotFound("Category not found")
			case isDuplicate(err):
				return models.ConflictOn("name", "Category name already exists")
			}
			return fmt.Errorf("error updating category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("category_id", category.ID).Info("Category updated successfully")
	s.events.notify(ctx, EventCategoryUpdated, map[string]any{"category_id": category.ID, "name": category.Name})

	return category, nil
}

// Delete elimina una categoría junto con sus vínculos a productos
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		if err := s.categoryRepo.Delete(ctx, q, id); err != nil {
			if isNotFound(err) {
				return models.NotFound("Category not found")
			}
			return fmt.Errorf("error deleting category: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithField("category_id", id).Info("Category deleted successfully")
	s.events.notify(ctx, EventCategoryDeleted, map[string]any{"category_id": id})

	return nil
}

func (s *CategoryService) getCategory(ctx context.Context, q database.Querier, id int64) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, q, id)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("Category not found")
		}
		return nil, fmt.Errorf("error getting category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) ensureNameAvailable(ctx context.Context, q database.Querier, name string) error {
	_, err := s.categoryRepo.GetByName(ctx, q, name)
	switch {
	case err == nil:
		s.logger.WithField("name", name).Warn("Category with name already exists")
		return models.ConflictOn("name", "Category name already exists")
	case isNotFound(err):
		return nil
	default:
		return fmt.Errorf("error checking category name: %w", err)
	}
}
