package services

import (
	"context"
	"fmt"

	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/sirupsen/logrus"
)

// BrandService maneja la lógica de negocio para Brand
type BrandService struct {
	db        Transactor
	brandRepo BrandStore
	events    notifier
	logger    *logrus.Logger
}

// NewBrandService crea una nueva instancia del servicio
func NewBrandService(db Transactor, brandRepo BrandStore, publisher EventPublisher, logger *logrus.Logger) *BrandService {
	return &BrandService{
		db:        db,
		brandRepo: brandRepo,
		events:    notifier{publisher: publisher, logger: logger},
		logger:    logger,
	}
}

// Create crea una nueva marca
func (s *BrandService) Create(ctx context.Context, req *models.CreateBrandRequest) (*models.Brand, error) {
	if err := validateName("name", req.Name, brandNameMaxLen); err != nil {
		return nil, err
	}

	brand := &models.Brand{Name: req.Name}
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		if err := s.ensureNameAvailable(ctx, q, req.Name); err != nil {
			return err
		}
		if err := s.brandRepo.Create(ctx, q, brand); err != nil {
			if isDuplicate(err) {
				return models.ConflictOn("name", "Brand name already exists")
			}
			return fmt.Errorf("error creating brand: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"brand_id": brand.ID,
		"name":     brand.Name,
	}).Info("Brand created successfully")
	s.events.notify(ctx, EventBrandCreated, map[string]any{"brand_id": brand.ID, "name": brand.Name})

	return brand, nil
}

// GetByID obtiene una marca por ID
func (s *BrandService) GetByID(ctx context.Context, id int64) (*models.Brand, error) {
	var brand *models.Brand
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		var err error
		brand, err = s.getBrand(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return brand, nil
}

// List obtiene una página de marcas
func (s *BrandService) List(ctx context.Context, skip, limit int) ([]models.Brand, error) {
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}

	var brands []models.Brand
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		var err error
		brands, err = s.brandRepo.List(ctx, q, skip, limit)
		if err != nil {
			return fmt.Errorf("error listing brands: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return brands, nil
}

// Search busca marcas por subcadena del nombre
func (s *BrandService) Search(ctx context.Context, name string) ([]models.Brand, error) {
	term, err := searchTerm("name", name)
	if err != nil {
		return nil, err
	}

	var brands []models.Brand
	err = s.db.WithTransaction(ctx, func(q database.Querier) error {
		var err error
		brands, err = s.brandRepo.SearchByName(ctx, q, term)
		if err != nil {
			return fmt.Errorf("error searching brands: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return brands, nil
}

// Update aplica los campos presentes de la petición
func (s *BrandService) Update(ctx context.Context, id int64, req *models.UpdateBrandRequest) (*models.Brand, error) {
	if err := requiredOptional("name", req.Name); err != nil {
		return nil, err
	}
	if req.Name.Set {
		if err := validateName("name", *req.Name.Value, brandNameMaxLen); err != nil {
			return nil, err
		}
	}

	var brand *models.Brand
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		var err error
		brand, err = s.getBrand(ctx, q, id)
		if err != nil {
			return err
		}

		if req.Name.Set && *req.Name.Value != brand.Name {
			if err := s.ensureNameAvailable(ctx, q, *req.Name.Value); err != nil {
				return err
			}
			brand.Name = *req.Name.Value
		}

		if err := s.brandRepo.Update(ctx, q, brand); err != nil {
			switch {
			case isNotFound(err):
				return models.NotFound("Brand not found")
			case isDuplicate(err):
				return models.ConflictOn("name", "Brand name already exists")
			}
			return fmt.Errorf("error updating brand: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("brand_id", brand.ID).Info("Brand updated successfully")
	s.events.notify(ctx, EventBrandUpdated, map[string]any{"brand_id": brand.ID, "name": brand.Name})

	return brand, nil
}

// Delete elimina una marca; sus productos quedan sin marca
func (s *BrandService) Delete(ctx context.Context, id int64) error {
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		if err := s.brandRepo.Delete(ctx, q, id); err != nil {
			if isNotFound(err) {
				return models.NotFound("Brand not found")
			}
			return fmt.Errorf("error deleting brand: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithField("brand_id", id).Info("Brand deleted successfully")
	s.events.notify(ctx, EventBrandDeleted, map[string]any{"brand_id": id})

	return nil
}

func (s *BrandService) getBrand(ctx context.Context, q database.Querier, id int64) (*models.Brand, error) {
	brand, err := s.brandRepo.GetByID(ctx, q, id)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("Brand not found")
		}
		return nil, fmt.Errorf("error getting brand: %w", err)
	}
	return brand, nil
}

func (s *BrandService) ensureNameAvailable(ctx context.Context, q database.Querier, name string) error {
	_, err := s.brandRepo.GetByName(ctx, q, name)
	switch {
	case err == nil:
		s.logger.WithField("name", name).Warn("Brand with name already exists")
		return models.ConflictOn("name", "Brand name already exists")
	case isNotFound(err):
		return nil
	default:
		return fmt.Errorf("error checking brand name: %w", err)
	}
}
