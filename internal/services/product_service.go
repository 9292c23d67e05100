package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// measureValueLimit es el primer valor que no cabe en NUMERIC(10,4)
var measureValueLimit = decimal.New(1, 6)

// measureValueScale son los decimales que conserva NUMERIC(10,4)
const measureValueScale = 4

// ProductService maneja la lógica de negocio para Product
type ProductService struct {
	db           Transactor
	productRepo  ProductStore
	brandRepo    BrandStore
	categoryRepo CategoryStore
	linkRepo     ProductCategoryStore
	resolver     *RelationResolver
	events       notifier
	logger       *logrus.Logger
}

// NewProductService crea una nueva instancia del servicio
func NewProductService(db Transactor, productRepo ProductStore, brandRepo BrandStore, categoryRepo CategoryStore, linkRepo ProductCategoryStore, publisher EventPublisher, logger *logrus.Logger) *ProductService {
	return &ProductService{
		db:           db,
		productRepo:  productRepo,
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		linkRepo:     linkRepo,
		resolver:     NewRelationResolver(brandRepo, categoryRepo, linkRepo),
		events:       notifier{publisher: publisher, logger: logger},
		logger:       logger,
	}
}

// Create crea un nuevo producto con sus vínculos a categorías
func (s *ProductService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.ProductRead, error) {
	product := &models.Product{
		Barcode:      normalizeBarcode(req.Barcode),
		Name:         req.Name,
		Description:  req.Description,
		BrandID:      req.BrandID,
		MeasureType:  req.MeasureType,
		MeasureValue: req.MeasureValue,
		Qtt:          req.Qtt,
		Status:       true,
		Images:       req.Images,
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	categoryIDs := uniqueIDs(req.CategoryIDs)

	var read *models.ProductRead
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		// Todas las verificaciones preceden a cualquier escritura
		if product.Barcode != nil {
			if err := s.ensureBarcodeAvailable(ctx, q, *product.Barcode, 0); err != nil {
				return err
			}
		}
		if err := s.ensureBrandExists(ctx, q, product.BrandID); err != nil {
			return err
		}
		if err := s.ensureCategoriesExist(ctx, q, categoryIDs); err != nil {
			return err
		}

		if err := s.productRepo.Create(ctx, q, product); err != nil {
			if isDuplicate(err) {
				return models.ConflictOn(duplicateField(err, "barcode"), "Product already exists")
			}
			return fmt.Errorf("error creating product: %w", err)
		}
		if err := s.linkCategories(ctx, q, product.ID, categoryIDs); err != nil {
			return err
		}

		var err error
		read, err = s.resolver.Resolve(ctx, q, product)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"barcode":    product.Barcode,
		"brand_id":   product.BrandID,
		"categories": len(categoryIDs),
	}).Info("Product created successfully")
	s.events.notify(ctx, EventProductCreated, map[string]any{"product_id": product.ID, "name": product.Name})

	return read, nil
}

// GetByID obtiene un producto resuelto por ID
func (s *ProductService) GetByID(ctx context.Context, id int64) (*models.ProductRead, error) {
	var read *models.ProductRead
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		product, err := s.getProduct(ctx, q, id)
		if err != nil {
			return err
		}
		read, err = s.resolver.Resolve(ctx, q, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return read, nil
}

// List obtiene una página de productos aplicando los filtros
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.ProductRead, error) {
	if err := validatePage(filter.Skip, filter.Limit); err != nil {
		return nil, err
	}
	if filter.MeasureType != nil && !filter.MeasureType.Valid() {
		return nil, invalidMeasureType()
	}
	return s.listResolved(ctx, filter)
}

// Search busca productos por nombre y/o código de barras
func (s *ProductService) Search(ctx context.Context, search models.ProductSearch) ([]models.ProductRead, error) {
	search.Name = strings.TrimSpace(search.Name)
	search.Barcode = strings.TrimSpace(search.Barcode)
	if search.Name == "" && search.Barcode == "" {
		return nil, models.NewAPIError(models.NewValidationError("Provide name or barcode to search", []models.ErrorDetail{
			{Field: "name", Issue: "name or barcode is required"},
			{Field: "barcode", Issue: "name or barcode is required"},
		}))
	}

	var reads []models.ProductRead
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		products, err := s.productRepo.Search(ctx, q, search)
		if err != nil {
			return fmt.Errorf("error searching products: %w", err)
		}
		reads, err = s.resolver.ResolveAll(ctx, q, products)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reads, nil
}

// ListByBrand lista los productos de una marca existente
func (s *ProductService) ListByBrand(ctx context.Context, brandID int64) ([]models.ProductRead, error) {
	var reads []models.ProductRead
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		if _, err := s.brandRepo.GetByID(ctx, q, brandID); err != nil {
			if isNotFound(err) {
				return models.NotFound("Brand not found")
			}
			return fmt.Errorf("error getting brand: %w", err)
		}

		products, err := s.productRepo.List(ctx, q, models.ProductFilter{BrandID: &brandID})
		if err != nil {
			return fmt.Errorf("error listing products by brand: %w", err)
		}
		reads, err = s.resolver.ResolveAll(ctx, q, products)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reads, nil
}

// ListByCategory lista los productos vinculados a una categoría existente
func (s *ProductService) ListByCategory(ctx context.Context, categoryID int64) ([]models.ProductRead, error) {
	var reads []models.ProductRead
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		if _, err := s.categoryRepo.GetByID(ctx, q, categoryID); err != nil {
			if isNotFound(err) {
				return models.NotFound("Category not found")
			}
			return fmt.Errorf("error getting category: %w", err)
		}

		products, err := s.productRepo.List(ctx, q, models.ProductFilter{CategoryID: &categoryID})
		if err != nil {
			return fmt.Errorf("error listing products by category: %w", err)
		}
		reads, err = s.resolver.ResolveAll(ctx, q, products)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reads, nil
}

// Update aplica los campos presentes de la petición.
// category_ids presente reemplaza el conjunto completo; ausente lo deja intacto.
func (s *ProductService) Update(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.ProductRead, error) {
	if err := requiredOptional("name", req.Name); err != nil {
		return nil, err
	}
	if err := requiredOptional("status", req.Status); err != nil {
		return nil, err
	}

	var (
		read        *models.ProductRead
		categoryIDs []int64
	)
	if req.CategoryIDs.Set && req.CategoryIDs.Value != nil {
		categoryIDs = uniqueIDs(*req.CategoryIDs.Value)
	}

	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		product, err := s.getProduct(ctx, q, id)
		if err != nil {
			return err
		}
		previousBarcode := product.Barcode

		applyProductUpdate(product, req)
		if err := validateProduct(product); err != nil {
			return err
		}

		if product.Barcode != nil && !sameString(product.Barcode, previousBarcode) {
			if err := s.ensureBarcodeAvailable(ctx, q, *product.Barcode, product.ID); err != nil {
				return err
			}
		}
		if req.BrandID.Set {
			if err := s.ensureBrandExists(ctx, q, product.BrandID); err != nil {
				return err
			}
		}
		if req.CategoryIDs.Set {
			if err := s.ensureCategoriesExist(ctx, q, categoryIDs); err != nil {
				return err
			}
		}

		if err := s.productRepo.Update(ctx, q, product); err != nil {
			switch {
			case isNotFound(err):
				return models.NotFound("Product not found")
			case isDuplicate(err):
				return models.ConflictOn(duplicateField(err, "barcode"), "Product already exists")
			}
			return fmt.Errorf("error updating product: %w", err)
		}

		if req.CategoryIDs.Set {
			if err := s.linkRepo.DeleteByProduct(ctx, q, product.ID); err != nil {
				return fmt.Errorf("error replacing product categories: %w", err)
			}
			if err := s.linkCategories(ctx, q, product.ID, categoryIDs); err != nil {
				return err
			}
		}

		read, err = s.resolver.Resolve(ctx, q, product)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id":          id,
		"categories_replaced": req.CategoryIDs.Set,
	}).Info("Product updated successfully")
	s.events.notify(ctx, EventProductUpdated, map[string]any{"product_id": id})

	return read, nil
}

// Delete elimina un producto y sus vínculos
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		if err := s.productRepo.Delete(ctx, q, id); err != nil {
			if isNotFound(err) {
				return models.NotFound("Product not found")
			}
			return fmt.Errorf("error deleting product: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithField("product_id", id).Info("Product deleted successfully")
	s.events.notify(ctx, EventProductDeleted, map[string]any{"product_id": id})

	return nil
}

func (s *ProductService) listResolved(ctx context.Context, filter models.ProductFilter) ([]models.ProductRead, error) {
	var reads []models.ProductRead
	err := s.db.WithTransaction(ctx, func(q database.Querier) error {
		products, err := s.productRepo.List(ctx, q, filter)
		if err != nil {
			return fmt.Errorf("error listing products: %w", err)
		}
		reads, err = s.resolver.ResolveAll(ctx, q, products)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reads, nil
}

func (s *ProductService) getProduct(ctx context.Context, q database.Querier, id int64) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, q, id)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("Product not found")
		}
		return nil, fmt.Errorf("error getting product: %w", err)
	}
	return product, nil
}

func (s *ProductService) ensureBarcodeAvailable(ctx context.Context, q database.Querier, barcode string, selfID int64) error {
	existing, err := s.productRepo.GetByBarcode(ctx, q, barcode)
	switch {
	case err == nil && existing.ID != selfID:
		s.logger.WithFields(logrus.Fields{
			"barcode":    barcode,
			"product_id": existing.ID,
		}).Warn("Product with barcode already exists")
		return models.ConflictOn("barcode", "Product with this barcode already exists")
	case err == nil, isNotFound(err):
		return nil
	default:
		return fmt.Errorf("error checking barcode: %w", err)
	}
}

func (s *ProductService) ensureBrandExists(ctx context.Context, q database.Querier, brandID *int64) error {
	if brandID == nil {
		return nil
	}
	if _, err := s.brandRepo.GetByID(ctx, q, *brandID); err != nil {
		if isNotFound(err) {
			return models.ValidationFailed("brand_id", fmt.Sprintf("brand %d does not exist", *brandID), "Brand does not exist")
		}
		return fmt.Errorf("error checking brand: %w", err)
	}
	return nil
}

func (s *ProductService) ensureCategoriesExist(ctx context.Context, q database.Querier, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := s.categoryRepo.GetByIDs(ctx, q, ids)
	if err != nil {
		return fmt.Errorf("error checking categories: %w", err)
	}
	existing := make(map[int64]bool, len(found))
	for _, category := range found {
		existing[category.ID] = true
	}

	var details []models.ErrorDetail
	for _, id := range ids {
		if !existing[id] {
			details = append(details, models.ErrorDetail{
				Field: "category_ids",
				Issue: fmt.Sprintf("category %d does not exist", id),
			})
		}
	}
	if len(details) > 0 {
		return models.NewAPIError(models.NewValidationError("One or more categories do not exist", details))
	}
	return nil
}

func (s *ProductService) linkCategories(ctx context.Context, q database.Querier, productID int64, ids []int64) error {
	for _, categoryID := range ids {
		link := &models.ProductCategory{ProductID: productID, CategoryID: categoryID}
		if err := s.linkRepo.Create(ctx, q, link); err != nil {
			return fmt.Errorf("error linking categories: %w", err)
		}
	}
	return nil
}

// applyProductUpdate copia sobre el producto solo los campos presentes
func applyProductUpdate(product *models.Product, req *models.UpdateProductRequest) {
	if req.Barcode.Set {
		product.Barcode = normalizeBarcode(req.Barcode.Value)
	}
	if req.Name.Set {
		product.Name = *req.Name.Value
	}
	if req.Description.Set {
		product.Description = req.Description.Value
	}
	if req.BrandID.Set {
		product.BrandID = req.BrandID.Value
	}
	if req.MeasureType.Set {
		product.MeasureType = req.MeasureType.Value
	}
	if req.MeasureValue.Set {
		product.MeasureValue = req.MeasureValue.Value
	}
	if req.Qtt.Set {
		product.Qtt = req.Qtt.Value
	}
	if req.Status.Set {
		product.Status = *req.Status.Value
	}
	if req.Images.Set {
		product.Images = req.Images.Value
	}
}

func validateProduct(product *models.Product) error {
	if err := validateName("name", product.Name, productNameMaxLen); err != nil {
		return err
	}
	if product.Barcode != nil && utf8.RuneCountInString(*product.Barcode) > barcodeMaxLen {
		return models.ValidationFailed("barcode", fmt.Sprintf("must be at most %d characters", barcodeMaxLen), "Field barcode is too long")
	}
	if product.MeasureType != nil && !product.MeasureType.Valid() {
		return invalidMeasureType()
	}
	if product.MeasureValue != nil && product.MeasureValue.Abs().GreaterThanOrEqual(measureValueLimit) {
		return models.ValidationFailed("measure_value", "must be lower than 1000000 in absolute value", "Field measure_value is out of range")
	}
	if product.MeasureValue != nil && !product.MeasureValue.Equal(product.MeasureValue.Round(measureValueScale)) {
		return models.ValidationFailed("measure_value", fmt.Sprintf("must have at most %d decimal places", measureValueScale), "Field measure_value has too many decimal places")
	}
	// qtt es INTEGER en la base
	if product.Qtt != nil && (*product.Qtt > math.MaxInt32 || *product.Qtt < math.MinInt32) {
		return models.ValidationFailed("qtt", fmt.Sprintf("must be between %d and %d", math.MinInt32, math.MaxInt32), "Field qtt is out of range")
	}
	return nil
}

func invalidMeasureType() error {
	valid := make([]string, 0, len(models.MeasureTypes))
	for _, m := range models.MeasureTypes {
		valid = append(valid, string(m))
	}
	return models.ValidationFailed("measure_type", "must be one of: "+strings.Join(valid, ", "), "Invalid measure type")
}

// normalizeBarcode guarda como NULL un código de barras vacío
func normalizeBarcode(barcode *string) *string {
	if barcode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*barcode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// uniqueIDs descarta IDs repetidos conservando el primer orden de aparición
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
