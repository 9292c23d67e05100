package services

import (
	"context"
	"testing"

	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/hypernova-labs/catalog-service/internal/storetest"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx        context.Context
	store      *storetest.Store
	events     *storetest.Publisher
	logs       *logtest.Hook
	logger     *logrus.Logger
	brands     *BrandService
	categories *CategoryService
	products   *ProductService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithPublisher(t, storetest.NewPublisher(nil))
}

func newFixtureWithPublisher(t *testing.T, events *storetest.Publisher) *fixture {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	store := storetest.New()

	return &fixture{
		ctx:        context.Background(),
		store:      store,
		events:     events,
		logs:       hook,
		logger:     logger,
		brands:     NewBrandService(store, store.Brands(), events, logger),
		categories: NewCategoryService(store, store.Categories(), events, logger),
		products: NewProductService(store, store.Products(), store.Brands(), store.Categories(),
			store.ProductCategories(), events, logger),
	}
}

func (f *fixture) brand(t *testing.T, name string) *models.Brand {
	t.Helper()
	b, err := f.brands.Create(f.ctx, &models.CreateBrandRequest{Name: name})
	require.NoError(t, err)
	return b
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := f.categories.Create(f.ctx, &models.CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, req models.CreateProductRequest) *models.ProductRead {
	t.Helper()
	p, err := f.products.Create(f.ctx, &req)
	require.NoError(t, err)
	return p
}

// requireCode verifica que err sea un APIError con el código dado
func requireCode(t *testing.T, err error, code models.ErrorCode) *models.APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := models.AsAPIError(err)
	require.Truef(t, ok, "expected APIError, got %T: %v", err, err)
	require.Equal(t, code, apiErr.Code())
	return apiErr
}

func ptr[T any](v T) *T {
	return &v
}

func categoryIDs(read *models.ProductRead) []int64 {
	ids := make([]int64, 0, len(read.Categories))
	for _, c := range read.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
