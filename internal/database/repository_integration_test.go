package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RepositorySuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *DB
	logger    *logrus.Logger

	brands     *BrandRepository
	categories *CategoryRepository
	products   *ProductRepository
	links      *ProductCategoryRepository
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger, _ = logtest.NewNullLogger()

	var err error
	s.container, err = postgres.Run(
		s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("catalog_test"),
		postgres.WithUsername("catalog"),
		postgres.WithPassword("catalog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)

	dsn, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = Open(dsn, s.logger)
	s.Require().NoError(err)
	s.Require().NoError(s.db.waitReady(10, 500*time.Millisecond))
	s.Require().NoError(s.db.Migrate())
	s.Require().NoError(s.db.Migrate(), "migrating twice is a no-op")

	s.brands = NewBrandRepository(s.logger)
	s.categories = NewCategoryRepository(s.logger)
	s.products = NewProductRepository(s.logger)
	s.links = NewProductCategoryRepository(s.logger)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate postgres container: %v", err)
		}
	}
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx,
		`TRUNCATE product_categories, products, categories, brands RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *RepositorySuite) brand(name string) *models.Brand {
	b := &models.Brand{Name: name}
	s.Require().NoError(s.brands.Create(s.ctx, s.db, b))
	return b
}

func (s *RepositorySuite) category(name string) *models.Category {
	c := &models.Category{Name: name}
	s.Require().NoError(s.categories.Create(s.ctx, s.db, c))
	return c
}

func (s *RepositorySuite) product(p models.Product) *models.Product {
	s.Require().NoError(s.products.Create(s.ctx, s.db, &p))
	return &p
}

func (s *RepositorySuite) link(productID, categoryID int64) {
	s.Require().NoError(s.links.Create(s.ctx, s.db, &models.ProductCategory{ProductID: productID, CategoryID: categoryID}))
}

func (s *RepositorySuite) TestHealthCheckAndStats() {
	s.NoError(s.db.HealthCheck(s.ctx))
	s.Contains(s.db.GetStats(), "open_connections")
}

func (s *RepositorySuite) TestBrandUniqueName() {
	s.brand("Acme")

	err := s.brands.Create(s.ctx, s.db, &models.Brand{Name: "Acme"})
	s.ErrorIs(err, ErrDuplicate)
	s.Contains(err.Error(), "brands_name_key")

	_, err = s.brands.GetByName(s.ctx, s.db, "acme")
	s.ErrorIs(err, ErrNotFound, "names are case sensitive")
}

func (s *RepositorySuite) TestBrandUpdateAndDelete() {
	b := s.brand("Acme")
	b.Name = "Acme Corp"
	s.Require().NoError(s.brands.Update(s.ctx, s.db, b))

	got, err := s.brands.GetByID(s.ctx, s.db, b.ID)
	s.Require().NoError(err)
	s.Equal("Acme Corp", got.Name)
	s.False(got.UpdatedAt.Before(got.CreatedAt))
	s.True(b.CreatedAt.Equal(got.CreatedAt), "stored created_at %s != returned %s", got.CreatedAt, b.CreatedAt)
	s.True(b.UpdatedAt.Equal(got.UpdatedAt), "stored updated_at %s != returned %s", got.UpdatedAt, b.UpdatedAt)

	s.Require().NoError(s.brands.Delete(s.ctx, s.db, b.ID))
	s.ErrorIs(s.brands.Delete(s.ctx, s.db, b.ID), ErrNotFound)
	s.ErrorIs(s.brands.Update(s.ctx, s.db, b), ErrNotFound)
}

func (s *RepositorySuite) TestSearchEscapesWildcards() {
	s.brand("100% Natural")
	s.brand("1000 Natural")
	s.brand("snake_case")
	s.brand("snakeXcase")

	found, err := s.brands.SearchByName(s.ctx, s.db, "0%")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("100% Natural", found[0].Name)

	found, err = s.brands.SearchByName(s.ctx, s.db, "E_C")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("snake_case", found[0].Name)
}

func (s *RepositorySuite) TestBrandPaging() {
	for _, name := range []string{"a", "b", "c"} {
		s.brand(name)
	}

	page, err := s.brands.List(s.ctx, s.db, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("b", page[0].Name)

	empty, err := s.brands.List(s.ctx, s.db, 10, 5)
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)
}

func (s *RepositorySuite) TestCategoryGetByIDs() {
	a := s.category("A")
	s.category("B")
	c := s.category("C")

	found, err := s.categories.GetByIDs(s.ctx, s.db, []int64{c.ID, a.ID, 999})
	s.Require().NoError(err)
	s.Len(found, 2)

	none, err := s.categories.GetByIDs(s.ctx, s.db, nil)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *RepositorySuite) TestProductRoundTrip() {
	b := s.brand("Acme")
	barcode := "7790001"
	measure := decimal.RequireFromString("1.2500")
	mt := models.MeasureLiter
	qtt := 6
	desc := "Whole milk"

	p := s.product(models.Product{
		Barcode:      &barcode,
		Name:         "Milk",
		Description:  &desc,
		BrandID:      &b.ID,
		MeasureType:  &mt,
		MeasureValue: &measure,
		Qtt:          &qtt,
		Status:       true,
	})

	got, err := s.products.GetByID(s.ctx, s.db, p.ID)
	s.Require().NoError(err)
	s.Equal("Milk", got.Name)
	s.Equal(barcode, *got.Barcode)
	s.Equal(b.ID, *got.BrandID)
	s.Equal(models.MeasureLiter, *got.MeasureType)
	s.True(measure.Equal(*got.MeasureValue))
	s.Equal(6, *got.Qtt)
	s.Nil(got.Images)
	s.True(p.CreatedAt.Equal(got.CreatedAt))
	s.True(p.UpdatedAt.Equal(got.UpdatedAt))

	byBarcode, err := s.products.GetByBarcode(s.ctx, s.db, barcode)
	s.Require().NoError(err)
	s.Equal(p.ID, byBarcode.ID)
}

func (s *RepositorySuite) TestProductNullBarcodesDoNotCollide() {
	s.product(models.Product{Name: "A", Status: true})
	s.product(models.Product{Name: "B", Status: true})

	code := "123"
	s.product(models.Product{Name: "C", Barcode: &code, Status: true})
	err := s.products.Create(s.ctx, s.db, &models.Product{Name: "D", Barcode: &code, Status: true})
	s.ErrorIs(err, ErrDuplicate)
	s.Contains(err.Error(), "products_barcode_key")
}

func (s *RepositorySuite) TestBrandDeleteOrphansProducts() {
	b := s.brand("Gone")
	p := s.product(models.Product{Name: "P", BrandID: &b.ID, Status: true})

	s.Require().NoError(s.brands.Delete(s.ctx, s.db, b.ID))

	got, err := s.products.GetByID(s.ctx, s.db, p.ID)
	s.Require().NoError(err)
	s.Nil(got.BrandID)
}

func (s *RepositorySuite) TestLinksAreUniqueAndCascade() {
	p := s.product(models.Product{Name: "P", Status: true})
	a := s.category("A")
	b := s.category("B")
	s.link(p.ID, b.ID)
	s.link(p.ID, a.ID)

	err := s.links.Create(s.ctx, s.db, &models.ProductCategory{ProductID: p.ID, CategoryID: a.ID})
	s.ErrorIs(err, ErrDuplicate)

	links, err := s.links.ListByProduct(s.ctx, s.db, p.ID)
	s.Require().NoError(err)
	s.Require().Len(links, 2)
	s.Equal(b.ID, links[0].CategoryID, "links keep insertion order")
	s.Equal(a.ID, links[1].CategoryID)

	s.Require().NoError(s.categories.Delete(s.ctx, s.db, b.ID))
	links, err = s.links.ListByProduct(s.ctx, s.db, p.ID)
	s.Require().NoError(err)
	s.Len(links, 1)

	s.Require().NoError(s.products.Delete(s.ctx, s.db, p.ID))
	links, err = s.links.ListByProduct(s.ctx, s.db, p.ID)
	s.Require().NoError(err)
	s.Empty(links)
}

func (s *RepositorySuite) TestProductListFilters() {
	acme := s.brand("Acme")
	food := s.category("Food")
	snacks := s.category("Snacks")
	grams := models.MeasureGram

	p1 := s.product(models.Product{Name: "P1", BrandID: &acme.ID, Status: true})
	p2 := s.product(models.Product{Name: "P2", BrandID: &acme.ID, MeasureType: &grams, Status: false})
	p3 := s.product(models.Product{Name: "P3", Status: true})
	s.link(p1.ID, food.ID)
	s.link(p1.ID, snacks.ID)
	s.link(p3.ID, food.ID)

	ids := func(filter models.ProductFilter) []int64 {
		products, err := s.products.List(s.ctx, s.db, filter)
		s.Require().NoError(err)
		out := make([]int64, 0, len(products))
		for _, p := range products {
			out = append(out, p.ID)
		}
		return out
	}

	active := true
	s.Equal([]int64{p1.ID, p2.ID, p3.ID}, ids(models.ProductFilter{}))
	s.Equal([]int64{p1.ID, p3.ID}, ids(models.ProductFilter{CategoryID: &food.ID}))
	s.Equal([]int64{p1.ID}, ids(models.ProductFilter{CategoryID: &food.ID, BrandID: &acme.ID}))
	s.Equal([]int64{p1.ID, p3.ID}, ids(models.ProductFilter{Status: &active}))
	s.Equal([]int64{p2.ID}, ids(models.ProductFilter{MeasureType: &grams}))
	s.Equal([]int64{p2.ID}, ids(models.ProductFilter{Skip: 1, Limit: 1}))
}

func (s *RepositorySuite) TestProductSearchCombinesCriteria() {
	a, b := "7791234", "7795678"
	s.product(models.Product{Name: "Chocolate Bar", Barcode: &a, Status: true})
	s.product(models.Product{Name: "Chocolate Milk", Barcode: &b, Status: true})

	found, err := s.products.Search(s.ctx, s.db, models.ProductSearch{Name: "CHOCO"})
	s.Require().NoError(err)
	s.Len(found, 2)

	found, err = s.products.Search(s.ctx, s.db, models.ProductSearch{Name: "choco", Barcode: "5678"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("Chocolate Milk", found[0].Name)
}

func (s *RepositorySuite) TestTransactionRollsBack() {
	boom := errors.New("boom")

	err := s.db.WithTransaction(s.ctx, func(q Querier) error {
		if err := s.brands.Create(s.ctx, q, &models.Brand{Name: "Temp"}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.brands.GetByName(s.ctx, s.db, "Temp")
	s.ErrorIs(err, ErrNotFound)

	s.Panics(func() {
		_ = s.db.WithTransaction(s.ctx, func(q Querier) error {
			_ = s.brands.Create(s.ctx, q, &models.Brand{Name: "Panic"})
			panic("kaboom")
		})
	})
	_, err = s.brands.GetByName(s.ctx, s.db, "Panic")
	s.ErrorIs(err, ErrNotFound)
}
