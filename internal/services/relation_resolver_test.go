package services

import (
	"errors"
	"testing"

	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(f *fixture) *RelationResolver {
	return NewRelationResolver(f.store.Brands(), f.store.Categories(), f.store.ProductCategories())
}

func storedProduct(t *testing.T, f *fixture, id int64) *models.Product {
	t.Helper()
	p, err := f.store.Products().GetByID(f.ctx, nil, id)
	require.NoError(t, err)
	return p
}

func TestRelationResolver_KeepsLinkOrder(t *testing.T) {
	f := newFixture(t)
	a := f.category(t, "A")
	b := f.category(t, "B")
	c := f.category(t, "C")
	p := f.product(t, models.CreateProductRequest{Name: "P", CategoryIDs: []int64{c.ID, a.ID, b.ID}})

	read, err := newResolver(f).Resolve(f.ctx, nil, storedProduct(t, f, p.ID))
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, categoryIDs(read))
}

func TestRelationResolver_ToleratesDanglingBrand(t *testing.T) {
	f := newFixture(t)
	brand := f.brand(t, "Gone")
	p := f.product(t, models.CreateProductRequest{Name: "P", BrandID: &brand.ID})
	f.store.DropBrand(brand.ID)

	read, err := newResolver(f).Resolve(f.ctx, nil, storedProduct(t, f, p.ID))
	require.NoError(t, err)
	require.NotNil(t, read.BrandID, "brand_id is reported as stored")
	assert.Equal(t, brand.ID, *read.BrandID)
	assert.Nil(t, read.Brand)
}

func TestRelationResolver_SkipsDanglingCategories(t *testing.T) {
	f := newFixture(t)
	a := f.category(t, "A")
	b := f.category(t, "B")
	p := f.product(t, models.CreateProductRequest{Name: "P", CategoryIDs: []int64{a.ID, b.ID}})
	f.store.DropCategory(a.ID)
	f.store.SeedLink(p.ID, 4242)

	read, err := newResolver(f).Resolve(f.ctx, nil, storedProduct(t, f, p.ID))
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, categoryIDs(read))
	assert.Len(t, f.store.Links(), 3, "resolution never repairs links")
}

func TestRelationResolver_EmptyCategoriesIsNotNil(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, models.CreateProductRequest{Name: "P"})

	read, err := newResolver(f).Resolve(f.ctx, nil, storedProduct(t, f, p.ID))
	require.NoError(t, err)
	assert.NotNil(t, read.Categories)
	assert.Empty(t, read.Categories)
}

func TestRelationResolver_PropagatesStorageErrors(t *testing.T) {
	f := newFixture(t)
	a := f.category(t, "A")
	p := f.product(t, models.CreateProductRequest{Name: "P", CategoryIDs: []int64{a.ID}})
	product := storedProduct(t, f, p.ID)
	boom := errors.New("connection reset")

	f.store.FailOn("links.ListByProduct", boom)
	_, err := newResolver(f).Resolve(f.ctx, nil, product)
	assert.ErrorIs(t, err, boom)

	f.store.FailOn("categories.GetByIDs", boom)
	_, err = newResolver(f).Resolve(f.ctx, nil, product)
	assert.ErrorIs(t, err, boom)
}

func TestRelationResolver_ResolveAllKeepsProductOrder(t *testing.T) {
	f := newFixture(t)
	brand := f.brand(t, "B")
	first := f.product(t, models.CreateProductRequest{Name: "First", BrandID: &brand.ID})
	second := f.product(t, models.CreateProductRequest{Name: "Second"})

	products := []models.Product{*storedProduct(t, f, second.ID), *storedProduct(t, f, first.ID)}
	reads, err := newResolver(f).ResolveAll(f.ctx, nil, products)
	require.NoError(t, err)
	require.Len(t, reads, 2)
	assert.Equal(t, second.ID, reads[0].ID)
	assert.Nil(t, reads[0].Brand)
	assert.Equal(t, first.ID, reads[1].ID)
	require.NotNil(t, reads[1].Brand)
	assert.Equal(t, "B", reads[1].Brand.Name)
}
