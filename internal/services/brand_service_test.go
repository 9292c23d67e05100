package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/hypernova-labs/catalog-service/internal/storetest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandService_CreateRoundTrips(t *testing.T) {
	f := newFixture(t)

	created := f.brand(t, "Nestlé")
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := f.brands.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nestlé", got.Name)
	assert.Equal(t, created.ID, got.ID)
}

func TestBrandService_CreateDuplicateNameConflicts(t *testing.T) {
	f := newFixture(t)
	f.brand(t, "Acme")

	_, err := f.brands.Create(f.ctx, &models.CreateBrandRequest{Name: "Acme"})
	apiErr := requireCode(t, err, models.ErrorCodeConflict)
	require.Len(t, apiErr.ErrorResponse.Error.Details, 1)
	assert.Equal(t, "name", apiErr.ErrorResponse.Error.Details[0].Field)

	brands, _, _, _ := f.store.Counts()
	assert.Equal(t, 1, brands)
}

func TestBrandService_NamesAreCaseSensitive(t *testing.T) {
	f := newFixture(t)
	f.brand(t, "Acme")

	_, err := f.brands.Create(f.ctx, &models.CreateBrandRequest{Name: "ACME"})
	assert.NoError(t, err)
}

func TestBrandService_CreateRejectsInvalidNames(t *testing.T) {
	f := newFixture(t)

	_, err := f.brands.Create(f.ctx, &models.CreateBrandRequest{Name: "   "})
	requireCode(t, err, models.ErrorCodeInvalidRequest)

	_, err = f.brands.Create(f.ctx, &models.CreateBrandRequest{Name: strings.Repeat("x", 101)})
	requireCode(t, err, models.ErrorCodeInvalidRequest)
}

func TestBrandService_CreateRaceDuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("brands.Create", storetest.ErrForeignKey)

	_, err := f.brands.Create(f.ctx, &models.CreateBrandRequest{Name: "Acme"})
	require.Error(t, err)
	_, isAPI := models.AsAPIError(err)
	assert.False(t, isAPI, "unexpected storage errors are internal")

	f.store.FailOn("brands.Create", fmt.Errorf("%w: brands_name_key", database.ErrDuplicate))
	_, err = f.brands.Create(f.ctx, &models.CreateBrandRequest{Name: "Acme"})
	requireCode(t, err, models.ErrorCodeConflict)
}

func TestBrandService_UpdateOwnNameSucceeds(t *testing.T) {
	f := newFixture(t)
	b := f.brand(t, "Acme")

	updated, err := f.brands.Update(f.ctx, b.ID, &models.UpdateBrandRequest{Name: models.Some("Acme")})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(b.UpdatedAt))
}

func TestBrandService_UpdateToOtherNameConflicts(t *testing.T) {
	f := newFixture(t)
	f.brand(t, "Acme")
	b := f.brand(t, "Globex")

	_, err := f.brands.Update(f.ctx, b.ID, &models.UpdateBrandRequest{Name: models.Some("Acme")})
	requireCode(t, err, models.ErrorCodeConflict)

	got, err := f.brands.GetByID(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", got.Name)
}

func TestBrandService_UpdateRejectsNullName(t *testing.T) {
	f := newFixture(t)
	b := f.brand(t, "Acme")

	_, err := f.brands.Update(f.ctx, b.ID, &models.UpdateBrandRequest{Name: models.Null[string]()})
	requireCode(t, err, models.ErrorCodeInvalidRequest)
}

func TestBrandService_UpdateWithoutFieldsKeepsName(t *testing.T) {
	f := newFixture(t)
	b := f.brand(t, "Acme")

	updated, err := f.brands.Update(f.ctx, b.ID, &models.UpdateBrandRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Name)
}

func TestBrandService_MissingBrandIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.brands.GetByID(f.ctx, 42)
	requireCode(t, err, models.ErrorCodeNotFound)

	_, err = f.brands.Update(f.ctx, 42, &models.UpdateBrandRequest{Name: models.Some("x")})
	requireCode(t, err, models.ErrorCodeNotFound)

	err = f.brands.Delete(f.ctx, 42)
	requireCode(t, err, models.ErrorCodeNotFound)
}

func TestBrandService_ListPaging(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"a", "b", "c", "d"} {
		f.brand(t, name)
	}

	page, err := f.brands.List(f.ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Name)
	assert.Equal(t, "c", page[1].Name)

	_, err = f.brands.List(f.ctx, -1, 10)
	requireCode(t, err, models.ErrorCodeInvalidRequest)
	_, err = f.brands.List(f.ctx, 0, 0)
	requireCode(t, err, models.ErrorCodeInvalidRequest)
	_, err = f.brands.List(f.ctx, 0, MaxLimit+1)
	requireCode(t, err, models.ErrorCodeInvalidRequest)
}

func TestBrandService_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	f := newFixture(t)
	f.brand(t, "Coca-Cola")
	f.brand(t, "Pepsi")
	f.brand(t, "Cola Real")

	found, err := f.brands.Search(f.ctx, "COLA")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Coca-Cola", found[0].Name)
	assert.Equal(t, "Cola Real", found[1].Name)

	_, err = f.brands.Search(f.ctx, " ")
	requireCode(t, err, models.ErrorCodeInvalidRequest)
}

func TestBrandService_PublishesEventsOnlyAfterCommit(t *testing.T) {
	f := newFixture(t)
	b := f.brand(t, "Acme")

	_, err := f.brands.Create(f.ctx, &models.CreateBrandRequest{Name: "Acme"})
	require.Error(t, err)
	require.NoError(t, f.brands.Delete(f.ctx, b.ID))

	assert.Equal(t, []string{EventBrandCreated, EventBrandDeleted}, f.events.Names())
}

func TestBrandService_PublisherFailureDoesNotFailOperation(t *testing.T) {
	f := newFixtureWithPublisher(t, storetest.NewPublisher(errors.New("inngest down")))

	_, err := f.brands.Create(f.ctx, &models.CreateBrandRequest{Name: "Acme"})
	require.NoError(t, err)

	entry := f.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, EventBrandCreated, entry.Data["event"])
}
