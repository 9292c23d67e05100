package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProductRequestPresence(t *testing.T) {
	var req UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Milk","barcode":null,"category_ids":[]}`), &req))

	assert.True(t, req.Name.Set)
	require.NotNil(t, req.Name.Value)
	assert.Equal(t, "Milk", *req.Name.Value)

	assert.True(t, req.Barcode.IsNull())

	assert.True(t, req.CategoryIDs.Set)
	require.NotNil(t, req.CategoryIDs.Value)
	assert.Empty(t, *req.CategoryIDs.Value)

	assert.False(t, req.Description.Set)
	assert.False(t, req.Status.Set)
}

func TestUpdateProductRequestMeasureValue(t *testing.T) {
	var req UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"measure_value":"1.2500","measure_type":"kg"}`), &req))

	require.NotNil(t, req.MeasureValue.Value)
	assert.True(t, req.MeasureValue.Value.Equal(decimal.RequireFromString("1.25")))
	require.NotNil(t, req.MeasureType.Value)
	assert.Equal(t, MeasureKilogram, *req.MeasureType.Value)
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var req UpdateProductRequest
	assert.Error(t, json.Unmarshal([]byte(`{"qtt":"many"}`), &req))
}

func TestMeasureTypeValid(t *testing.T) {
	assert.True(t, MeasureMilliliter.Valid())
	assert.False(t, MeasureType("lb").Valid())
}

func TestProductReadFlattensProduct(t *testing.T) {
	read := ProductRead{Product: Product{ID: 7, Name: "Soap", Status: true}, Categories: []Category{}}

	data, err := json.Marshal(read)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.EqualValues(t, 7, out["id"])
	assert.Nil(t, out["brand"])
	assert.Equal(t, []any{}, out["categories"])
}
