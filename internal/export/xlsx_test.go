package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/orders"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestProductsWorkbook(t *testing.T) {
	brand, err := catalog.CustomBrand("Atelier Dakar")
	require.NoError(t, err)
	products := []catalog.Product{{
		ID:       7,
		Name:     "Sandale cuir",
		Price:    15000,
		Brand:    brand,
		Category: catalog.CategoryShoes,
		Sizes:    []catalog.SizeStock{{Size: "42", Stock: 4}, {Size: "43", Stock: 0}},
		Status:   catalog.StatusActive,
		Sales:    3,
	}}

	var buf bytes.Buffer
	require.NoError(t, NewXLSX().Products(&buf, products))

	f := openWorkbook(t, buf.Bytes())
	rows, err := f.GetRows(productsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nom", rows[0][1])
	assert.Equal(t, "Sandale cuir", rows[1][1])
	assert.Equal(t, "Atelier Dakar", rows[1][2])
	assert.Equal(t, "4", rows[1][5])
	assert.Equal(t, "42:4, 43:0", rows[1][6])
}

func TestOrdersWorkbookHasItemSheet(t *testing.T) {
	list := []orders.Order{{
		ID:       "CMD-001",
		Customer: orders.CustomerRef{Name: "Awa Ndiaye", Phone: "+221 77 000 00 00"},
		Items: []orders.Item{
			{ProductID: 1, ProductName: "Nike Air Max 270", Size: "42", Quantity: 2, Price: 45000},
			{ProductID: 2, ProductName: "Adidas Ultraboost", Size: "43", Quantity: 1, Price: 50000},
		},
		Total:  140000,
		Status: orders.StatusPending,
		Date:   time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, NewXLSX().Orders(&buf, list))

	f := openWorkbook(t, buf.Bytes())
	rows, err := f.GetRows(ordersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CMD-001", rows[1][0])
	assert.Equal(t, "04/03/2024 10:30", rows[1][1])
	assert.Equal(t, "3", rows[1][5])

	items, err := f.GetRows(itemsSheet)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "90000", items[1][5])
}

func TestEmptyExportKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSX().Products(&buf, nil))

	rows, err := openWorkbook(t, buf.Bytes()).GetRows(productsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(productHeader))
}
