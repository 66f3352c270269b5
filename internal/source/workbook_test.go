package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Products"))
	rows := [][]any{
		{"Product Name", "Brand Name", "Price"},
		{"Desk", "Acme", 150},
		{"Lamp", "Acme", 19.99},
		{},
		{"Chair", "Zeta", 75.5},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Products", cell, &row))
	}
	_, err := f.NewSheet("inventory")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("inventory", "A1", &[]any{"product_name", "stock_quantity"}))

	path := filepath.Join(t.TempDir(), "retail.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWorkbookLoad(t *testing.T) {
	wb, err := OpenWorkbook(writeWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	rs, err := wb.Load(context.Background(), "products")
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())
	assert.Equal(t, []string{"product_name", "brand_name", "price"}, rs.Schema().FieldNames())

	price, ok := rs.Schema().Lookup("price")
	require.True(t, ok)
	assert.Equal(t, record.KindDecimal, price.Kind)
	assert.Equal(t, "Chair", rs.Row(2).Value("product_name").String())
	assert.True(t, rs.Row(1).Value("price").Decimal().Equal(record.DecString("19.99").Decimal()))
}

func TestWorkbookHeaderOnlyAndMissingSheet(t *testing.T) {
	wb, err := OpenWorkbook(writeWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	rs, err := wb.Load(context.Background(), "inventory")
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())

	_, err = wb.Load(context.Background(), "orders")
	assert.True(t, errors.Is(err, ErrDatasetNotFound), "got %v", err)
}

func TestOpenWorkbookErrors(t *testing.T) {
	_, err := OpenWorkbook("")
	assert.Error(t, err)
	_, err = OpenWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
