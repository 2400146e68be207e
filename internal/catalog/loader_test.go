package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lifeboard/shopping-service/internal/optimizer"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Items"))
	require.NoError(t, f.SetSheetRow("Items", "A1",
		&[]string{"name", "quantity", "unit", "category", "priority"}))
	require.NoError(t, f.SetSheetRow("Items", "A2",
		&[]string{"bread", "1", "loaf", "", "essential"}))
	require.NoError(t, f.SetSheetRow("Items", "A3",
		&[]string{"milk", "2", "pint", "dairy", ""}))

	_, err := f.NewSheet("Stores")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Stores", "A1",
		&[]string{"id", "name", "latitude", "longitude", "price_level", "rating"}))
	require.NoError(t, f.SetSheetRow("Stores", "A2",
		&[]string{"s-aldi", "Aldi", "51.5074", "-0.1278", "budget", "4"}))
	require.NoError(t, f.SetSheetRow("Stores", "A3",
		&[]string{"s-tesco", "Tesco", "", "", "", ""}))

	_, err = f.NewSheet("Inventories")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Inventories", "A1",
		&[]string{"store_id", "available_items", "price_multiplier"}))
	require.NoError(t, f.SetSheetRow("Inventories", "A2",
		&[]string{"s-aldi", "bread; milk", "0.85"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	cat, err := ParseXLSX(buildWorkbook(t))
	require.NoError(t, err)

	require.Len(t, cat.Items, 2)
	assert.Equal(t, "bread", cat.Items[0].Name)
	assert.Equal(t, 1, cat.Items[0].Quantity)
	assert.Equal(t, optimizer.PriorityEssential, cat.Items[0].Priority)
	assert.Equal(t, "milk", cat.Items[1].Name)
	assert.Equal(t, 2, cat.Items[1].Quantity)
	assert.Equal(t, "dairy", cat.Items[1].Category)

	require.Len(t, cat.Stores, 2)
	assert.Equal(t, "s-aldi", cat.Stores[0].ID)
	require.NotNil(t, cat.Stores[0].Coordinates)
	assert.Equal(t, 51.5074, cat.Stores[0].Coordinates.Latitude)
	assert.Equal(t, 4, cat.Stores[0].Rating)
	assert.Nil(t, cat.Stores[1].Coordinates)

	require.Len(t, cat.Inventories, 1)
	assert.Equal(t, []string{"bread", "milk"}, cat.Inventories[0].AvailableItems)
	assert.Equal(t, 0.85, cat.Inventories[0].PriceMultiplier)
}

func TestParseXLSXRejectsBadRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Items"))
	require.NoError(t, f.SetSheetRow("Items", "A1", &[]string{"name", "quantity"}))
	require.NoError(t, f.SetSheetRow("Items", "A2", &[]string{"bread", "two"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ParseXLSX(buf.Bytes())
	assert.ErrorContains(t, err, "invalid quantity")
}

func TestParseJSON(t *testing.T) {
	content := []byte(`{
		"items": [{"Name": "bread", "Quantity": 1}],
		"stores": [{"ID": "s-1", "Name": "Aldi"}],
		"origin": {"Latitude": 51.5, "Longitude": -0.12}
	}`)

	cat, err := ParseJSON(content)
	require.NoError(t, err)
	require.Len(t, cat.Items, 1)
	require.Len(t, cat.Stores, 1)
	require.NotNil(t, cat.Origin)
	assert.Equal(t, 51.5, cat.Origin.Latitude)
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	_, err := ParseJSON([]byte(`{"basket": []}`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "catalog.xlsx")
	require.NoError(t, os.WriteFile(path, buildWorkbook(t), 0o644))
	cat, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, cat.Items, 2)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "catalog.txt")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "unsupported catalog format")
}
