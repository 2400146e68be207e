// Package catalog loads shopping lists, store catalogs and inventory
// records from JSON and XLSX files for the CLI. The server receives the
// same data over the wire; this package exists so plans can be run against
// exported spreadsheets without a client.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lifeboard/shopping-service/internal/optimizer"
)

// Catalog bundles the inputs of one optimization run.
type Catalog struct {
	Items       []optimizer.Item           `json:"items"`
	Stores      []optimizer.Store          `json:"stores"`
	Inventories []optimizer.StoreInventory `json:"inventories,omitempty"`
	Origin      *optimizer.Location        `json:"origin,omitempty"`
}

// LoadFile loads a catalog from a .json or .xlsx file, chosen by extension.
func LoadFile(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(content)
	case ".xlsx":
		return ParseXLSX(content)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

// ParseJSON decodes a catalog from JSON.
func ParseJSON(content []byte) (*Catalog, error) {
	var cat Catalog
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cat); err != nil {
		return nil, fmt.Errorf("decode catalog JSON: %w", err)
	}
	return &cat, nil
}

// Sheet names recognized in catalog workbooks.
const (
	sheetItems       = "Items"
	sheetStores      = "Stores"
	sheetInventories = "Inventories"
)

// ParseXLSX decodes a catalog workbook. The Items sheet is required; Stores
// and Inventories are optional. Each sheet has a header row.
//
// Items:       name | quantity | unit | category | priority
// Stores:      id | name | latitude | longitude | price_level | rating
// Inventories: store_id | available_items (semicolon separated) | price_multiplier
func ParseXLSX(content []byte) (*Catalog, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	cat := &Catalog{}

	items, err := readSheet(f, sheetItems)
	if err != nil {
		return nil, err
	}
	for i, row := range items {
		item, err := parseItemRow(row)
		if err != nil {
			return nil, fmt.Errorf("items row %d: %w", i+2, err)
		}
		cat.Items = append(cat.Items, item)
	}

	stores, err := readOptionalSheet(f, sheetStores)
	if err != nil {
		return nil, err
	}
	for i, row := range stores {
		store, err := parseStoreRow(row)
		if err != nil {
			return nil, fmt.Errorf("stores row %d: %w", i+2, err)
		}
		cat.Stores = append(cat.Stores, store)
	}

	inventories, err := readOptionalSheet(f, sheetInventories)
	if err != nil {
		return nil, err
	}
	for i, row := range inventories {
		inv, err := parseInventoryRow(row)
		if err != nil {
			return nil, fmt.Errorf("inventories row %d: %w", i+2, err)
		}
		cat.Inventories = append(cat.Inventories, inv)
	}

	return cat, nil
}

func readSheet(f *excelize.File, name string) ([][]string, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return dropEmptyRows(rows[1:]), nil
}

func readOptionalSheet(f *excelize.File, name string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, nil
	}
	return readSheet(f, name)
}

func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseItemRow(row []string) (optimizer.Item, error) {
	name := cell(row, 0)
	if name == "" {
		return optimizer.Item{}, fmt.Errorf("empty item name")
	}

	quantity := 1
	if q := cell(row, 1); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			return optimizer.Item{}, fmt.Errorf("invalid quantity %q", q)
		}
		quantity = parsed
	}

	return optimizer.Item{
		Name:     name,
		Quantity: quantity,
		Unit:     cell(row, 2),
		Category: strings.ToLower(cell(row, 3)),
		Priority: optimizer.Priority(strings.ToLower(cell(row, 4))),
	}, nil
}

func parseStoreRow(row []string) (optimizer.Store, error) {
	id := cell(row, 0)
	name := cell(row, 1)
	if id == "" || name == "" {
		return optimizer.Store{}, fmt.Errorf("store id and name are required")
	}

	store := optimizer.Store{
		ID:         id,
		Name:       name,
		PriceLevel: optimizer.PriceLevel(strings.ToLower(cell(row, 4))),
	}

	lat, lon := cell(row, 2), cell(row, 3)
	if lat != "" && lon != "" {
		latitude, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return optimizer.Store{}, fmt.Errorf("invalid latitude %q", lat)
		}
		longitude, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return optimizer.Store{}, fmt.Errorf("invalid longitude %q", lon)
		}
		store.Coordinates = &optimizer.Location{Latitude: latitude, Longitude: longitude}
	}

	if r := cell(row, 5); r != "" {
		rating, err := strconv.Atoi(r)
		if err != nil || rating < 0 || rating > 5 {
			return optimizer.Store{}, fmt.Errorf("invalid rating %q", r)
		}
		store.Rating = rating
	}

	return store, nil
}

func parseInventoryRow(row []string) (optimizer.StoreInventory, error) {
	storeID := cell(row, 0)
	if storeID == "" {
		return optimizer.StoreInventory{}, fmt.Errorf("empty store id")
	}

	inv := optimizer.StoreInventory{StoreID: storeID}
	for _, name := range strings.Split(cell(row, 1), ";") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			inv.AvailableItems = append(inv.AvailableItems, trimmed)
		}
	}

	if m := cell(row, 2); m != "" {
		mult, err := strconv.ParseFloat(m, 64)
		if err != nil || mult <= 0 {
			return optimizer.StoreInventory{}, fmt.Errorf("invalid price multiplier %q", m)
		}
		inv.PriceMultiplier = mult
	}

	return inv, nil
}
