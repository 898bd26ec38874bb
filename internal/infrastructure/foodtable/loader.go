package foodtable

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"github.com/nutrikatori/backend/internal/domain"
	"github.com/nutrikatori/backend/internal/usecase"
)

// SQLiteTableName is the table read from .db and .sqlite files
const SQLiteTableName = "foods"

// Column headers, matched case-insensitively
const (
	colName      = "food_name"
	colKcal      = "energy_kcal"
	colKJ        = "energy_kj"
	colCarbs     = "carb_g"
	colProtein   = "protein_g"
	colFat       = "fat_g"
	colFiber     = "fibre_g"
	colFreeSugar = "freesugar_g"
	colSource    = "primarysource"
	colFoodGroup = "primary food group"
)

// Load reads the reference table from path. The format follows the file
// extension: .csv, .xlsx (first sheet), or .db/.sqlite (the foods table).
func Load(path string) (*Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".db", ".sqlite", ".sqlite3":
		rows, err = readSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedTableFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	records, err := parseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return NewTable(records)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readSQLite(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	rs, err := db.Query(`SELECT * FROM ` + SQLiteTableName)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", SQLiteTableName, err)
	}
	defer rs.Close()

	header, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	rows := [][]string{header}

	values := make([]sql.NullString, len(header))
	dest := make([]interface{}, len(header))
	for i := range values {
		dest[i] = &values[i]
	}

	for rs.Next() {
		if err := rs.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", SQLiteTableName, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = v.String
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", SQLiteTableName, err)
	}

	return rows, nil
}

// parseRows turns a header row plus data rows into records. Rows without a
// name are skipped; unusable numbers become 0.
func parseRows(rows [][]string) ([]domain.FoodRecord, error) {
	if len(rows) == 0 {
		return nil, domain.ErrEmptyTable
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	if _, ok := index[colName]; !ok {
		return nil, fmt.Errorf("missing %q column", colName)
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	number := func(row []string, col string) float64 {
		return coerceNumber(cell(row, col))
	}

	records := make([]domain.FoodRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := usecase.Normalize(cell(row, colName))
		if name == "" {
			continue
		}

		records = append(records, domain.FoodRecord{
			Name:       name,
			EnergyKcal: number(row, colKcal),
			EnergyKJ:   number(row, colKJ),
			Carbs:      number(row, colCarbs),
			Protein:    number(row, colProtein),
			Fat:        number(row, colFat),
			Fiber:      number(row, colFiber),
			FreeSugar:  number(row, colFreeSugar),
			SourceTag:  usecase.Normalize(cell(row, colSource)),
			FoodGroup:  usecase.Normalize(cell(row, colFoodGroup)),
		})
	}

	return records, nil
}

// coerceNumber parses a nutrient cell. Missing, non-numeric, negative and
// non-finite values are 0.
func coerceNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
