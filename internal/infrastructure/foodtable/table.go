package foodtable

import "github.com/nutrikatori/backend/internal/domain"

// Table is the food-composition reference table. It is built once and never
// modified, so it can be shared by concurrent requests without locking.
type Table struct {
	records []domain.FoodRecord
}

// NewTable wraps records in a Table. An empty slice is domain.ErrEmptyTable.
func NewTable(records []domain.FoodRecord) (*Table, error) {
	if len(records) == 0 {
		return nil, domain.ErrEmptyTable
	}
	owned := make([]domain.FoodRecord, len(records))
	copy(owned, records)
	return &Table{records: owned}, nil
}

// Records returns the rows in table order. Callers must not modify them.
func (t *Table) Records() []domain.FoodRecord {
	if t == nil {
		return nil
	}
	return t.records
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}
