package parsers

import (
	"fmt"
	"strings"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
)

// Format describes one supported broker CSV layout. Implementations live in
// per-broker subpackages and are pure: they map one header-keyed row to a
// canonical transaction and never touch storage or the network.
type Format interface {
	// Name is the broker template identifier, e.g. "selfwealth".
	Name() string
	// RequiredColumns lists the header names that must be present before any
	// row is processed.
	RequiredColumns() []string
	// Normalize converts a single header-keyed row. It must not guess: a row
	// that fails field validation returns an error and aborts the whole parse.
	Normalize(row map[string]string) (models.CanonicalTransaction, error)
}

// FormatMismatchError reports a CSV whose header does not match the declared
// broker template. The import is aborted before any row is read.
type FormatMismatchError struct {
	Format  string
	Missing []string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("csv does not match the %q template: missing required columns %s",
		e.Format, strings.Join(e.Missing, ", "))
}

// RowError wraps a normalization failure with the 1-based data row number so
// users can fix the exact line in their export.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Parse reads an entire broker CSV and returns canonical transactions in file
// order. Any structural or per-row failure fails the whole parse; partial
// imports would corrupt cost-basis history.
func Parse(header []string, rows []map[string]string, format Format) ([]models.CanonicalTransaction, error) {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range format.RequiredColumns() {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatMismatchError{Format: format.Name(), Missing: missing}
	}

	txs := make([]models.CanonicalTransaction, 0, len(rows))
	for i, row := range rows {
		tx, err := format.Normalize(row)
		if err != nil {
			return nil, &RowError{Row: i + 1, Err: err}
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
