package storage

import "errors"

// ErrSheetNotFound is returned by Store.Sheet for an unknown sheet name.
var ErrSheetNotFound = errors.New("sheet not found")

// Sheet is the narrow port the pipeline depends on: a 2-D grid whose first
// row is the header. Row and column indexes are zero-based, row 0 being the
// header row. There are no secondary indexes; every lookup above this port
// is a linear scan over ReadAllRows.
type Sheet interface {
	Name() string

	// ReadHeader returns the header row, or an empty slice for an empty sheet.
	ReadHeader() ([]string, error)

	// ReadAllRows returns the full used range, header row included.
	ReadAllRows() ([][]string, error)

	// AppendRow appends row as the new last row of the used range.
	AppendRow(row []string) error

	// WriteCell sets a single cell, growing the used range as needed.
	WriteCell(rowIdx, colIdx int, value string) error
}

// Store resolves sheets by name.
type Store interface {
	// Sheet returns an existing sheet or ErrSheetNotFound.
	Sheet(name string) (Sheet, error)

	// EnsureSheet returns the named sheet, creating it empty when missing.
	EnsureSheet(name string) (Sheet, error)

	// Flush persists outstanding writes. Adapters that write through may
	// make this a no-op.
	Flush() error
}
