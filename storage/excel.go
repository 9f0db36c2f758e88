package storage

import (
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// ExcelStore backs the Sheet port with an xlsx workbook on disk. Every
// mutation writes the workbook through, so a crash between invocations
// loses nothing. All cost is O(rows) per call; the workbook is the source
// of truth and nothing is cached between calls.
type ExcelStore struct {
	mu   sync.Mutex
	file *excelize.File
	path string
}

// OpenExcelStore opens the workbook at path, creating a new one when the
// file does not exist yet.
func OpenExcelStore(path string) (*ExcelStore, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
		return &ExcelStore{file: f, path: path}, nil
	}
	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("create workbook %s: %w", path, err)
	}
	return &ExcelStore{file: f, path: path}, nil
}

func (s *ExcelStore) Sheet(name string) (Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.file.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if idx == -1 {
		return nil, ErrSheetNotFound
	}
	return &excelSheet{store: s, name: name}, nil
}

func (s *ExcelStore) EnsureSheet(name string) (Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.file.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if idx == -1 {
		if _, err := s.file.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	return &excelSheet{store: s, name: name}, nil
}

func (s *ExcelStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *ExcelStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func (s *ExcelStore) save() error {
	return s.file.SaveAs(s.path)
}

type excelSheet struct {
	store *ExcelStore
	name  string
}

func (e *excelSheet) Name() string { return e.name }

func (e *excelSheet) ReadHeader() ([]string, error) {
	rows, err := e.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return rows[0], nil
}

func (e *excelSheet) ReadAllRows() ([][]string, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	rows, err := e.store.file.GetRows(e.name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", e.name, err)
	}
	return rows, nil
}

func (e *excelSheet) AppendRow(row []string) error {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	rows, err := e.store.file.GetRows(e.name)
	if err != nil {
		return fmt.Errorf("read %s: %w", e.name, err)
	}
	next := len(rows) + 1
	for i, v := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, next)
		if err != nil {
			return err
		}
		if err := e.store.file.SetCellValue(e.name, cell, v); err != nil {
			return fmt.Errorf("append to %s: %w", e.name, err)
		}
	}
	return e.store.save()
}

func (e *excelSheet) WriteCell(rowIdx, colIdx int, value string) error {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
	if err != nil {
		return err
	}
	if err := e.store.file.SetCellValue(e.name, cell, value); err != nil {
		return fmt.Errorf("write %s!%s: %w", e.name, cell, err)
	}
	return e.store.save()
}
