package storage

import "sync"

// MemoryStore is an in-process Store used by unit tests and local runs
// without a workbook on disk. Individual grid operations are guarded by a
// mutex; multi-step sequences (read-then-append numbering) are intentionally
// not, matching the backing-store semantics the pipeline is written against.
type MemoryStore struct {
	mu     sync.Mutex
	sheets map[string]*MemorySheet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: make(map[string]*MemorySheet)}
}

func (s *MemoryStore) Sheet(name string) (Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.sheets[name]
	if !ok {
		return nil, ErrSheetNotFound
	}
	return sh, nil
}

func (s *MemoryStore) EnsureSheet(name string) (Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok := s.sheets[name]; ok {
		return sh, nil
	}
	sh := &MemorySheet{name: name}
	s.sheets[name] = sh
	return sh, nil
}

func (s *MemoryStore) Flush() error { return nil }

// Seed replaces the named sheet with the given rows. Test helper.
func (s *MemoryStore) Seed(name string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	s.sheets[name] = &MemorySheet{name: name, rows: copied}
}

// MemorySheet is a growable 2-D grid of strings.
type MemorySheet struct {
	mu   sync.Mutex
	name string
	rows [][]string
}

func (m *MemorySheet) Name() string { return m.name }

func (m *MemorySheet) ReadHeader() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) == 0 {
		return []string{}, nil
	}
	return append([]string(nil), m.rows[0]...), nil
}

func (m *MemorySheet) ReadAllRows() ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *MemorySheet) AppendRow(row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, append([]string(nil), row...))
	return nil
}

func (m *MemorySheet) WriteCell(rowIdx, colIdx int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.rows) <= rowIdx {
		m.rows = append(m.rows, []string{})
	}
	for len(m.rows[rowIdx]) <= colIdx {
		m.rows[rowIdx] = append(m.rows[rowIdx], "")
	}
	m.rows[rowIdx][colIdx] = value
	return nil
}
