package binding

import (
	"context"
	"fmt"
	"sync"

	"roster-bot/sheet"
)

type fakeRoster struct {
	names []string
	err   error
	panic bool
	calls int
}

func (f *fakeRoster) AllEmployees(ctx context.Context) ([]string, error) {
	f.calls++
	if f.panic {
		panic("roster exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.names...), nil
}

type captureRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureRecorder) Record(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, message)
}

// memStore is an in-memory sheet.Store that counts every access.
type memStore struct {
	sheets  map[string][][]string
	openErr error

	opens, reads, writes, appends int
}

func newMemStore() *memStore {
	return &memStore{sheets: map[string][][]string{"Users": {Header}}}
}

func (m *memStore) Open(ctx context.Context, name string) (sheet.Sheet, error) {
	m.opens++
	if m.openErr != nil {
		return nil, m.openErr
	}
	if _, ok := m.sheets[name]; !ok {
		return nil, fmt.Errorf("open sheet %q: %w", name, sheet.ErrSheetNotFound)
	}
	return &memSheet{store: m, name: name}, nil
}

func (m *memStore) Ensure(ctx context.Context, name string, header []string) error {
	if _, ok := m.sheets[name]; !ok {
		m.sheets[name] = [][]string{header}
	}
	return nil
}

func (m *memStore) rows(name string) [][]string {
	out := make([][]string, len(m.sheets[name]))
	for i, r := range m.sheets[name] {
		out[i] = append([]string(nil), r...)
	}
	return out
}

type memSheet struct {
	store *memStore
	name  string
}

func (s *memSheet) Name() string { return s.name }

func (s *memSheet) Rows(ctx context.Context) ([][]string, error) {
	s.store.reads++
	return s.store.rows(s.name), nil
}

func (s *memSheet) WriteRange(ctx context.Context, row, col int, values [][]string) error {
	s.store.writes++
	rows := s.store.sheets[s.name]
	for i, vals := range values {
		for len(rows) <= row+i {
			rows = append(rows, nil)
		}
		r := rows[row+i]
		for len(r) < col+len(vals) {
			r = append(r, "")
		}
		copy(r[col:], vals)
		rows[row+i] = r
	}
	s.store.sheets[s.name] = rows
	return nil
}

func (s *memSheet) AppendRow(ctx context.Context, values []string) error {
	s.store.appends++
	s.store.sheets[s.name] = append(s.store.sheets[s.name], append([]string(nil), values...))
	return nil
}
