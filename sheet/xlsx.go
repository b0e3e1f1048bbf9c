package sheet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/xuri/excelize/v2"
)

// WorkbookStore keeps sheets in a local .xlsx file. The file is reopened for
// every operation so edits made in a spreadsheet program are picked up.
type WorkbookStore struct {
	path string
	mu   sync.Mutex
}

func NewWorkbookStore(path string) *WorkbookStore {
	return &WorkbookStore{path: path}
}

func (s *WorkbookStore) Open(ctx context.Context, name string) (Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return nil, fmt.Errorf("open sheet %q: %w", name, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("open sheet %q: %w", name, ErrSheetNotFound)
	}
	return &workbookSheet{store: s, name: name}, nil
}

func (s *WorkbookStore) Ensure(ctx context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	created := false
	if errors.Is(err, fs.ErrNotExist) {
		f, created = excelize.NewFile(), true
	} else if err != nil {
		return fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("ensure sheet %q: %w", name, err)
	}
	if idx >= 0 && !created {
		return nil
	}

	if idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("ensure sheet %q: %w", name, err)
		}
		if created {
			// Drop the placeholder sheet of a fresh workbook.
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return fmt.Errorf("ensure sheet %q: %w", name, err)
			}
			f.SetActiveSheet(0)
		}
	}
	if err := setRow(f, name, 0, 0, header); err != nil {
		return fmt.Errorf("ensure sheet %q: %w", name, err)
	}
	return s.save(f)
}

func (s *WorkbookStore) save(f *excelize.File) error {
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", s.path, err)
	}
	return nil
}

// edit opens the workbook, applies fn and saves it.
func (s *WorkbookStore) edit(fn func(f *excelize.File) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}
	return s.save(f)
}

func setRow(f *excelize.File, sheet string, row, col int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	vals := append([]string(nil), values...)
	return f.SetSheetRow(sheet, cell, &vals)
}

type workbookSheet struct {
	store *WorkbookStore
	name  string
}

func (s *workbookSheet) Name() string { return s.name }

func (s *workbookSheet) Rows(ctx context.Context) ([][]string, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	f, err := excelize.OpenFile(s.store.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.store.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.name, err)
	}
	return rows, nil
}

func (s *workbookSheet) WriteRange(ctx context.Context, row, col int, values [][]string) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("write sheet %q: negative range %d,%d", s.name, row, col)
	}
	return s.store.edit(func(f *excelize.File) error {
		for i, vals := range values {
			if err := setRow(f, s.name, row+i, col, vals); err != nil {
				return fmt.Errorf("write sheet %q row %d: %w", s.name, row+i, err)
			}
		}
		return nil
	})
}

func (s *workbookSheet) AppendRow(ctx context.Context, values []string) error {
	return s.store.edit(func(f *excelize.File) error {
		rows, err := f.GetRows(s.name)
		if err != nil {
			return fmt.Errorf("append to sheet %q: %w", s.name, err)
		}
		if err := setRow(f, s.name, len(rows), 0, values); err != nil {
			return fmt.Errorf("append to sheet %q: %w", s.name, err)
		}
		return nil
	})
}
