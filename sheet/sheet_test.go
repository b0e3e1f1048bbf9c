package sheet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var header = []string{"使用者ID", "姓名", "模式", "休息日"}

func newDBStore(t *testing.T) *DBStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sheet.db")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	s, err := NewDBStore(db)
	require.NoError(t, err)
	return s
}

func newWorkbookStore(t *testing.T) *WorkbookStore {
	t.Helper()
	return NewWorkbookStore(filepath.Join(t.TempDir(), "users.xlsx"))
}

// compact drops trailing empty cells; the workbook backend does not keep them.
func compact(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		n := len(r)
		for n > 0 && r[n-1] == "" {
			n--
		}
		out[i] = append([]string{}, r[:n]...)
	}
	return out
}

func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"sqlite": func(t *testing.T) Store { return newDBStore(t) },
		"xlsx":   func(t *testing.T) Store { return newWorkbookStore(t) },
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("open missing sheet", func(t *testing.T) {
				req := require.New(t)
				ctx := context.Background()
				s := newStore(t)
				req.NoError(s.Ensure(ctx, "Other", []string{"x"}))

				_, err := s.Open(ctx, "Users")
				req.ErrorIs(err, ErrSheetNotFound)
			})

			t.Run("ensure is idempotent", func(t *testing.T) {
				req := require.New(t)
				ctx := context.Background()
				s := newStore(t)

				req.NoError(s.Ensure(ctx, "Users", header))
				req.NoError(s.Ensure(ctx, "Users", []string{"ignored"}))

				sh, err := s.Open(ctx, "Users")
				req.NoError(err)
				req.Equal("Users", sh.Name())

				rows, err := sh.Rows(ctx)
				req.NoError(err)
				req.Equal([][]string{header}, rows)
			})

			t.Run("append and write range", func(t *testing.T) {
				req := require.New(t)
				ctx := context.Background()
				s := newStore(t)
				req.NoError(s.Ensure(ctx, "Users", header))

				sh, err := s.Open(ctx, "Users")
				req.NoError(err)

				req.NoError(sh.AppendRow(ctx, []string{"u1", "王小明", "完整", ""}))
				req.NoError(sh.AppendRow(ctx, []string{"u2", "陳大文", "簡化", "11/3"}))
				req.NoError(sh.WriteRange(ctx, 2, 1, [][]string{{"李四", "完整", ""}}))

				rows, err := sh.Rows(ctx)
				req.NoError(err)
				req.Equal([][]string{
					header,
					{"u1", "王小明", "完整"},
					{"u2", "李四", "完整"},
				}, compact(rows))
			})

			t.Run("negative range", func(t *testing.T) {
				req := require.New(t)
				ctx := context.Background()
				s := newStore(t)
				req.NoError(s.Ensure(ctx, "Users", header))
				sh, err := s.Open(ctx, "Users")
				req.NoError(err)

				req.Error(sh.WriteRange(ctx, -1, 0, [][]string{{"x"}}))
			})
		})
	}
}

func TestDBStore_WriteRangePastEnd(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newDBStore(t)
	req.NoError(s.Ensure(ctx, "Users", header))
	sh, err := s.Open(ctx, "Users")
	req.NoError(err)

	req.NoError(sh.WriteRange(ctx, 2, 0, [][]string{{"u9"}}))

	rows, err := sh.Rows(ctx)
	req.NoError(err)
	req.Len(rows, 3)
	req.Empty(rows[1])
	req.Equal([]string{"u9"}, rows[2])

	// Append continues after the highest row.
	req.NoError(sh.AppendRow(ctx, []string{"u10"}))
	rows, err = sh.Rows(ctx)
	req.NoError(err)
	req.Equal([]string{"u10"}, rows[3])
}

func TestWorkbookStore_OpenWithoutFile(t *testing.T) {
	_, err := newWorkbookStore(t).Open(context.Background(), "Users")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSheetNotFound)
}

func TestOverlay(t *testing.T) {
	req := require.New(t)
	req.Equal([]string{"a", "x", "y"}, overlay([]string{"a", "b"}, 1, []string{"x", "y"}))
	req.Equal([]string{"", "", "z"}, overlay(nil, 2, []string{"z"}))
	req.Equal([]string{"a", "q", "c"}, overlay([]string{"a", "b", "c"}, 1, []string{"q"}))
}
