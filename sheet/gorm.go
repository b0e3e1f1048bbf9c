package sheet

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"roster-bot/model"
)

// DBStore keeps sheets as model.SheetRow records.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&model.SheetRow{}); err != nil {
		return nil, fmt.Errorf("migrate sheet rows: %w", err)
	}
	return &DBStore{db: db}, nil
}

func (s *DBStore) Open(ctx context.Context, name string) (Sheet, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.SheetRow{}).Where("sheet = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("open sheet %q: %w", name, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("open sheet %q: %w", name, ErrSheetNotFound)
	}
	return &dbSheet{db: s.db, name: name}, nil
}

func (s *DBStore) Ensure(ctx context.Context, name string, header []string) error {
	row := model.SheetRow{Sheet: name, Position: 0, Cells: header}
	err := s.db.WithContext(ctx).
		Where("sheet = ? AND position = ?", name, 0).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("ensure sheet %q: %w", name, err)
	}
	return nil
}

type dbSheet struct {
	db   *gorm.DB
	name string
}

func (s *dbSheet) Name() string { return s.name }

func (s *dbSheet) Rows(ctx context.Context) ([][]string, error) {
	var records []model.SheetRow
	err := s.db.WithContext(ctx).
		Where("sheet = ?", s.name).
		Order("position").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.name, err)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		// A range write past the end leaves holes; keep indexes aligned.
		for len(rows) < r.Position {
			rows = append(rows, nil)
		}
		rows = append(rows, r.Cells)
	}
	return rows, nil
}

func (s *dbSheet) WriteRange(ctx context.Context, row, col int, values [][]string) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("write sheet %q: negative range %d,%d", s.name, row, col)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, vals := range values {
			var rec model.SheetRow
			err := tx.Where("sheet = ? AND position = ?", s.name, row+i).First(&rec).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rec = model.SheetRow{Sheet: s.name, Position: row + i}
			} else if err != nil {
				return fmt.Errorf("write sheet %q row %d: %w", s.name, row+i, err)
			}

			rec.Cells = overlay(rec.Cells, col, vals)
			if err := tx.Save(&rec).Error; err != nil {
				return fmt.Errorf("write sheet %q row %d: %w", s.name, row+i, err)
			}
		}
		return nil
	})
}

func (s *dbSheet) AppendRow(ctx context.Context, values []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		err := tx.Model(&model.SheetRow{}).
			Where("sheet = ?", s.name).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error
		if err != nil {
			return fmt.Errorf("append to sheet %q: %w", s.name, err)
		}

		rec := model.SheetRow{Sheet: s.name, Position: int(next), Cells: append([]string(nil), values...)}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("append to sheet %q: %w", s.name, err)
		}
		return nil
	})
}
