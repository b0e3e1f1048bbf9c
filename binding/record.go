package binding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"roster-bot/sheet"
)

type Mode string

const (
	ModeFull       Mode = "完整"
	ModeSimplified Mode = "簡化"
)

// Users sheet layout.
const (
	ColUserID = iota
	ColName
	ColMode
	ColRestDays
)

var Header = []string{"使用者ID", "姓名", "模式", "休息日"}

var (
	ErrNotBound        = errors.New("user is not bound")
	ErrInvalidRestDays = errors.New("invalid rest days")
)

// Record is one row of the Users sheet. Row is its index in the sheet.
type Record struct {
	Row      int
	UserID   string
	Name     string
	Mode     Mode
	RestDays string
}

func field(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

func recordAt(rows [][]string, i int) Record {
	r := rows[i]
	return Record{
		Row:      i,
		UserID:   field(r, ColUserID),
		Name:     field(r, ColName),
		Mode:     Mode(field(r, ColMode)),
		RestDays: field(r, ColRestDays),
	}
}

// findRow returns the first data row whose first column is userID, or -1.
// Row 0 is the header.
func findRow(rows [][]string, userID string) int {
	for i := 1; i < len(rows); i++ {
		if field(rows[i], ColUserID) == userID {
			return i
		}
	}
	return -1
}

// Directory reads and edits bindings in the Users sheet.
type Directory struct {
	store     sheet.Store
	sheetName string
}

func NewDirectory(store sheet.Store, sheetName string) *Directory {
	return &Directory{store: store, sheetName: sheetName}
}

func (d *Directory) rows(ctx context.Context) (sheet.Sheet, [][]string, error) {
	sh, err := d.store.Open(ctx, d.sheetName)
	if err != nil {
		return nil, nil, err
	}
	rows, err := sh.Rows(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sh, rows, nil
}

func (d *Directory) Lookup(ctx context.Context, userID string) (Record, error) {
	_, rows, err := d.rows(ctx)
	if err != nil {
		return Record{}, err
	}
	i := findRow(rows, userID)
	if i < 0 {
		return Record{}, ErrNotBound
	}
	return recordAt(rows, i), nil
}

// All returns every data row that carries a user id.
func (d *Directory) All(ctx context.Context) ([]Record, error) {
	_, rows, err := d.rows(ctx)
	if err != nil {
		return nil, err
	}
	var out []Record
	for i := 1; i < len(rows); i++ {
		if rec := recordAt(rows, i); rec.UserID != "" {
			out = append(out, rec)
		}
	}
	return out, nil
}

// SetRestDays stores the already-normalized list in the caller's row.
func (d *Directory) SetRestDays(ctx context.Context, userID string, days []string) error {
	sh, rows, err := d.rows(ctx)
	if err != nil {
		return err
	}
	i := findRow(rows, userID)
	if i < 0 {
		return ErrNotBound
	}
	return sh.WriteRange(ctx, i, ColRestDays, [][]string{{strings.Join(days, ",")}})
}

var restDaySep = strings.NewReplacer("，", ",", "、", ",", " ", ",")

// ParseRestDays accepts "11/3,11/10" style lists and returns them as M/D.
func ParseRestDays(s string) ([]string, error) {
	var days []string
	for _, part := range strings.Split(restDaySep.Replace(s), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := time.Parse("1/2", part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRestDays, part)
		}
		days = append(days, fmt.Sprintf("%d/%d", t.Month(), t.Day()))
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrInvalidRestDays)
	}
	return days, nil
}

// IsRestDay reports whether day's month/day appears in a stored rest-day list.
func (r Record) IsRestDay(day time.Time) bool {
	want := fmt.Sprintf("%d/%d", day.Month(), day.Day())
	for _, d := range strings.Split(r.RestDays, ",") {
		if strings.TrimSpace(d) == want {
			return true
		}
	}
	return false
}
