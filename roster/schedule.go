package roster

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

var ErrEmptyWorkbook = errors.New("schedule sheet has no header row")

// ParseOptions locates the grid inside the schedule sheet. Rows and columns
// are 1-based as they appear in a spreadsheet program.
type ParseOptions struct {
	Sheet     string // empty means the active sheet
	HeaderRow int
	StartRow  int
	NameCol   int
	// Reference anchors day labels that carry no year, e.g. "11/3": they
	// resolve to the year that puts them closest to it.
	Reference time.Time
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{HeaderRow: 1, StartRow: 3, NameCol: 2, Reference: time.Now()}
}

// Day is one column of the schedule. Date is zero when the label is not a date.
type Day struct {
	Label string
	Date  time.Time
}

type Employee struct {
	Name   string
	Shifts []string // aligned with Schedule.Days, "" when blank
}

type Schedule struct {
	Days      []Day
	Employees []Employee
}

// Summary rows at the bottom of the sheet are not people.
var summaryMarkers = []string{"限休人數", "已休數目", "限休人数", "已休数目"}

func Parse(r io.Reader, opts ParseOptions) (*Schedule, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open schedule workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read schedule sheet %q: %w", sheet, err)
	}
	return parseRows(rows, opts)
}

func parseRows(rows [][]string, opts ParseOptions) (*Schedule, error) {
	if len(rows) < opts.HeaderRow {
		return nil, ErrEmptyWorkbook
	}

	nameIdx := opts.NameCol - 1
	header := rows[opts.HeaderRow-1]

	s := &Schedule{}
	for i := nameIdx + 1; i < len(header); i++ {
		label := strings.TrimSpace(header[i])
		s.Days = append(s.Days, Day{Label: label, Date: parseDay(label, opts.Reference)})
	}

	for r := opts.StartRow - 1; r < len(rows); r++ {
		row := rows[r]
		name := strings.TrimSpace(cell(row, nameIdx))
		if skipName(name) {
			continue
		}

		shifts := make([]string, len(s.Days))
		for d := range s.Days {
			shifts[d] = strings.TrimSpace(cell(row, nameIdx+1+d))
		}
		s.Employees = append(s.Employees, Employee{Name: name, Shifts: shifts})
	}
	return s, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func skipName(name string) bool {
	if name == "" {
		return true
	}
	if _, err := strconv.ParseFloat(name, 64); err == nil {
		return true
	}
	return lo.SomeBy(summaryMarkers, func(m string) bool { return strings.Contains(name, m) })
}

var (
	datedLayouts    = []string{"2006/1/2", "2006-1-2", "01-02-06", "1/2/2006"}
	yearlessLayouts = []string{"1/2", "1-2"}
)

func parseDay(label string, ref time.Time) time.Time {
	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return time.Date(nearestYear(t.Month(), ref), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

// nearestYear picks the year for month that is at most six months away from
// ref, so a January sheet read in late December lands in the next year.
func nearestYear(month time.Month, ref time.Time) int {
	year := ref.Year()
	switch diff := int(month) - int(ref.Month()); {
	case diff < -6:
		return year + 1
	case diff > 6:
		return year - 1
	}
	return year
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *Schedule) Names() []string {
	return lo.Map(s.Employees, func(e Employee, _ int) string { return e.Name })
}

func (s *Schedule) Find(name string) (Employee, bool) {
	return lo.Find(s.Employees, func(e Employee) bool { return e.Name == name })
}

// DayIndex returns the column holding the calendar day of t, or -1.
func (s *Schedule) DayIndex(t time.Time) int {
	_, idx, ok := lo.FindIndexOf(s.Days, func(d Day) bool {
		return !d.Date.IsZero() && sameDay(d.Date, t)
	})
	if !ok {
		return -1
	}
	return idx
}

// ShiftOn reports the shift code of name on day. ok is false when either
// the person or the day is not in the schedule.
func (s *Schedule) ShiftOn(name string, day time.Time) (code string, ok bool) {
	e, found := s.Find(name)
	if !found {
		return "", false
	}
	idx := s.DayIndex(day)
	if idx < 0 {
		return "", false
	}
	return e.Shifts[idx], true
}

// DayShift is one entry of a personal listing.
type DayShift struct {
	Date     time.Time
	Code     string
	Category Category
	Known    bool
}

// Span lists name's shifts for n consecutive days starting at from.
func (s *Schedule) Span(name string, from time.Time, n int) []DayShift {
	out := make([]DayShift, 0, n)
	for i := 0; i < n; i++ {
		day := from.AddDate(0, 0, i)
		code, ok := s.ShiftOn(name, day)
		out = append(out, DayShift{Date: day, Code: code, Category: Classify(code), Known: ok})
	}
	return out
}

// Coworkers lists everyone else working the same category of shift as name on
// day. It is empty when name is not working that day.
func (s *Schedule) Coworkers(name string, day time.Time) []string {
	code, ok := s.ShiftOn(name, day)
	if !ok {
		return nil
	}
	cat := Classify(code)
	if !cat.Working() {
		return nil
	}

	idx := s.DayIndex(day)
	others := lo.Filter(s.Employees, func(e Employee, _ int) bool {
		return e.Name != name && Classify(e.Shifts[idx]) == cat
	})
	return lo.Map(others, func(e Employee, _ int) string { return e.Name + "（" + e.Shifts[idx] + "）" })
}

type Summary struct {
	Name      string
	TotalDays int
	Stats     map[Category]int
}

func (s *Schedule) Summary(name string) (Summary, bool) {
	e, ok := s.Find(name)
	if !ok {
		return Summary{}, false
	}
	filled := lo.Filter(e.Shifts, func(c string, _ int) bool { return c != "" })
	return Summary{Name: e.Name, TotalDays: len(filled), Stats: Analyze(filled)}, true
}
