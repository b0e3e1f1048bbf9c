package roster

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sampleGrid = [][]string{
	{"", "姓名", "11/3", "11/4", "11/5", "備註"},
	{"", "", "一", "二", "三"},
	{"1", "王小明", "N1", "O", "M2"},
	{"2", "陳大文", "N3", "A1", "M"},
	{"3", "林美玲", "M1", "", "P"},
	{"", "限休人數", "2", "1", "1"},
	{"", "123", "x"},
	{"", " 張三 ", " a2 "},
}

var taipei = time.FixedZone("CST", 8*60*60)

func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, r := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		vals := append([]string(nil), r...)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &vals))
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func parseSample(t *testing.T) *Schedule {
	t.Helper()
	opts := DefaultParseOptions()
	opts.Reference = time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC)
	s, err := Parse(bytes.NewReader(buildWorkbook(t, sampleGrid)), opts)
	require.NoError(t, err)
	return s
}

func taipeiDay(t *testing.T, month time.Month, day int) time.Time {
	t.Helper()
	return time.Date(2025, month, day, 21, 0, 0, 0, taipei)
}

func TestParse(t *testing.T) {
	req := require.New(t)
	s := parseSample(t)

	req.Len(s.Days, 4)
	req.Equal(time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC), s.Days[0].Date)
	req.Equal("備註", s.Days[3].Label)
	req.True(s.Days[3].Date.IsZero())

	req.Equal([]string{"王小明", "陳大文", "林美玲", "張三"}, s.Names())

	e, ok := s.Find("張三")
	req.True(ok)
	req.Equal([]string{"a2", "", "", ""}, e.Shifts)

	_, ok = s.Find("張")
	req.False(ok)
}

func TestParse_Errors(t *testing.T) {
	req := require.New(t)

	_, err := Parse(bytes.NewReader([]byte("not a workbook")), DefaultParseOptions())
	req.Error(err)

	_, err = Parse(bytes.NewReader(buildWorkbook(t, nil)), DefaultParseOptions())
	req.ErrorIs(err, ErrEmptyWorkbook)

	opts := DefaultParseOptions()
	opts.Sheet = "Missing"
	_, err = Parse(bytes.NewReader(buildWorkbook(t, sampleGrid)), opts)
	req.Error(err)
}

func TestSchedule_ShiftOn(t *testing.T) {
	req := require.New(t)
	s := parseSample(t)

	code, ok := s.ShiftOn("王小明", taipeiDay(t, time.November, 4))
	req.True(ok)
	req.Equal("O", code)

	code, ok = s.ShiftOn("林美玲", taipeiDay(t, time.November, 4))
	req.True(ok)
	req.Empty(code)

	_, ok = s.ShiftOn("王小明", taipeiDay(t, time.November, 9))
	req.False(ok)

	_, ok = s.ShiftOn("路人", taipeiDay(t, time.November, 3))
	req.False(ok)
}

func TestSchedule_Coworkers(t *testing.T) {
	req := require.New(t)
	s := parseSample(t)

	req.Equal([]string{"陳大文（N3）"}, s.Coworkers("王小明", taipeiDay(t, time.November, 3)))
	req.Empty(s.Coworkers("王小明", taipeiDay(t, time.November, 4)))
	req.Empty(s.Coworkers("林美玲", taipeiDay(t, time.November, 3)))
	req.Equal([]string{"王小明（M2）"}, s.Coworkers("陳大文", taipeiDay(t, time.November, 5)))
}

func TestSchedule_Span(t *testing.T) {
	req := require.New(t)
	s := parseSample(t)

	span := s.Span("陳大文", taipeiDay(t, time.November, 3), 5)
	req.Len(span, 5)
	req.Equal("N3", span[0].Code)
	req.Equal(Night, span[0].Category)
	req.Equal(Middle, span[1].Category)
	req.Equal(Morning, span[2].Category)
	req.True(span[2].Known)
	req.False(span[3].Known)
	req.False(span[4].Known)
}

func TestSchedule_Summary(t *testing.T) {
	req := require.New(t)
	s := parseSample(t)

	sum, ok := s.Summary("王小明")
	req.True(ok)
	req.Equal(3, sum.TotalDays)
	req.Equal(1, sum.Stats[Night])
	req.Equal(1, sum.Stats[Rest])
	req.Equal(1, sum.Stats[Morning])

	sum, ok = s.Summary("林美玲")
	req.True(ok)
	req.Equal(2, sum.TotalDays)
	req.Equal(1, sum.Stats[Leave])

	_, ok = s.Summary("路人")
	req.False(ok)
}

func TestParseDay(t *testing.T) {
	req := require.New(t)
	nov3 := time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)
	ref := time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC)
	longAgo := time.Date(2001, time.June, 1, 0, 0, 0, 0, time.UTC)

	req.Equal(nov3, parseDay("2025/11/3", longAgo))
	req.Equal(nov3, parseDay("2025-11-03", longAgo))
	req.Equal(nov3, parseDay("11-03-25", longAgo))
	req.Equal(nov3, parseDay("11/3/2025", longAgo))
	req.Equal(nov3, parseDay("11/3", ref))
	req.Equal(nov3, parseDay("11-3", ref))
	req.True(parseDay("星期一", ref).IsZero())
	req.True(parseDay("", ref).IsZero())
}

func TestParseDay_YearBoundary(t *testing.T) {
	tests := []struct {
		label string
		ref   time.Time
		want  time.Time
	}{
		{"1/1", time.Date(2025, time.December, 31, 21, 0, 0, 0, taipei), time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"12/31", time.Date(2026, time.January, 2, 9, 0, 0, 0, taipei), time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{"7/1", time.Date(2025, time.January, 15, 0, 0, 0, 0, taipei), time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{"6/30", time.Date(2025, time.December, 15, 0, 0, 0, 0, taipei), time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)},
		{"12/1", time.Date(2025, time.December, 1, 0, 0, 0, 0, taipei), time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			require.Equal(t, tt.want, parseDay(tt.label, tt.ref))
		})
	}
}

func TestSchedule_AcrossNewYear(t *testing.T) {
	req := require.New(t)
	grid := [][]string{
		{"", "姓名", "12/31", "1/1", "1/2"},
		{"", "", "三", "四", "五"},
		{"1", "王小明", "O", "N1", "M2"},
	}
	opts := DefaultParseOptions()
	opts.Reference = time.Date(2025, time.December, 31, 21, 0, 0, 0, taipei)

	s, err := parseRows(grid, opts)
	req.NoError(err)

	code, ok := s.ShiftOn("王小明", time.Date(2026, time.January, 1, 21, 0, 0, 0, taipei))
	req.True(ok)
	req.Equal("N1", code)

	code, ok = s.ShiftOn("王小明", time.Date(2025, time.December, 31, 21, 0, 0, 0, taipei))
	req.True(ok)
	req.Equal("O", code)
}
