package roster

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Source supplies the names of everyone on the maintained schedule.
type Source interface {
	AllEmployees(ctx context.Context) ([]string, error)
}

// Loader fetches the raw schedule workbook.
type Loader interface {
	Load(ctx context.Context) (io.ReadCloser, error)
}

type FileLoader struct {
	Path string
}

func (l FileLoader) Load(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open schedule file: %w", err)
	}
	return f, nil
}

// HTTPLoader downloads the workbook, e.g. from a spreadsheet's xlsx export link.
type HTTPLoader struct {
	URL        string
	HTTPClient *http.Client
}

func NewHTTPLoader(url string, timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{
		URL:        url,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (l *HTTPLoader) Load(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("User-Agent", "roster-bot/1.0")

	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("download schedule: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// Workbook reads the schedule through its Loader on every call. Nothing is
// cached, so edits to the workbook show up on the next request.
type Workbook struct {
	loader Loader
	opts   ParseOptions
	now    func() time.Time
	logger *zap.Logger
}

func NewWorkbook(loader Loader, opts ParseOptions, now func() time.Time, logger *zap.Logger) *Workbook {
	if now == nil {
		now = time.Now
	}
	return &Workbook{loader: loader, opts: opts, now: now, logger: logger.Named("roster")}
}

func (w *Workbook) Schedule(ctx context.Context) (*Schedule, error) {
	rc, err := w.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	opts := w.opts
	opts.Reference = w.now()

	s, err := Parse(rc, opts)
	if err != nil {
		return nil, err
	}
	w.logger.Debug("schedule loaded",
		zap.Int("employees", len(s.Employees)),
		zap.Int("days", len(s.Days)),
	)
	return s, nil
}

func (w *Workbook) AllEmployees(ctx context.Context) ([]string, error) {
	s, err := w.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	return s.Names(), nil
}
