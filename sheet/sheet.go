// Package sheet is a minimal spreadsheet-style row store: named sheets made
// of string rows, read whole, written by range or appended to.
package sheet

import (
	"context"
	"errors"
)

var ErrSheetNotFound = errors.New("sheet not found")

type Store interface {
	// Open returns ErrSheetNotFound when no sheet has that name.
	Open(ctx context.Context, name string) (Sheet, error)
	// Ensure creates the sheet with a header row if it is missing.
	Ensure(ctx context.Context, name string, header []string) error
}

type Sheet interface {
	Name() string
	// Rows returns every row including the header at index 0.
	Rows(ctx context.Context) ([][]string, error)
	// WriteRange overwrites a block starting at the 0-based row and column.
	// The block's shape is the shape of values.
	WriteRange(ctx context.Context, row, col int, values [][]string) error
	AppendRow(ctx context.Context, values []string) error
}

// overlay copies values into cells starting at col, growing cells as needed.
func overlay(cells []string, col int, values []string) []string {
	if need := col + len(values); len(cells) < need {
		grown := make([]string, need)
		copy(grown, cells)
		cells = grown
	}
	copy(cells[col:], values)
	return cells
}
