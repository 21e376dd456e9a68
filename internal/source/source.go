// Package source decodes spreadsheet files into storage tables.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"trumetrapla/internal/storage"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrNoHeader          = errors.New("no header row found")
	ErrUnreadable        = errors.New("file cannot be decoded")
)

type Format int

const (
	FormatUnknown Format = iota
	FormatWorkbook
	FormatCSV
)

// FormatOf picks the decoder from the file extension.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatWorkbook
	case ".csv", ".txt":
		return FormatCSV
	}
	return FormatUnknown
}

// ReadFile opens path and decodes the selected sheet. sheet is a sheet name
// or a 0-based index; empty selects the first sheet. CSV files ignore it.
func ReadFile(path, sheet string) (storage.Table, error) {
	const op = "source.ReadFile"

	f, err := os.Open(path)
	if err != nil {
		return storage.Table{}, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	t, err := Read(f, filepath.Base(path), sheet)
	if err != nil {
		return storage.Table{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// Read decodes r according to the extension of name.
func Read(r io.Reader, name, sheet string) (storage.Table, error) {
	switch FormatOf(name) {
	case FormatWorkbook:
		return ReadWorkbook(r, name, sheet)
	case FormatCSV:
		return ReadCSV(r, name)
	}
	return storage.Table{}, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
}

func headerIndex(rows [][]string) int {
	for i, row := range rows {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				return i
			}
		}
	}
	return -1
}
