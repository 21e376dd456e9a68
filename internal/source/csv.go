package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"trumetrapla/internal/storage"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV decodes a comma or semicolon separated file. The delimiter is taken
// from the first non-empty line; every value is a text cell.
func ReadCSV(r io.Reader, name string) (storage.Table, error) {
	const op = "source.ReadCSV"

	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	data, err := io.ReadAll(br)
	if err != nil {
		return storage.Table{}, fmt.Errorf("%s: %w", op, err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := storage.Table{Name: name}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return storage.Table{}, fmt.Errorf("%s: %w: %w", op, ErrUnreadable, err)
		}
		line, _ := reader.FieldPos(0)

		if table.HeaderLine == 0 {
			if headerIndex([][]string{record}) < 0 {
				continue
			}
			table.HeaderLine = line
			for _, h := range record {
				table.Headers = append(table.Headers, strings.TrimSpace(h))
			}
			continue
		}

		// csv.Reader drops empty lines; keep row indexes aligned with lines
		for table.Line(len(table.Rows)) < line {
			table.Rows = append(table.Rows, nil)
		}

		cells := make([]storage.Cell, len(record))
		for i, v := range record {
			if strings.TrimSpace(v) == "" {
				cells[i] = storage.Blank()
				continue
			}
			cells[i] = storage.Text(v)
		}
		table.Rows = append(table.Rows, cells)
	}

	if table.HeaderLine == 0 {
		return storage.Table{}, fmt.Errorf("%s: %s: %w", op, name, ErrNoHeader)
	}
	return table, nil
}

func sniffDelimiter(data []byte) rune {
	for line := range strings.Lines(string(data)) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}
		if strings.Count(line, "\t") > strings.Count(line, ",") {
			return '\t'
		}
		return ','
	}
	return ','
}
