package mysql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"trumetrapla/internal/storage"
)

// QueryTable runs query and returns its result set as a table. Column names
// become headers, so the usual header aliases apply to them.
func (s *Storage) QueryTable(ctx context.Context, name, query string, args ...any) (storage.Table, error) {
	const op = "storage.mysql.QueryTable"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.Table{}, fmt.Errorf("%s: query failed: %w", op, err)
	}
	defer rows.Close()

	cols, err := rows.ColumnTypes()
	if err != nil {
		return storage.Table{}, fmt.Errorf("%s: failed to read columns: %w", op, err)
	}

	table := storage.Table{Name: name, Headers: make([]string, len(cols)), HeaderLine: 1}
	for i, c := range cols {
		table.Headers[i] = c.Name()
	}

	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return storage.Table{}, fmt.Errorf("%s: failed to scan row: %w", op, err)
		}
		row := make([]storage.Cell, len(cols))
		for i, v := range values {
			row[i] = cellOf(v, cols[i].DatabaseTypeName())
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return storage.Table{}, fmt.Errorf("%s: %w", op, err)
	}

	return table, nil
}

// cellOf converts a scanned driver value. Numeric columns arrive as []byte
// for DECIMAL and as int64 or float64 otherwise.
func cellOf(v any, dbType string) storage.Cell {
	switch v := v.(type) {
	case nil:
		return storage.Blank()
	case int64:
		return storage.Number(float64(v))
	case float64:
		return storage.Number(v)
	case float32:
		return storage.Number(float64(v))
	case bool:
		return storage.Text(strconv.FormatBool(v))
	case time.Time:
		return storage.Date(v)
	case []byte:
		return textCell(string(v), dbType)
	case string:
		return textCell(v, dbType)
	}
	return storage.Text(fmt.Sprint(v))
}

func textCell(s, dbType string) storage.Cell {
	if strings.TrimSpace(s) == "" {
		return storage.Blank()
	}
	switch dbType {
	case "DECIMAL", "INT", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT", "FLOAT", "DOUBLE",
		"UNSIGNED INT", "UNSIGNED BIGINT", "UNSIGNED SMALLINT", "UNSIGNED TINYINT", "UNSIGNED MEDIUMINT":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return storage.Number(f)
		}
	}
	return storage.Text(s)
}
