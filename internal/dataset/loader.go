// Package dataset читает ответы анкеты из книги Excel.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrSheetNotFound  = errors.New("sheet not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrSampleTooLarge = errors.New("sample size exceeds available rows")
	ErrInvalidSample  = errors.New("sample size must be positive")
)

// Load открывает книгу, выбирает четыре колонки листа и возвращает первые n строк
// в порядке листа.
func Load(path, sheet string, cols Columns, n int) ([]Response, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSample, n)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, filepath.Base(path))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrColumnNotFound, sheet)
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}

	resolved, err := resolveColumns(header, cols)
	if err != nil {
		return nil, err
	}

	data := rows[1:]
	if n > len(data) {
		return nil, fmt.Errorf("%w: requested %d, sheet %q has %d", ErrSampleTooLarge, n, sheet, len(data))
	}

	out := make([]Response, 0, n)
	for _, row := range data[:n] {
		out = append(out, Response{
			ID:       cellAt(row, resolved.ID),
			FreeText: cellAt(row, resolved.FreeText),
			WG:       CoerceLabel(cellAt(row, resolved.WG)),
			RA:       CoerceLabel(cellAt(row, resolved.RA)),
		})
	}
	return out, nil
}

// maxExactInt - граница, до которой float64 хранит целые без потерь
const maxExactInt = 1 << 53

// CoerceLabel приводит ячейку оценщика к строке.
// Целые числа, записанные как "1.0", приводятся к "1"; значения вне точного диапазона float64 не меняются.
func CoerceLabel(raw string) Label {
	v := cleanCell(norm.NFKC.String(raw))
	if v == "" {
		return Label{}
	}
	if strings.Contains(v, ".") {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
			v = strconv.FormatInt(int64(f), 10)
		}
	}
	return NewLabel(v)
}

type columnIndexes struct {
	ID       int
	FreeText int
	WG       int
	RA       int
}

func resolveColumns(header []string, cols Columns) (columnIndexes, error) {
	var res columnIndexes
	var err error
	if res.ID, err = findColumn(header, cols.ID); err != nil {
		return res, err
	}
	if res.FreeText, err = findColumn(header, cols.FreeText); err != nil {
		return res, err
	}
	if res.WG, err = findColumn(header, cols.WG); err != nil {
		return res, err
	}
	if res.RA, err = findColumn(header, cols.RA); err != nil {
		return res, err
	}
	return res, nil
}

// findColumn ищет точное совпадение, затем совпадение без учета регистра
func findColumn(header []string, name string) (int, error) {
	trimmed := strings.TrimSpace(name)
	for i, col := range header {
		if col == trimmed {
			return i, nil
		}
	}
	for i, col := range header {
		if strings.EqualFold(col, trimmed) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

func cleanCell(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}
