package core

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Filter returns the rows of t whose value in column contains query,
// ignoring case. Row order is preserved.
//
// Both sides are lowercased, not case-folded, so "ss" does not match "ß".
// The query is matched against the cell as read, so a trailing space in
// the query only matches a word boundary or a padded cell.
//
// An empty query or a column the table does not have returns t unchanged.
// Absent cells never match a non-empty query.
func Filter(t Table, column, query string) Table {
	if query == "" || !t.HasColumn(column) {
		return t
	}

	// A Caser is stateful; one per call keeps Filter safe for concurrent use.
	lower := cases.Lower(language.Und)
	needle := lower.String(query)

	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		v, ok := r.Raw(column)
		if !ok {
			continue
		}
		if strings.Contains(lower.String(v), needle) {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// FilterEquals returns the rows whose value in column equals value exactly.
// An empty value or unknown column returns t unchanged.
func FilterEquals(t Table, column, value string) Table {
	value = strings.TrimSpace(value)
	if value == "" || !t.HasColumn(column) {
		return t
	}

	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if v, ok := r.Get(column); ok && v == value {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// Distinct returns the sorted set of present values in column.
func Distinct(t Table, column string) []string {
	if !t.HasColumn(column) {
		return nil
	}

	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		if v, ok := r.Get(column); ok {
			seen[v] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// PartsForProduct returns the parts whose product code equals code.
func PartsForProduct(parts Table, code string) Table {
	code = strings.TrimSpace(code)
	rows := make([]Row, 0)
	for _, r := range parts.Rows {
		if v, ok := r.Get(ColCode); ok && v == code {
			rows = append(rows, r)
		}
	}
	return parts.derive(rows)
}

// Project returns a table restricted to columns, in that order.
// If any column is missing the table is returned unchanged.
func Project(t Table, columns []string) Table {
	if len(columns) == 0 {
		return t
	}
	for _, c := range columns {
		if !t.HasColumn(c) {
			return t
		}
	}

	cells := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		cells[i] = r.Values(columns)
	}
	header := append([]string(nil), columns...)
	return NewTable(header, cells)
}
