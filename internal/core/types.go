// Package core provides the business logic for the workshop catalog.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Product sheet columns.
const (
	ColCode        = "Código"
	ColProvider    = "Proveedor"
	ColDescription = "Descripción"
	ColPartNumber  = "Numero de Parte"
	ColProductType = "Tipo de producto"
	ColTechSheet   = "Link Ficha"
	ColDiagram     = "Link Diagrama"
	ColImage       = "Imagen(link)"
)

// Parts sheet columns. ColCode is shared and joins a part to its product.
const (
	ColPartCode            = "Código Repuesto"
	ColPartNumberSpare     = "Numero de parte del repuesto"
	ColDiagramPosition     = "Parte en Diagrama"
	ColLeadTimeDays        = "Cantidad de dias para gestion"
	ColPartDescription     = "Descripción Repuesto"
	ColProviderDescription = "Descripción Prov"
	ColPartType            = "Tipo de repuesto"
	ColModel               = "Modelo"
)

// Table is an immutable, ordered set of rows sharing one header.
type Table struct {
	Columns []string
	Rows    []Row
	index   map[string]int
}

// NewTable builds a table from a header and raw cell rows.
// Rows shorter than the header are allowed; missing cells are absent.
func NewTable(columns []string, cells [][]string) Table {
	t := Table{Columns: columns, index: buildIndex(columns)}
	t.Rows = make([]Row, len(cells))
	for i, c := range cells {
		t.Rows[i] = Row{columns: columns, index: t.index, values: c}
	}
	return t
}

func buildIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return idx
}

// HasColumn reports whether the table header contains name.
func (t Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// derive returns a table with the same header and the given rows.
func (t Table) derive(rows []Row) Table {
	return Table{Columns: t.Columns, Rows: rows, index: t.index}
}

// Row is a single record of a Table.
type Row struct {
	columns []string
	index   map[string]int
	values  []string
}

// Get returns the trimmed value of column and whether it is present.
// Unknown columns, missing cells and blank cells are all absent.
func (r Row) Get(column string) (string, bool) {
	i, ok := r.index[column]
	if !ok || i >= len(r.values) {
		return "", false
	}
	v := strings.TrimSpace(r.values[i])
	if v == "" {
		return "", false
	}
	return v, true
}

// Raw returns the cell of column exactly as read, surrounding spaces
// included. Presence follows Get.
func (r Row) Raw(column string) (string, bool) {
	if _, ok := r.Get(column); !ok {
		return "", false
	}
	return r.values[r.index[column]], true
}

// Value returns the value of column, or "" when absent.
func (r Row) Value(column string) string {
	v, _ := r.Get(column)
	return v
}

// Field is one label/value pair of a row.
type Field struct {
	Label string
	Value string
}

// Fields returns every column of the row in header order.
func (r Row) Fields() []Field {
	fields := make([]Field, len(r.columns))
	for i, c := range r.columns {
		fields[i] = Field{Label: c, Value: r.Value(c)}
	}
	return fields
}

// Values returns the row's cells for the given columns, in that order.
func (r Row) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r.Value(c)
	}
	return out
}

// Map returns the present cells keyed by column name.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.columns))
	for _, c := range r.columns {
		if v, ok := r.Get(c); ok {
			m[c] = v
		}
	}
	return m
}

// Product is a typed view over a row of the products sheet.
type Product struct{ Row }

func (p Product) Code() string        { return p.Value(ColCode) }
func (p Product) Provider() string    { return p.Value(ColProvider) }
func (p Product) Description() string { return p.Value(ColDescription) }
func (p Product) PartNumber() string  { return p.Value(ColPartNumber) }
func (p Product) ProductType() string { return p.Value(ColProductType) }

// TechSheetLink returns the technical sheet URL, if any.
func (p Product) TechSheetLink() (string, bool) { return p.Get(ColTechSheet) }

// DiagramLink returns the exploded-diagram URL, if any.
func (p Product) DiagramLink() (string, bool) { return p.Get(ColDiagram) }

// ImageLink returns the product image URL, if any.
func (p Product) ImageLink() (string, bool) { return p.Get(ColImage) }

// Part is a typed view over a row of the parts sheet.
type Part struct{ Row }

func (p Part) ProductCode() string         { return p.Value(ColCode) }
func (p Part) PartCode() string            { return p.Value(ColPartCode) }
func (p Part) PartNumber() string          { return p.Value(ColPartNumberSpare) }
func (p Part) DiagramPosition() string     { return p.Value(ColDiagramPosition) }
func (p Part) Description() string         { return p.Value(ColPartDescription) }
func (p Part) ProviderDescription() string { return p.Value(ColProviderDescription) }
func (p Part) PartType() string            { return p.Value(ColPartType) }
func (p Part) Model() string               { return p.Value(ColModel) }

// LeadTimeDays returns the management lead time in days.
// Spreadsheet numbers may come formatted as "15" or "15.0".
func (p Part) LeadTimeDays() (int, bool) {
	v, ok := p.Get(ColLeadTimeDays)
	if !ok {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// Source identifies where a dataset was loaded from.
type Source struct {
	URL   string `json:"url"`
	Entry string `json:"entry"`
}

// Dataset is one consistent snapshot of the catalog.
// Products and Parts always come from the same archive fetch.
type Dataset struct {
	Products   Table
	Parts      Table
	SnapshotID string
	Source     Source
	LoadedAt   time.Time
}

// SnapshotInfo summarizes a dataset for display.
type SnapshotInfo struct {
	SnapshotID string    `json:"snapshotId"`
	Source     Source    `json:"source"`
	LoadedAt   time.Time `json:"loadedAt"`
	Products   int       `json:"products"`
	Parts      int       `json:"parts"`
}

// Info returns a summary of the dataset.
func (d *Dataset) Info() SnapshotInfo {
	return SnapshotInfo{
		SnapshotID: d.SnapshotID,
		Source:     d.Source,
		LoadedAt:   d.LoadedAt,
		Products:   d.Products.Len(),
		Parts:      d.Parts.Len(),
	}
}

// Download is a generated file ready to be served.
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

// MIME types of generated downloads.
const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEPDF  = "application/pdf"
)
