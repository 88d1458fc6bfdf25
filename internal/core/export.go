package core

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// PartsSheetName is the sheet name of the parts export workbook.
const PartsSheetName = "Repuestos"

// DefaultPartColumns is the column allow-list of the parts export.
var DefaultPartColumns = []string{
	ColPartNumberSpare,
	ColPartCode,
	ColDiagramPosition,
	ColLeadTimeDays,
	ColPartDescription,
	ColProviderDescription,
	ColPartType,
	ColModel,
}

// Exporter renders selections into downloadable files.
// It holds only presentation settings; every export is a pure function
// of the rows passed in.
type Exporter struct {
	OrgName     string
	Subtitle    string
	Logo        []byte // PNG; nil skips the logo
	PartColumns []string
}

// ExportParts builds the parts workbook for one product.
// When columns is non-empty and all of them exist the sheet is projected
// to them; otherwise every column is exported.
func ExportParts(parts Table, productCode string, columns []string) (*Download, error) {
	selected := Project(PartsForProduct(parts, productCode), columns)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), PartsSheetName); err != nil {
		return nil, fmt.Errorf("export parts: rename sheet: %w", err)
	}

	header := make([]interface{}, len(selected.Columns))
	for i, c := range selected.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(PartsSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("export parts: write header: %w", err)
	}

	for i, r := range selected.Rows {
		values := r.Values(selected.Columns)
		record := make([]interface{}, len(values))
		for j, v := range values {
			if v != "" {
				record[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export parts: %w", err)
		}
		if err := f.SetSheetRow(PartsSheetName, cell, &record); err != nil {
			return nil, fmt.Errorf("export parts: write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export parts: encode workbook: %w", err)
	}

	return &Download{
		FileName:    fmt.Sprintf("repuestos_%s.xlsx", productCode),
		ContentType: MIMEXLSX,
		Data:        buf.Bytes(),
	}, nil
}

// ExportParts builds the parts workbook using the exporter's column allow-list.
func (e *Exporter) ExportParts(parts Table, productCode string) (*Download, error) {
	columns := e.PartColumns
	if columns == nil {
		columns = DefaultPartColumns
	}
	return ExportParts(parts, productCode, columns)
}
