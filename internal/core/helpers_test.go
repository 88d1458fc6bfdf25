package core

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// testSheet is one sheet of a generated workbook.
type testSheet struct {
	name string
	rows [][]string
}

// zipEntry is one file of a generated archive.
type zipEntry struct {
	name string
	data []byte
}

var (
	partsHeader = []string{
		ColCode, ColPartCode, ColPartNumberSpare, ColDiagramPosition, ColLeadTimeDays,
		ColPartDescription, ColProviderDescription, ColPartType, ColModel, "Proveedor Repuesto",
	}
	productsHeader = []string{
		ColCode, ColProvider, ColDescription, ColPartNumber, ColProductType,
		ColTechSheet, ColDiagram, ColImage,
	}
)

// sampleSheets returns a parts sheet followed by a products sheet.
func sampleSheets() []testSheet {
	return []testSheet{
		{
			name: "RepuestosTab",
			rows: [][]string{
				partsHeader,
				{"A1", "P1", "NP-1", "3", "15", "Tornillo M4", "Screw M4", "Fijación", "X100", "ACME"},
				{"A1", "P2", "NP-2", "7", "30", "Arandela", "Washer", "Fijación", "X100", "ACME"},
				{"B2", "P3", "NP-3", "1", "", "Motor", "Motor 220V", "Eléctrico", "Z9", "Bosch"},
			},
		},
		{
			name: "ProductosTab",
			rows: [][]string{
				productsHeader,
				{"A1", "ACME", "Taladro percutor", "T-100", "Herramienta", "https://example.test/ficha.pdf", "", ""},
				{"B2", "Bosch", "Amoladora angular", "AG-9", "Herramienta", "", "https://example.test/diagrama.pdf", ""},
				{"C3", "ACME", "Tornillo de banco", "TB-1", "Accesorio", "", "", ""},
			},
		},
	}
}

// buildWorkbook renders sheets into an xlsx file, in order.
func buildWorkbook(t *testing.T, sheets []testSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			require.NoError(t, f.SetSheetRow(s.name, cell, &values))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// buildArchive zips entries in the given order.
func buildArchive(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// sampleArchive is an archive holding the sample workbook under name.
func sampleArchive(t *testing.T, name string) []byte {
	t.Helper()
	return buildArchive(t, zipEntry{name: name, data: buildWorkbook(t, sampleSheets())})
}

// codes returns the values of column for every row of tbl.
func codes(tbl Table, column string) []string {
	out := make([]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		out[i] = r.Value(column)
	}
	return out
}

// newTestTable builds a table from a header row followed by data rows.
func newTestTable(rows ...[]string) Table {
	return NewTable(rows[0], rows[1:])
}
