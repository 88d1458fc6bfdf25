package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entryName = "Registro de productos y repuestos.xlsx"

func TestLoad_TabOrderIsPositional(t *testing.T) {
	ds, err := Load(sampleArchive(t, entryName), entryName)
	require.NoError(t, err)

	// Sheet 0 ("RepuestosTab") is parts, sheet 1 ("ProductosTab") is products.
	assert.Equal(t, []string{"P1", "P2", "P3"}, codes(ds.Parts, ColPartCode))
	assert.Equal(t, []string{"A1", "B2", "C3"}, codes(ds.Products, ColCode))
	assert.Equal(t, entryName, ds.Source.Entry)
	assert.NotEmpty(t, ds.SnapshotID)
	assert.False(t, ds.LoadedAt.IsZero())
}

func TestLoad_TabNamesAreIgnored(t *testing.T) {
	sheets := sampleSheets()
	// Swap the names, keep the positions.
	sheets[0].name, sheets[1].name = "Productos", "Repuestos"
	archive := buildArchive(t, zipEntry{name: entryName, data: buildWorkbook(t, sheets)})

	ds, err := Load(archive, entryName)
	require.NoError(t, err)
	assert.True(t, ds.Parts.HasColumn(ColPartCode))
	assert.False(t, ds.Products.HasColumn(ColPartCode))
}

func TestLoad_PrefersConfiguredEntry(t *testing.T) {
	other := sampleSheets()
	other[0].rows = other[0].rows[:2] // one part only
	archive := buildArchive(t,
		zipEntry{name: "viejo.xlsx", data: buildWorkbook(t, other)},
		zipEntry{name: entryName, data: buildWorkbook(t, sampleSheets())},
	)

	ds, err := Load(archive, entryName)
	require.NoError(t, err)
	assert.Equal(t, entryName, ds.Source.Entry)
	assert.Equal(t, 3, ds.Parts.Len())
}

func TestLoad_FallsBackToFirstSpreadsheet(t *testing.T) {
	archive := buildArchive(t,
		zipEntry{name: "LEEME.txt", data: []byte("hola")},
		zipEntry{name: "catalogo/Export.XLSX", data: buildWorkbook(t, sampleSheets())},
	)

	ds, err := Load(archive, entryName)
	require.NoError(t, err)
	assert.Equal(t, "catalogo/Export.XLSX", ds.Source.Entry)
	assert.Equal(t, 3, ds.Products.Len())
}

func TestLoad_NoSpreadsheet(t *testing.T) {
	archive := buildArchive(t,
		zipEntry{name: "LEEME.txt", data: []byte("hola")},
		zipEntry{name: "datos.csv", data: []byte("a,b\n")},
	)

	_, err := Load(archive, entryName)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, entryName, nf.Entry)
	assert.Equal(t, []string{"LEEME.txt", "datos.csv"}, nf.Entries)
}

func TestLoad_InvalidArchive(t *testing.T) {
	_, err := Load([]byte("definitely not a zip"), entryName)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Contains(t, err.Error(), "invalid archive")
}

func TestLoad_SingleSheetFails(t *testing.T) {
	sheets := sampleSheets()[:1]
	archive := buildArchive(t, zipEntry{name: entryName, data: buildWorkbook(t, sheets)})

	ds, err := Load(archive, entryName)
	assert.Nil(t, ds)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Contains(t, err.Error(), "at least two sheets")
}

func TestLoad_UndecodableSpreadsheet(t *testing.T) {
	archive := buildArchive(t, zipEntry{name: entryName, data: []byte("not a workbook")})

	_, err := Load(archive, entryName)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
}

func TestLoad_EmptySheetFails(t *testing.T) {
	sheets := sampleSheets()
	sheets[1].rows = nil
	archive := buildArchive(t, zipEntry{name: entryName, data: buildWorkbook(t, sheets)})

	_, err := Load(archive, entryName)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, "ProductosTab", pe.Sheet)
}

func TestLoad_SkipsBlankRowsAndTrimsHeader(t *testing.T) {
	sheets := sampleSheets()
	sheets[1].rows = [][]string{
		{" Código ", "Proveedor", "", "Descripción", ""},
		{"A1", "ACME", "x", "Taladro"},
		{"", "", "", ""},
		{"B2", "Bosch", "", "Amoladora", "", "extra"},
	}
	archive := buildArchive(t, zipEntry{name: entryName, data: buildWorkbook(t, sheets)})

	ds, err := Load(archive, entryName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Código", "Proveedor", "Columna 3", "Descripción"}, ds.Products.Columns)
	assert.Equal(t, []string{"A1", "B2"}, codes(ds.Products, ColCode))
	assert.Equal(t, "Amoladora", ds.Products.Rows[1].Value(ColDescription))
}

func TestLoad_SnapshotsAreDistinct(t *testing.T) {
	archive := sampleArchive(t, entryName)

	a, err := Load(archive, entryName)
	require.NoError(t, err)
	b, err := Load(archive, entryName)
	require.NoError(t, err)
	assert.NotEqual(t, a.SnapshotID, b.SnapshotID)
}
