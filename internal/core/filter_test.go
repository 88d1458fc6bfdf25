package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func productsTable() Table {
	return newTestTable(
		[]string{ColCode, ColProvider, ColDescription, ColProductType},
		[]string{"A1", "ACME", "Tornillo hexagonal", "Fijación"},
		[]string{"B2", "Bosch", "Taladro", "Herramienta"},
		[]string{"C3", "ACME", "TORNILLO de banco", "Accesorio"},
		[]string{"D4", "", "Llave", ""},
		[]string{"E5", "Stanley"}, // short row: description absent
	)
}

func TestFilter_Identity(t *testing.T) {
	tbl := productsTable()
	for _, col := range append(tbl.Columns, "NoSuchColumn") {
		got := Filter(tbl, col, "")
		assert.Equal(t, codes(tbl, ColCode), codes(got, ColCode), "column %q", col)
	}
}

func TestFilter_UnknownColumnIsNoOp(t *testing.T) {
	tbl := productsTable()
	got := Filter(tbl, "NoSuchColumn", "x")
	assert.Equal(t, codes(tbl, ColCode), codes(got, ColCode))
}

func TestFilter_CaseInsensitive(t *testing.T) {
	tbl := productsTable()
	upper := Filter(tbl, ColDescription, "TORNILLO")
	lower := Filter(tbl, ColDescription, "tornillo")

	assert.Equal(t, []string{"A1", "C3"}, codes(upper, ColCode))
	assert.Equal(t, codes(upper, ColCode), codes(lower, ColCode))
}

func TestFilter_UnicodeFolding(t *testing.T) {
	tbl := productsTable()
	got := Filter(tbl, ColProductType, "FIJACIÓN")
	assert.Equal(t, []string{"A1"}, codes(got, ColCode))
}

func TestFilter_LowercaseNotFold(t *testing.T) {
	tbl := newTestTable(
		[]string{ColCode, ColDescription},
		[]string{"A1", "Straße"},
		[]string{"B2", "STRASSE"},
		[]string{"C3", "Émbolo"},
	)
	assert.Equal(t, []string{"B2"}, codes(Filter(tbl, ColDescription, "ss"), ColCode))
	assert.Equal(t, []string{"A1"}, codes(Filter(tbl, ColDescription, "STRAßE"), ColCode))
	assert.Equal(t, []string{"C3"}, codes(Filter(tbl, ColDescription, "émbolo"), ColCode))
}

func TestFilter_QueryWhitespaceIsSignificant(t *testing.T) {
	tbl := newTestTable(
		[]string{ColCode, ColDescription},
		[]string{"A1", "Tornillo M4"},
		[]string{"B2", "Tornillo "},
		[]string{"C3", "Tornillos"},
		[]string{"D4", "   "},
	)
	assert.Equal(t, []string{"A1", "B2"}, codes(Filter(tbl, ColDescription, "tornillo "), ColCode))
	assert.Equal(t, []string{"A1", "B2", "C3"}, codes(Filter(tbl, ColDescription, "tornillo"), ColCode))
	assert.Equal(t, []string{"A1", "B2"}, codes(Filter(tbl, ColDescription, " "), ColCode), "blank cells stay absent")
}

func TestFilter_SubstringNotRegex(t *testing.T) {
	tbl := newTestTable(
		[]string{ColCode, ColDescription},
		[]string{"A1", "Tubo 1/2 (PVC)"},
		[]string{"B2", "Tubo 3/4"},
	)
	assert.Equal(t, []string{"A1"}, codes(Filter(tbl, ColDescription, "(pvc)"), ColCode))
	assert.Empty(t, codes(Filter(tbl, ColDescription, "t.bo"), ColCode))
}

func TestFilter_Idempotent(t *testing.T) {
	tbl := productsTable()
	once := Filter(tbl, ColProvider, "ac")
	twice := Filter(once, ColProvider, "ac")
	assert.Equal(t, codes(once, ColCode), codes(twice, ColCode))
}

func TestFilter_AbsentNeverMatches(t *testing.T) {
	tbl := productsTable()
	// "nan" or "none" must not surface rows whose description is missing.
	assert.Empty(t, codes(Filter(tbl, ColDescription, "nan"), ColCode))
	got := Filter(tbl, ColDescription, "l")
	assert.NotContains(t, codes(got, ColCode), "E5")
}

func TestFilter_DoesNotMutateSource(t *testing.T) {
	tbl := productsTable()
	before := codes(tbl, ColCode)
	_ = Filter(tbl, ColDescription, "taladro")
	assert.Equal(t, before, codes(tbl, ColCode))
}

func TestFilterEquals(t *testing.T) {
	tbl := productsTable()

	assert.Equal(t, []string{"A1", "C3"}, codes(FilterEquals(tbl, ColProvider, "ACME"), ColCode))
	assert.Empty(t, codes(FilterEquals(tbl, ColProvider, "acme"), ColCode), "provider match is exact")
	assert.Len(t, FilterEquals(tbl, ColProvider, "").Rows, 5)
	assert.Len(t, FilterEquals(tbl, "NoSuchColumn", "ACME").Rows, 5)
}

func TestDistinct(t *testing.T) {
	tbl := productsTable()
	assert.Equal(t, []string{"ACME", "Bosch", "Stanley"}, Distinct(tbl, ColProvider))
	assert.Nil(t, Distinct(tbl, "NoSuchColumn"))
}

func TestPartsForProduct_ExactJoin(t *testing.T) {
	parts := newTestTable(
		[]string{ColCode, ColPartCode},
		[]string{"A1", "P1"},
		[]string{"A1", "P2"},
		[]string{"B2", "P3"},
		[]string{"A10", "P4"},
	)

	assert.Equal(t, []string{"P1", "P2"}, codes(PartsForProduct(parts, "A1"), ColPartCode))
	assert.Equal(t, []string{"P3"}, codes(PartsForProduct(parts, "B2"), ColPartCode))
	assert.Empty(t, codes(PartsForProduct(parts, ""), ColPartCode))
}

func TestProject(t *testing.T) {
	tbl := productsTable()

	got := Project(tbl, []string{ColDescription, ColCode})
	assert.Equal(t, []string{ColDescription, ColCode}, got.Columns)
	assert.Equal(t, "Taladro", got.Rows[1].Value(ColDescription))

	// A missing column keeps every column.
	got = Project(tbl, []string{ColCode, "NoSuchColumn"})
	assert.Equal(t, tbl.Columns, got.Columns)
}

func TestRow_OptionalAccess(t *testing.T) {
	tbl := productsTable()
	row := tbl.Rows[4]

	v, ok := row.Get(ColProvider)
	assert.True(t, ok)
	assert.Equal(t, "Stanley", v)

	_, ok = row.Get(ColDescription)
	assert.False(t, ok, "short row cell is absent")

	_, ok = tbl.Rows[3].Get(ColProductType)
	assert.False(t, ok, "blank cell is absent")

	_, ok = row.Get("NoSuchColumn")
	assert.False(t, ok)

	raw := newTestTable([]string{ColCode, ColDescription}, []string{"A1", " Llave "}).Rows[0]
	v, ok = raw.Raw(ColDescription)
	assert.True(t, ok)
	assert.Equal(t, " Llave ", v)
	assert.Equal(t, "Llave", raw.Value(ColDescription))
}

func TestPart_LeadTimeDays(t *testing.T) {
	parts := newTestTable(
		[]string{ColPartCode, ColLeadTimeDays},
		[]string{"P1", "15"},
		[]string{"P2", "7.0"},
		[]string{"P3", "pronto"},
		[]string{"P4"},
	)

	n, ok := Part{parts.Rows[0]}.LeadTimeDays()
	assert.True(t, ok)
	assert.Equal(t, 15, n)

	n, ok = Part{parts.Rows[1]}.LeadTimeDays()
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = Part{parts.Rows[2]}.LeadTimeDays()
	assert.False(t, ok)
	_, ok = Part{parts.Rows[3]}.LeadTimeDays()
	assert.False(t, ok)
}
