package templates

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/catalogo/internal/core"
	"github.com/JonMunkholm/catalogo/internal/session"
)

func render(t *testing.T, v View) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Page(v).Render(context.Background(), &buf))
	return buf.String()
}

func TestPage_SelectsScreenByState(t *testing.T) {
	header := Header{OrgName: "Taller de Servicio", Subtitle: "Silva Internacional S.A"}

	home := render(t, View{Header: header, State: session.State{Page: session.PageHome}})
	assert.Contains(t, home, "¿Qué deseas hacer?")
	assert.Contains(t, home, `action="/navigate/consulta"`)
	assert.Contains(t, home, "Actualizar datos")

	admin := render(t, View{Header: header, State: session.State{Page: session.PageAdmin}})
	assert.Contains(t, admin, "todavía no se ha descargado")

	browse := render(t, View{Header: header, State: session.State{Page: session.PageBrowse}})
	assert.Contains(t, browse, "Sección de consulta")
}

func TestPage_ErrorAlertReplacesData(t *testing.T) {
	msg := core.UserMessage{Message: "The catalog source could not be reached", Action: "retry", Code: "FETCH003"}
	out := render(t, View{State: session.State{Page: session.PageBrowse}, Error: &msg})

	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "FETCH003")
	assert.NotContains(t, out, "Catálogo de productos")
}

func TestBrowse_RendersSelectionAndEscapes(t *testing.T) {
	products := core.NewTable(
		[]string{core.ColCode, core.ColProvider, core.ColDescription, core.ColTechSheet, core.ColDiagram},
		[][]string{
			{"A1", "ACME", "<b>Taladro</b>", "https://example.com/ficha a1.pdf", "javascript:alert(1)"},
			{"B2", "Bosch", "Sierra", "", ""},
		},
	)
	parts := core.NewTable(
		[]string{core.ColCode, core.ColPartCode, core.ColPartDescription},
		[][]string{{"A1", "P1", "Motor"}},
	)
	sel := core.Product{Row: products.Rows[0]}

	b := &BrowseData{
		Query:          url.Values{"sel": {"A1"}},
		Providers:      []string{"ACME", "Bosch"},
		ProductColumns: core.ProductSearchColumns,
		ProductColumn:  core.ColProvider,
		Products:       products,
		Selected:       &sel,
		PartColumns:    core.PartSearchColumns,
		PartColumn:     core.ColPartDescription,
		Parts:          parts,
	}
	out := render(t, View{State: session.State{Page: session.PageBrowse}, Browse: b})

	assert.Contains(t, out, "&lt;b&gt;Taladro&lt;/b&gt;")
	assert.NotContains(t, out, "<b>Taladro</b>")
	assert.Contains(t, out, `href="https://example.com/ficha%20a1.pdf"`)
	assert.NotContains(t, out, `href="javascript:`)
	assert.Contains(t, out, `href="/download/parts/A1"`)
	assert.Contains(t, out, `href="/download/part/A1/P1"`)
	assert.Contains(t, out, `value="Todos"`)
	assert.Contains(t, out, `<tr class="selected">`)
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	msg := core.UserMessage{Message: "Product not found", Code: "CAT001"}
	require.NoError(t, ErrorPage(View{Header: Header{OrgName: "Taller"}}, msg).Render(context.Background(), &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "<title>Error | Taller</title>")
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "CAT001")
	assert.True(t, strings.HasSuffix(out, "</main></body></html>"))
}

func TestBrowse_EscapesCodesInLinks(t *testing.T) {
	products := core.NewTable([]string{core.ColCode, core.ColDescription}, [][]string{{"A/1", "Compresor"}})
	parts := core.NewTable(
		[]string{core.ColCode, core.ColPartCode, core.ColPartDescription},
		[][]string{{"A/1", "P 1", "Junta"}},
	)
	sel := core.Product{Row: products.Rows[0]}
	b := &BrowseData{Query: url.Values{"sel": {"A/1"}}, Products: products, Selected: &sel, Parts: parts}

	out := render(t, View{State: session.State{Page: session.PageBrowse}, Browse: b})
	assert.Contains(t, out, `href="/download/parts/A%2F1"`)
	assert.Contains(t, out, `href="/download/part/A%2F1/P%201"`)
	assert.Contains(t, out, `href="/?part=P+1&amp;sel=A%2F1"`)
}

func TestAdmin_ListsAudit(t *testing.T) {
	info := &core.SnapshotInfo{SnapshotID: "snap-1", Products: 3, Parts: 7}
	a := &AdminData{Audit: []core.AuditEntry{{Action: core.ActionExportParts, ProductCode: "A1", FileName: "repuestos_A1.xlsx"}}}

	out := render(t, View{State: session.State{Page: session.PageAdmin}, Snapshot: info, Admin: a})
	assert.Contains(t, out, "snap-1")
	assert.Contains(t, out, "repuestos_A1.xlsx")
	assert.Contains(t, out, "export_parts")
}

func TestWithQuery(t *testing.T) {
	base := url.Values{"q": {"tal"}, "sel": {"A1"}}

	assert.Equal(t, "/?part=P1&q=tal&sel=A1", withQuery(base, "part", "P1"))
	assert.Equal(t, "/?q=tal", withQuery(base, "sel", ""))
	assert.Equal(t, "/", withQuery(nil))
	assert.Equal(t, []string{"A1"}, base["sel"], "base is not modified")
}

func TestExternalURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.com/a.pdf", "https://example.com/a.pdf"},
		{" http://example.com/a b.png ", "http://example.com/a%20b.png"},
		{"javascript:alert(1)", ""},
		{"/relative", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, externalURL(tt.in), tt.in)
	}
}
