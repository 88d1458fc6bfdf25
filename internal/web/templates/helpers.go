package templates

import (
	"net/url"
	"strings"

	"github.com/JonMunkholm/catalogo/internal/core"
	"github.com/JonMunkholm/catalogo/internal/session"
)

// searchSpec describes one search box on the consulta page.
type searchSpec struct {
	TextKey   string
	ColumnKey string
	Label     string
	Text      string
	Column    string
	Columns   []string
	Keep      []string // query keys carried over as hidden inputs
}

func productSearch(b *BrowseData) searchSpec {
	return searchSpec{
		TextKey:   "q",
		ColumnKey: "by",
		Label:     "Buscar producto",
		Text:      b.ProductText,
		Column:    b.ProductColumn,
		Columns:   b.ProductColumns,
		Keep:      []string{"sel", "pq", "pby"},
	}
}

func partSearch(b *BrowseData) searchSpec {
	return searchSpec{
		TextKey:   "pq",
		ColumnKey: "pby",
		Label:     "Buscar repuesto",
		Text:      b.PartText,
		Column:    b.PartColumn,
		Columns:   b.PartColumns,
		Keep:      []string{"q", "by", "sel"},
	}
}

var auditColumns = []string{"Fecha", "Acción", "Producto", "Repuesto", "Archivo", "Bytes", "IP"}

// providerOptions puts "Todos" ahead of the known providers.
func providerOptions(providers []string) []string {
	return append([]string{session.AllProviders}, providers...)
}

func selectedCode(p *core.Product) string {
	if p == nil {
		return ""
	}
	return p.Code()
}

// linkOf takes the result of a Product link accessor and returns the
// normalized URL, or "" when absent or not http(s).
func linkOf(link string, ok bool) string {
	if !ok {
		return ""
	}
	return externalURL(link)
}

// externalURL returns link normalized for an href or src, or "" when it is
// not an absolute http(s) URL.
func externalURL(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// withQuery returns "/" plus base with the given overrides applied.
// Empty override values remove the key.
func withQuery(base url.Values, overrides ...string) string {
	q := url.Values{}
	for k, v := range base {
		q[k] = append([]string(nil), v...)
	}
	for i := 0; i+1 < len(overrides); i += 2 {
		if overrides[i+1] == "" {
			q.Del(overrides[i])
		} else {
			q.Set(overrides[i], overrides[i+1])
		}
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

func navigateURL(page session.Page) string {
	return "/navigate/" + url.PathEscape(string(page))
}

// partsDownloadURL is the xlsx route of a product.
func partsDownloadURL(code string) string {
	return "/download/parts/" + url.PathEscape(code)
}

// partDetailURL is the PDF route of a part.
func partDetailURL(productCode, partCode string) string {
	return "/download/part/" + url.PathEscape(productCode) + "/" + url.PathEscape(partCode)
}
