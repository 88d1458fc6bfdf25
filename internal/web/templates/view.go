// Package templates renders the catalog pages as templ components.
//
// Every page is a pure function of a View: the session state plus the data
// the handler already loaded. Components never fetch anything themselves.
//
// The *_templ.go files are generated from the .templ sources.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"net/url"

	"github.com/JonMunkholm/catalogo/internal/core"
	"github.com/JonMunkholm/catalogo/internal/session"
)

// Header text shown on every page.
type Header struct {
	OrgName  string
	Subtitle string
}

// View is everything a page render needs.
type View struct {
	Header   Header
	State    session.State
	Return   string             // path and query to come back to after a POST
	Snapshot *core.SnapshotInfo // nil until the catalog has been loaded
	Error    *core.UserMessage
	Browse   *BrowseData
	Admin    *AdminData
}

// BrowseData feeds the consulta page.
type BrowseData struct {
	// Query holds the current search parameters; links are built from it
	// so a click keeps the rest of the screen as it was.
	Query url.Values

	Providers []string

	ProductText    string
	ProductColumn  string
	ProductColumns []string
	Products       core.Table
	Selected       *core.Product

	PartText    string
	PartColumn  string
	PartColumns []string
	Parts       core.Table
	Part        *core.Part
}

// AdminData feeds the admin page.
type AdminData struct {
	Audit      []core.AuditEntry
	AuditError *core.UserMessage
}

// withError returns v with msg as its page error.
func withError(v View, msg core.UserMessage) View {
	v.Error = &msg
	return v
}
