package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/JonMunkholm/catalogo/internal/core"
	"github.com/JonMunkholm/catalogo/internal/logging"
	"github.com/JonMunkholm/catalogo/internal/session"
	"github.com/JonMunkholm/catalogo/internal/web/templates"
)

// auditPageSize is how many exports the admin page lists.
const auditPageSize = 20

// handleIndex renders the page the session is on.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.loadState(r)
	s.renderPage(w, r, st, nil)
}

// renderPage builds the view for st and writes it. A non-nil cause is shown
// as an error alert instead of the page data.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, st session.State, cause error) {
	ctx := r.Context()
	v := templates.View{
		Header: s.header(),
		State:  st,
		Return: returnPath(r),
	}
	status := http.StatusOK

	if cause == nil {
		switch st.Page {
		case session.PageBrowse:
			v.Browse, cause = s.browseData(r, st)
		case session.PageAdmin:
			v.Admin = s.adminData(r)
		}
	}
	if cause != nil {
		msg := core.MapError(cause)
		v.Error = &msg
		v.Browse = nil
		status = statusFor(cause)
		logging.FromContext(ctx).Error("page error",
			"page", st.Page,
			"status", status,
			"error", cause,
			"code", msg.Code,
		)
	}

	// Snapshot is read after the browse load so a first visit shows it.
	if ds, ok := s.service.Current(); ok {
		info := ds.Info()
		v.Snapshot = &info
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Page(v).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render page", "error", err)
	}
}

// browseData runs the searches of the consulta page.
func (s *Server) browseData(r *http.Request, st session.State) (*templates.BrowseData, error) {
	ctx := r.Context()
	q := r.URL.Query()

	b := &templates.BrowseData{
		Query:          q,
		ProductText:    q.Get("q"),
		ProductColumn:  pickColumn(q.Get("by"), core.ProductSearchColumns),
		ProductColumns: core.ProductSearchColumns,
		PartText:       q.Get("pq"),
		PartColumn:     pickColumn(q.Get("pby"), core.PartSearchColumns),
		PartColumns:    core.PartSearchColumns,
	}

	var err error
	if b.Providers, err = s.service.Providers(ctx); err != nil {
		return nil, err
	}

	b.Products, err = s.service.SearchProducts(ctx, core.ProductQuery{
		Provider: st.Provider,
		Column:   b.ProductColumn,
		Text:     b.ProductText,
	})
	if err != nil {
		return nil, err
	}

	selected := ""
	if code := strings.TrimSpace(q.Get("sel")); code != "" {
		p, err := s.service.Product(ctx, code)
		switch {
		case err == nil:
			b.Selected = &p
			selected = code
		case !errors.Is(err, core.ErrProductNotFound):
			return nil, err
		}
	}

	b.Parts, err = s.service.SearchParts(ctx, core.PartQuery{
		ProductCode: selected,
		Column:      b.PartColumn,
		Text:        b.PartText,
	})
	if err != nil {
		return nil, err
	}

	if partCode := strings.TrimSpace(q.Get("part")); partCode != "" {
		p, err := s.service.Part(ctx, selected, partCode)
		switch {
		case err == nil:
			b.Part = &p
		case !errors.Is(err, core.ErrPartNotFound):
			return nil, err
		}
	}
	return b, nil
}

// adminData lists recent exports. Audit store failures are shown on the
// page rather than failing it.
func (s *Server) adminData(r *http.Request) *templates.AdminData {
	entries, err := s.service.RecentAudit(r.Context(), auditPageSize)
	if err != nil {
		msg := core.MapError(err)
		logging.FromContext(r.Context()).Warn("audit list failed", "error", err)
		return &templates.AdminData{AuditError: &msg}
	}
	return &templates.AdminData{Audit: entries}
}

// handleNavigate switches the session to another page.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	page, err := session.ParsePage(urlParam(r, "page"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("navigate %q: %w", urlParam(r, "page"), err), http.StatusNotFound)
		return
	}

	st := s.loadState(r)
	st.Page = page
	s.saveState(r, st)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleProvider sets or clears the provider filter of the product table.
func (s *Server) handleProvider(w http.ResponseWriter, r *http.Request) {
	st := s.loadState(r).WithProvider(r.FormValue("provider"))
	st.Page = session.PageBrowse
	s.saveState(r, st)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRefresh drops the cached catalog, loads it again and sends the
// browser back where it came from.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.Refresh(r.Context()); err != nil {
		s.renderPage(w, r, s.loadState(r), err)
		return
	}
	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

// pickColumn returns col when it is one of allowed, else the first allowed column.
func pickColumn(col string, allowed []string) string {
	if slices.Contains(allowed, col) {
		return col
	}
	if len(allowed) == 0 {
		return ""
	}
	return allowed[0]
}

// returnPath is the page URL to come back to after a POST from it.
func returnPath(r *http.Request) string {
	if r.Method != http.MethodGet {
		return "/"
	}
	return safeReturn(r.URL.RequestURI())
}

// safeReturn accepts only local paths on the index page.
func safeReturn(p string) string {
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path != "/" {
		return "/"
	}
	if u.RawQuery == "" {
		return "/"
	}
	return "/?" + u.RawQuery
}
