package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/catalogo/internal/core"
)

// TableResponse is a table in JSON form. Rows keep the column order.
type TableResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Count   int        `json:"count"`
}

func toTableResponse(t core.Table) TableResponse {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Values(t.Columns)
	}
	return TableResponse{Columns: t.Columns, Rows: rows, Count: len(rows)}
}

// ProductResponse is one product with its parts.
type ProductResponse struct {
	Product map[string]string `json:"product"`
	Parts   TableResponse     `json:"parts"`
}

// handleHealth reports liveness and whether a catalog snapshot is cached.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, loaded := s.service.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"catalogLoaded": loaded,
		"exports":       s.service.ExportStatus(),
	})
}

// handleAPIProviders lists the distinct providers.
func (s *Server) handleAPIProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := s.service.Providers(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"providers": providers})
}

// handleAPIProducts searches products: ?provider=&by=&q=
func (s *Server) handleAPIProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, err := s.service.SearchProducts(r.Context(), core.ProductQuery{
		Provider: q.Get("provider"),
		Column:   q.Get("by"),
		Text:     q.Get("q"),
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, toTableResponse(t))
}

// handleAPIProduct returns a product and its parts.
func (s *Server) handleAPIProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := urlParam(r, "code")

	p, err := s.service.Product(ctx, code)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	parts, err := s.service.SearchParts(ctx, core.PartQuery{ProductCode: code})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, ProductResponse{Product: p.Map(), Parts: toTableResponse(parts)})
}

// handleAPIParts searches parts: ?code=&by=&q=
func (s *Server) handleAPIParts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, err := s.service.SearchParts(r.Context(), core.PartQuery{
		ProductCode: q.Get("code"),
		Column:      q.Get("by"),
		Text:        q.Get("q"),
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, toTableResponse(t))
}

// handleAPISnapshot describes the catalog snapshot, loading it if needed.
func (s *Server) handleAPISnapshot(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.Dataset(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, ds.Info())
}

// handleAPIRefresh reloads the catalog and returns the new snapshot.
func (s *Server) handleAPIRefresh(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.Refresh(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, ds.Info())
}

// handleAPIExports lists recent audit entries: ?limit= (1-500, default 50).
func (s *Server) handleAPIExports(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 50)
	if limit > 500 {
		limit = 500
	}

	entries, err := s.service.RecentAudit(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
