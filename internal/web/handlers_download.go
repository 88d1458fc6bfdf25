package web

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/catalogo/internal/core"
	"github.com/JonMunkholm/catalogo/internal/logging"
)

// handleDownloadParts streams the parts workbook of a product.
func (s *Server) handleDownloadParts(w http.ResponseWriter, r *http.Request) {
	code := urlParam(r, "code")

	dl, err := s.service.ExportParts(r.Context(), code)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	serveDownload(w, r, dl)
}

// handleDownloadPart streams the PDF sheet of one part.
func (s *Server) handleDownloadPart(w http.ResponseWriter, r *http.Request) {
	code := urlParam(r, "code")
	partCode := urlParam(r, "partCode")

	dl, err := s.service.ExportPartDetail(r.Context(), code, partCode)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	serveDownload(w, r, dl)
}

func serveDownload(w http.ResponseWriter, r *http.Request, dl *core.Download) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName})
	if disposition == "" {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.Header().Set("Cache-Control", "no-store")

	if _, err := w.Write(dl.Data); err != nil {
		logging.FromContext(r.Context()).Warn("download write failed", "file", dl.FileName, "error", err)
	}
}
