package core

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/go-pdf/fpdf"
)

// Detail sheet geometry, in points. A4 portrait.
const (
	pageWidth    = 595.0
	pageHeight   = 842.0
	marginLeft   = 40.0
	marginTop    = 50.0
	marginBottom = 50.0
	lineStep     = 16.0
	fieldsStartY = 140.0
	labelWidth   = 30 // characters
	maxLineChars = 85 // Courier 10pt across the printable width
	logoSize     = 60.0
)

// placedField is a field assigned to a page and baseline.
type placedField struct {
	Page int
	Y    float64
	Field
}

// layoutDetail assigns every field to a page, top to bottom. The cursor
// advances lineStep per field; once it passes the bottom margin a new page
// starts at marginTop and the iteration continues.
func layoutDetail(fields []Field, startY float64) []placedField {
	limit := pageHeight - marginBottom
	page, y := 1, startY

	out := make([]placedField, 0, len(fields))
	for _, f := range fields {
		if y > limit {
			page++
			y = marginTop
		}
		out = append(out, placedField{Page: page, Y: y, Field: f})
		y += lineStep
	}
	return out
}

// formatFieldLine renders "label : value" in fixed-width columns.
func formatFieldLine(f Field) string {
	line := fmt.Sprintf("%-*s: %s", labelWidth, f.Label, f.Value)
	r := []rune(line)
	if len(r) > maxLineChars {
		return string(r[:maxLineChars-3]) + "..."
	}
	return line
}

// ExportPartDetail renders a part as a field/value PDF sheet.
func (e *Exporter) ExportPartDetail(part Part) (*Download, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	e.drawHeader(pdf, tr)

	pdf.SetFont("Courier", "", 10)
	current := 1
	for _, pf := range layoutDetail(part.Fields(), fieldsStartY) {
		for current < pf.Page {
			pdf.AddPage()
			pdf.SetFont("Courier", "", 10)
			current++
		}
		pdf.Text(marginLeft, pf.Y, tr(formatFieldLine(pf.Field)))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export part detail: %w", err)
	}

	return &Download{
		FileName:    fmt.Sprintf("detalle_repuesto_%s.pdf", part.PartCode()),
		ContentType: MIMEPDF,
		Data:        buf.Bytes(),
	}, nil
}

// drawHeader places the logo and the two header lines on the first page.
func (e *Exporter) drawHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	textX := marginLeft
	if len(e.Logo) > 0 {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(e.Logo))
		if pdf.Err() {
			slog.Warn("pdf logo unreadable, skipping", "error", pdf.Error())
			pdf.ClearError()
		} else {
			pdf.ImageOptions("logo", marginLeft, marginTop-10, logoSize, logoSize, false, opts, 0, "")
			textX = marginLeft + logoSize + 15
		}
	}

	pdf.SetFont("Courier", "B", 16)
	pdf.Text(textX, marginTop+12, tr(e.OrgName))
	pdf.SetFont("Courier", "", 11)
	pdf.Text(textX, marginTop+32, tr(e.Subtitle))
}
