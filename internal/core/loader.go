package core

// loader.go turns archive bytes into a Dataset.
//
// The archive must hold a spreadsheet with at least two sheets. Sheets are
// assigned by position, not by name:
//
//	sheet 0 -> parts
//	sheet 1 -> products
//
// Reordering the sheets in the source workbook swaps the two tables.

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	spreadsheetExt = ".xlsx"
	partsSheet     = 0
	productsSheet  = 1
)

// Load extracts the spreadsheet from archive and parses it into a Dataset.
// preferredEntry is used when present; otherwise the first .xlsx entry wins.
// The load is all-or-nothing: any failure returns no dataset.
func Load(archive []byte, preferredEntry string) (*Dataset, error) {
	entry, data, err := extractSpreadsheet(archive, preferredEntry)
	if err != nil {
		return nil, err
	}

	parts, products, err := parseWorkbook(data)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Products:   products,
		Parts:      parts,
		SnapshotID: uuid.NewString(),
		Source:     Source{Entry: entry},
		LoadedAt:   time.Now(),
	}, nil
}

// extractSpreadsheet selects and reads the spreadsheet entry of a ZIP archive.
func extractSpreadsheet(archive []byte, preferred string) (string, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", nil, &ParseError{Err: fmt.Errorf("invalid archive: %w", err)}
	}

	var (
		selected *zip.File
		names    = make([]string, 0, len(zr.File))
	)
	for _, f := range zr.File {
		names = append(names, f.Name)
		if preferred != "" && f.Name == preferred {
			selected = f
		}
	}

	if selected == nil {
		for _, f := range zr.File {
			if !f.FileInfo().IsDir() && strings.HasSuffix(strings.ToLower(f.Name), spreadsheetExt) {
				selected = f
				break
			}
		}
	}

	if selected == nil {
		return "", nil, &NotFoundError{Entry: preferred, Entries: names}
	}

	rc, err := selected.Open()
	if err != nil {
		return "", nil, &ParseError{Err: fmt.Errorf("open entry %q: %w", selected.Name, err)}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", nil, &ParseError{Err: fmt.Errorf("read entry %q: %w", selected.Name, err)}
	}

	return selected.Name, data, nil
}

// parseWorkbook decodes the parts and products sheets of an xlsx file.
func parseWorkbook(data []byte) (parts, products Table, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, Table{}, &ParseError{Err: fmt.Errorf("open spreadsheet: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) < 2 {
		return Table{}, Table{}, &ParseError{
			Err: fmt.Errorf("spreadsheet needs at least two sheets, found %d", len(sheets)),
		}
	}

	parts, err = readSheet(f, sheets[partsSheet])
	if err != nil {
		return Table{}, Table{}, err
	}
	products, err = readSheet(f, sheets[productsSheet])
	if err != nil {
		return Table{}, Table{}, err
	}
	return parts, products, nil
}

// readSheet converts one sheet into a Table. The first row is the header.
func readSheet(f *excelize.File, sheet string) (Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, &ParseError{Sheet: sheet, Err: err}
	}
	if len(rows) == 0 {
		return Table{}, &ParseError{Sheet: sheet, Err: fmt.Errorf("missing header row")}
	}

	header := normalizeHeader(rows[0])
	if len(header) == 0 {
		return Table{}, &ParseError{Sheet: sheet, Err: fmt.Errorf("empty header row")}
	}

	cells := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > len(header) {
			row = row[:len(header)]
		}
		cells = append(cells, row)
	}

	return NewTable(header, cells), nil
}

// normalizeHeader trims names, drops trailing blanks and names interior blanks.
func normalizeHeader(raw []string) []string {
	end := len(raw)
	for end > 0 && strings.TrimSpace(raw[end-1]) == "" {
		end--
	}

	header := make([]string, end)
	for i := 0; i < end; i++ {
		name := strings.TrimSpace(raw[i])
		if name == "" {
			name = fmt.Sprintf("Columna %d", i+1)
		}
		header[i] = name
	}
	return header
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
