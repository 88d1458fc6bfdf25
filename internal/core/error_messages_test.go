package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "bad status maps to FETCH001",
			err:         &FetchError{URL: "https://example.test/a.zip", StatusCode: 404},
			wantCode:    "FETCH001",
			wantMessage: "The catalog source answered with an error",
		},
		{
			name:        "oversized archive maps to FETCH002",
			err:         &FetchError{URL: "u", Err: errors.New("archive exceeds 10 bytes")},
			wantCode:    "FETCH002",
			wantMessage: "The catalog archive exceeds the size limit",
		},
		{
			name:        "transport failure maps to FETCH003",
			err:         &FetchError{URL: "u", Err: errors.New("dial tcp: connection refused")},
			wantCode:    "FETCH003",
			wantMessage: "The catalog source could not be reached",
		},
		{
			name:        "cancelled download maps to REQ001",
			err:         &FetchError{URL: "u", Err: context.Canceled},
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "slow download maps to REQ002",
			err:         &FetchError{URL: "u", Err: context.DeadlineExceeded},
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "missing workbook maps to ARC001",
			err:         &NotFoundError{Entry: "x.xlsx", Entries: []string{"a.txt"}},
			wantCode:    "ARC001",
			wantMessage: "The archive contains no spreadsheet",
		},
		{
			name:        "bad zip maps to ARC002",
			err:         &ParseError{Err: errors.New("invalid archive: zip: not a valid zip file")},
			wantCode:    "ARC002",
			wantMessage: "The download is not a valid ZIP file",
		},
		{
			name:        "single sheet maps to XLS001",
			err:         &ParseError{Err: errors.New("spreadsheet needs at least two sheets, found 1")},
			wantCode:    "XLS001",
			wantMessage: "The workbook needs a parts sheet and a products sheet",
		},
		{
			name:        "unreadable sheet maps to XLS002",
			err:         &ParseError{Sheet: "Hoja1", Err: errors.New("missing header row")},
			wantCode:    "XLS002",
			wantMessage: "A sheet of the workbook could not be read",
		},
		{
			name:        "unknown product maps to CAT001",
			err:         fmt.Errorf("%w: A1", ErrProductNotFound),
			wantCode:    "CAT001",
			wantMessage: "Product not found",
		},
		{
			name:        "unknown part maps to CAT002",
			err:         fmt.Errorf("%w: P9", ErrPartNotFound),
			wantCode:    "CAT002",
			wantMessage: "Part not found",
		},
		{
			name:        "busy export slots map to EXP001",
			err:         ErrTooManyExports,
			wantCode:    "EXP001",
			wantMessage: "Too many downloads are being generated",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown page maps to REQ003",
			err:         fmt.Errorf("navigate %q: %w", "ajustes", errors.New("unknown page")),
			wantCode:    "REQ003",
			wantMessage: "That page does not exist",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("PRODUCT NOT FOUND"),
			wantCode:    "CAT001",
			wantMessage: "Product not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := fmt.Errorf("%w: A1", ErrProductNotFound)
	result := FormatUserError(err)

	expected := "Product not found (Code: CAT001). Refresh the data or pick another product"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  &NotFoundError{},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLoadError(t *testing.T) {
	if !IsLoadError(fmt.Errorf("wrapped: %w", &FetchError{URL: "u", StatusCode: 500})) {
		t.Error("wrapped FetchError should be a load error")
	}
	if !IsLoadError(&NotFoundError{}) || !IsLoadError(&ParseError{Err: errors.New("x")}) {
		t.Error("NotFoundError and ParseError should be load errors")
	}
	if IsLoadError(ErrProductNotFound) {
		t.Error("ErrProductNotFound is not a load error")
	}
}
