// Package session keeps the per-browser UI state of the catalog: which page
// is shown and which provider the product table is restricted to.
package session

import (
	"context"
	"errors"
	"strings"
)

// Page is the screen a session is on.
type Page string

const (
	PageHome   Page = "inicio"
	PageBrowse Page = "consulta"
	PageAdmin  Page = "admin"
)

// ParsePage validates a page name.
func ParsePage(s string) (Page, error) {
	switch p := Page(strings.ToLower(strings.TrimSpace(s))); p {
	case PageHome, PageBrowse, PageAdmin:
		return p, nil
	}
	return "", ErrUnknownPage
}

// ErrUnknownPage is returned for page names outside the known set.
var ErrUnknownPage = errors.New("unknown page")

// AllProviders is the provider bar entry that clears the filter.
const AllProviders = "Todos"

// State is the UI state of one session.
type State struct {
	Page     Page   `json:"page"`
	Provider string `json:"provider,omitempty"`
}

// Default returns the state of a new session.
func Default() State {
	return State{Page: PageHome}
}

// WithProvider returns s restricted to provider; AllProviders or "" clears it.
func (s State) WithProvider(provider string) State {
	provider = strings.TrimSpace(provider)
	if provider == AllProviders {
		provider = ""
	}
	s.Provider = provider
	return s
}

// Store persists session state by ID.
type Store interface {
	// Load returns the state for id, or Default() when none is stored.
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, st State) error
}
