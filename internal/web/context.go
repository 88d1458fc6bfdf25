package web

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/catalogo/internal/core"
	"github.com/JonMunkholm/catalogo/internal/logging"
	"github.com/JonMunkholm/catalogo/internal/session"
)

type ctxKey int

const ctxKeySession ctxKey = iota

// clientIP returns the request's IP without the port.
// RemoteAddr has already been rewritten by TrustedRealIP when applicable.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// urlParam returns the decoded value of a route parameter. chi routes on
// URL.RawPath when the request has one (a code containing %2F, for
// example), and then its parameters are still escaped.
func urlParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

// withClient adds IP and User-Agent to the context for audit logging.
func withClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), core.ClientInfo{
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withSession makes sure the browser carries a session cookie and stores
// the session ID in the context.
func (s *Server) withSession(next http.Handler) http.Handler {
	cookieName := s.cfg.Session.CookieName
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(cookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(s.cfg.Session.TTL / time.Second),
				HttpOnly: true,
				Secure:   s.cfg.Session.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), ctxKeySession, id)
		client := core.ClientFromContext(ctx)
		client.SessionID = id
		ctx = core.ContextWithClient(ctx, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeySession).(string)
	return id
}

// loadState returns the session state; store failures fall back to the
// default state.
func (s *Server) loadState(r *http.Request) session.State {
	st, err := s.sessions.Load(r.Context(), sessionID(r.Context()))
	if err != nil {
		logging.FromContext(r.Context()).Warn("session load failed", "error", err)
		return session.Default()
	}
	return st
}

func (s *Server) saveState(r *http.Request, st session.State) {
	if err := s.sessions.Save(r.Context(), sessionID(r.Context()), st); err != nil {
		logging.FromContext(r.Context()).Warn("session save failed", "error", err)
	}
}
