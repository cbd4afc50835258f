package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userEmail = "user_email"
	userRole  = "user_role"
	flashKey  = "_flash"
)

// Roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we keep in the session cookie and inject into
// r.Context(). ID is the backend user id sent as x-user-id.
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// IsAdmin reports whether the user has the admin role.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, RoleAdmin)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u the way LoadSessionUser does. Tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure + SameSite=None; in local dev over http://localhost use
// secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "somoim-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Store exposes the cookie store (for OAuth handlers that keep their own
// values in the session).
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name returns the session cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the session for r. A cookie that no longer decodes
// (rotated key) yields a fresh session along with the decode error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SignIn stores u in the session.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, _ := sm.GetSession(r)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[userRole] = u.Role
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.GetSession(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	opts := *sm.store.Options
	opts.MaxAge = -1
	sess.Options = &opts
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are logged in.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			sm.log.Debug("session decode failed; treating as signed out", zap.Error(err))
		}
		if sess != nil {
			if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
				u := &SessionUser{
					ID:    getString(sess, userIDKey),
					Name:  getString(sess, userName),
					Email: getString(sess, userEmail),
					Role:  getString(sess, userRole),
				}
				if u.ID != "" {
					r = withUser(r, u)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, r)
	})
}

// RequireRole ensures there is a user with one of the allowed roles.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				unauthorized(w, r)
				return
			}

			if _, has := set[strings.ToLower(u.Role)]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Flash messages                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// Flash is a one-shot notice shown on the next page render.
type Flash struct {
	Kind    string // "success" | "error" | "info"
	Message string
}

var errNoSession = errors.New("auth: session unavailable")

// SetFlash stores a flash for the next request.
func (sm *SessionManager) SetFlash(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	sess, _ := sm.GetSession(r)
	if sess == nil {
		return errNoSession
	}
	sess.Values[flashKey] = kind + "\x00" + msg
	return sess.Save(r, w)
}

// PopFlash returns and clears the pending flash, if any.
func (sm *SessionManager) PopFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	sess, _ := sm.GetSession(r)
	if sess == nil {
		return Flash{}, false
	}
	raw, ok := sess.Values[flashKey].(string)
	if !ok || raw == "" {
		return Flash{}, false
	}
	delete(sess.Values, flashKey)
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("flash: save session", zap.Error(err))
	}
	kind, msg, found := strings.Cut(raw, "\x00")
	if !found {
		return Flash{Kind: "info", Message: raw}, true
	}
	return Flash{Kind: kind, Message: msg}, true
}

// helpers

func unauthorized(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}

const flashCtxKey ctxKey = "flash"

// LoadFlash pops the pending flash on full-page GETs and makes it available
// through FlashFrom for the rest of the request.
func (sm *SessionManager) LoadFlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.Header.Get("HX-Request") != "true" && wantsHTML(r) {
			if f, ok := sm.PopFlash(w, r); ok {
				r = r.WithContext(context.WithValue(r.Context(), flashCtxKey, f))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// FlashFrom returns the flash loaded by LoadFlash.
func FlashFrom(r *http.Request) (Flash, bool) {
	f, ok := r.Context().Value(flashCtxKey).(Flash)
	return f, ok
}
