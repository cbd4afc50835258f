// internal/app/features/authgoogle/handler.go
package authgoogle

// Terminology: User Identifiers
//   - UserID / userID: Google's stable subject id. It is the value the
//     backend receives as x-user-id; this app keeps no user table.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"github.com/metacode22/study-somoim/internal/app/features/login"
	"github.com/metacode22/study-somoim/internal/app/system/auditlog"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/inputval"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateTTL    = 10 * time.Minute
	userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// StateStore persists single-use OAuth state tokens. *oauthstate.Store
// satisfies it.
type StateStore interface {
	Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error
	Validate(ctx context.Context, state string) (returnURL string, valid bool, err error)
}

// GoogleUser represents user info returned from Google.
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Handler handles Google OAuth authentication.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	StateStore StateStore

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://somoim.teamsparta.co/auth/google/callback"

	AllowedDomain string
	adminEmails   map[string]bool

	// FetchUser exchanges the authorization code and loads the profile.
	// Defaults to the Google token and userinfo endpoints.
	FetchUser func(ctx context.Context, code string) (*GoogleUser, error)
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	stateStore StateStore,
	clientID, clientSecret, baseURL string,
	allowedDomain string,
	adminEmails []string,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		Log:           logger,
		SessionMgr:    sessionMgr,
		AuditLog:      audit,
		StateStore:    stateStore,
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		RedirectURL:   strings.TrimRight(baseURL, "/") + "/auth/google/callback",
		AllowedDomain: allowedDomain,
		adminEmails:   make(map[string]bool, len(adminEmails)),
	}
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			h.adminEmails[e] = true
		}
	}
	h.FetchUser = h.exchangeAndFetch
	return h
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// RoleFor returns the session role for an email.
func (h *Handler) RoleFor(email string) string {
	if h.adminEmails[strings.ToLower(strings.TrimSpace(email))] {
		return auth.RoleAdmin
	}
	return auth.RoleMember
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		redirectToLogin(w, r, login.ErrGoogleNotConfigured)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		redirectToLogin(w, r, login.ErrInternal)
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, state, returnURL, time.Now().UTC().Add(stateTTL)); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		redirectToLogin(w, r, login.ErrInternal)
		return
	}

	// hd only narrows Google's account chooser; the callback enforces the domain.
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if h.AllowedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", h.AllowedDomain))
	}
	url := h.oauth2Config().AuthCodeURL(state, opts...)

	h.Log.Debug("initiating Google OAuth flow", zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Validates state, exchanges the code, checks the email domain and creates     |
| the session.                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		h.AuditLog.LoginFailedOAuth(ctx, r, "google: "+errParam)
		redirectToLogin(w, r, login.ErrGoogleDenied)
		return
	}

	state := query.Get(r, "state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.AuditLog.LoginFailedState(ctx, r)
		redirectToLogin(w, r, login.ErrInvalidState)
		return
	}

	stateCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(stateCtx, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		redirectToLogin(w, r, login.ErrInternal)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.AuditLog.LoginFailedState(ctx, r)
		redirectToLogin(w, r, login.ErrInvalidState)
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.AuditLog.LoginFailedOAuth(ctx, r, "missing code")
		redirectToLogin(w, r, login.ErrTokenExchange)
		return
	}

	fetchCtx, cancelFetch := context.WithTimeout(ctx, timeouts.Medium())
	defer cancelFetch()

	gu, err := h.FetchUser(fetchCtx, code)
	if err != nil {
		h.Log.Error("failed to fetch Google user", zap.Error(err))
		h.AuditLog.LoginFailedOAuth(ctx, r, err.Error())
		if errors.Is(err, errExchange) {
			redirectToLogin(w, r, login.ErrTokenExchange)
			return
		}
		redirectToLogin(w, r, login.ErrUserInfo)
		return
	}

	if gu.ID == "" || gu.Email == "" {
		h.Log.Warn("Google profile missing id or email", zap.String("google_id", gu.ID))
		h.AuditLog.LoginFailedOAuth(ctx, r, "profile missing id or email")
		redirectToLogin(w, r, login.ErrUserInfo)
		return
	}

	if !inputval.EmailInDomain(gu.Email, h.AllowedDomain) {
		h.Log.Info("Google OAuth: email outside allowed domain",
			zap.String("email", gu.Email),
			zap.String("allowed_domain", h.AllowedDomain))
		h.AuditLog.LoginFailedDomain(ctx, r, gu.Email, h.AllowedDomain)
		redirectToLogin(w, r, login.ErrInvalidDomain)
		return
	}

	h.createSessionAndRedirect(w, r, gu, returnURL)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Google API                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

var errExchange = errors.New("oauth code exchange failed")

func (h *Handler) exchangeAndFetch(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errExchange, err)
	}
	return fetchGoogleUserInfo(ctx, token)
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session creation                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) createSessionAndRedirect(w http.ResponseWriter, r *http.Request, gu *GoogleUser, returnURL string) {
	if _, err := h.SessionMgr.GetSession(r); err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			h.Log.Warn("session cookie invalid, using fresh session",
				zap.Error(err), zap.String("user_id", gu.ID))
		} else {
			h.Log.Error("session store error during login, using fresh session",
				zap.Error(err), zap.String("user_id", gu.ID))
		}
	}

	name := strings.TrimSpace(gu.Name)
	if name == "" {
		name, _, _ = strings.Cut(gu.Email, "@")
	}
	u := auth.SessionUser{
		ID:    gu.ID,
		Name:  name,
		Email: strings.ToLower(gu.Email),
		Role:  h.RoleFor(gu.Email),
	}
	if err := h.SessionMgr.SignIn(w, r, u); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID))
		redirectToLogin(w, r, login.ErrSession)
		return
	}

	h.AuditLog.LoginSuccess(r.Context(), r, u.ID, u.Email)

	h.Log.Info("user logged in via Google OAuth",
		zap.String("user_id", u.ID),
		zap.String("email", u.Email),
		zap.String("role", u.Role))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/"), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func redirectToLogin(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+code, http.StatusSeeOther)
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
