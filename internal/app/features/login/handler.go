// internal/app/features/login/handler.go
package login

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// Error codes carried in /login?error=...
const (
	ErrInvalidDomain       = "InvalidDomain"
	ErrAccountNotLinked    = "OAuthAccountNotLinked"
	ErrInvalidState        = "invalid_state"
	ErrGoogleDenied        = "google_denied"
	ErrGoogleNotConfigured = "google_not_configured"
	ErrTokenExchange       = "token_exchange"
	ErrUserInfo            = "user_info"
	ErrSession             = "session"
	ErrInternal            = "internal"
	ErrRateLimited         = "rate_limited"
)

type Handler struct {
	Log           *zap.Logger
	AllowedDomain string
	GoogleEnabled bool
}

func NewHandler(allowedDomain string, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		AllowedDomain: allowedDomain,
		GoogleEnabled: googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	ReturnURL     string
	AllowedDomain string
	GoogleEnabled bool
}

// ErrorMessage maps an error code to the text shown above the sign-in
// button. Unknown codes show nothing.
func ErrorMessage(code, allowedDomain string) string {
	switch code {
	case "":
		return ""
	case ErrInvalidDomain:
		return allowedDomain + " 이메일로만 로그인할 수 있습니다."
	case ErrAccountNotLinked:
		return "이미 다른 방법으로 가입된 계정입니다."
	case ErrInvalidState:
		return "로그인 요청이 만료되었습니다. 다시 시도해 주세요."
	case ErrGoogleDenied:
		return "Google 로그인이 취소되었습니다."
	case ErrGoogleNotConfigured:
		return "Google 로그인이 설정되지 않았습니다. 관리자에게 문의하세요."
	case ErrTokenExchange, ErrUserInfo:
		return "Google 계정 정보를 가져오지 못했습니다. 다시 시도해 주세요."
	case ErrRateLimited:
		return "로그인 시도가 너무 많습니다. 잠시 후 다시 시도해 주세요."
	case ErrSession, ErrInternal:
		return "로그인 처리 중 문제가 발생했습니다. 잠시 후 다시 시도해 주세요."
	default:
		return ""
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogin shows the Google sign-in page. Signed-in users go home.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	code := query.Get(r, "error")
	if code != "" {
		h.Log.Debug("login page with error", zap.String("error", code))
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "로그인", "/"),
		Error:         ErrorMessage(code, h.AllowedDomain),
		ReturnURL:     query.Get(r, "return"),
		AllowedDomain: h.AllowedDomain,
		GoogleEnabled: h.GoogleEnabled,
	})
}
