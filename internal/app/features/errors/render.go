// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
)

func render(w http.ResponseWriter, r *http.Request, status int, name, title, msg, backURL, backDefault string) {
	vm := viewdata.NewBaseVM(r, title, backDefault)
	if backURL != "" {
		vm.BackURL = backURL
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, name, pageData{BaseVM: vm, Message: msg})
}

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	render(w, r, http.StatusUnauthorized, "error_forbidden", "로그인 필요", "로그인 후 이용해 주세요.", backURL, "/login")
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusForbidden, "error_forbidden", "접근 권한 없음", msg, backURL, "/")
}

// RenderNotFound shows the not-found page with a message.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusNotFound, "error_notfound", "찾을 수 없음", msg, backURL, "/")
}

// RenderBadRequest shows a 400 page. It shares the server error layout.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusBadRequest, "error_server", "잘못된 요청", msg, backURL, "/")
}

// RenderServerError shows a generic failure page. msg is user-facing; log
// the underlying error separately (see ErrorLogger).
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusInternalServerError, "error_server", "오류", msg, backURL, "/")
}

// RenderBackendError shows a 502 page for a failed backend call.
func RenderBackendError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusBadGateway, "error_server", "서버 연결 오류", msg, backURL, "/")
}
