// internal/app/features/api/handler.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/metacode22/study-somoim/internal/app/backend"
	chaptergroupstore "github.com/metacode22/study-somoim/internal/app/store/chaptergroups"
	chapterstore "github.com/metacode22/study-somoim/internal/app/store/chapters"
	"github.com/metacode22/study-somoim/internal/app/system/eligibility"
	"github.com/metacode22/study-somoim/internal/app/system/jsonresp"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"go.uber.org/zap"
)

const noChapterMsg = "진행 중인 기수가 없습니다."

// Checker runs the application pre-check. *eligibility.Validator satisfies it.
type Checker interface {
	Validate(ctx context.Context, req eligibility.Request) eligibility.Result
}

type Handler struct {
	Chapters    *chapterstore.Store
	Groups      *chaptergroupstore.Store
	Eligibility Checker
	Clock       phase.Clock
	Loc         *time.Location
	Log         *zap.Logger
}

func NewHandler(
	chapters *chapterstore.Store,
	groups *chaptergroupstore.Store,
	checker Checker,
	clock phase.Clock,
	loc *time.Location,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Chapters:    chapters,
		Groups:      groups,
		Eligibility: checker,
		Clock:       clock,
		Loc:         loc,
		Log:         logger,
	}
}

// fail maps a backend error onto an envelope: 404 passes through, anything
// else is reported as an upstream failure.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, backend.ErrNotFound) || backend.StatusOf(err) == http.StatusNotFound {
		jsonresp.NotFound(w, backend.MessageOf(err, "찾을 수 없습니다."))
		return
	}
	h.Log.Error("api: "+op, zap.Error(err), zap.String("path", r.URL.Path))
	jsonresp.Upstream(w, "백엔드 요청에 실패했습니다.")
}
