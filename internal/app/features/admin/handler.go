// internal/app/features/admin/handler.go
package admin

import (
	"net/http"
	"time"

	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	chaptergroupstore "github.com/metacode22/study-somoim/internal/app/store/chaptergroups"
	chapterstore "github.com/metacode22/study-somoim/internal/app/store/chapters"
	"github.com/metacode22/study-somoim/internal/app/system/auditlog"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"go.uber.org/zap"
)

type Handler struct {
	Chapters *chapterstore.Store
	Groups   *chaptergroupstore.Store
	Sessions *auth.SessionManager
	AuditLog *auditlog.Logger
	Clock    phase.Clock
	Loc      *time.Location
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(
	chapters *chapterstore.Store,
	groups *chaptergroupstore.Store,
	sessions *auth.SessionManager,
	audit *auditlog.Logger,
	clock phase.Clock,
	loc *time.Location,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Chapters: chapters,
		Groups:   groups,
		Sessions: sessions,
		AuditLog: audit,
		Clock:    clock,
		Loc:      loc,
		ErrLog:   errLog,
		Log:      logger,
	}
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := h.Sessions.SetFlash(w, r, kind, msg); err != nil {
		h.Log.Warn("admin: set flash", zap.Error(err))
	}
}
