// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"
	"time"

	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"go.uber.org/zap"
)

// Querier reads stored audit events. *audit.Store satisfies it.
type Querier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
	GetFailedLogins(ctx context.Context, since time.Time, limit int64) ([]audit.Event, error)
}

type Handler struct {
	Events Querier
	Loc    *time.Location
	Now    func() time.Time
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an Audit Log feature handler over the audit store.
func NewHandler(events Querier, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Loc:    loc,
		Now:    time.Now,
		Log:    logger,
		ErrLog: errLog,
	}
}
