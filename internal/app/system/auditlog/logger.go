// internal/app/system/auditlog/logger.go
package auditlog

// User ids here are backend user ids (the value sent as x-user-id), not
// Mongo ObjectIDs: this app keeps no user records of its own.

import (
	"context"
	"net/http"
	"strings"

	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	All = "all" // Mongo + zap
	DB  = "db"  // Mongo only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-in and sign-out events.
	Auth string
	// Admin controls chapter administration and leader actions.
	Admin string
}

// Recorder persists audit events. *audit.Store satisfies it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via a Recorder) and structured logs (via zap).
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. A nil store downgrades "all" and "db" to
// zap-only.
func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// NewNopLogger returns a logger that records nothing.
func NewNopLogger() *Logger {
	return New(nil, zap.NewNop(), Config{Auth: Off, Admin: Off})
}

// ClientIP extracts the client IP from the request.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.ChapterID != "" {
		fields = append(fields, zap.String("chapter_id", event.ChapterID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = All
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log || l.store == nil {
		l.logToZap(event)
	}

	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful Google sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.UserID = userID
	e.Email = email
	e.Details = map[string]string{"auth_method": "google"}
	l.Log(ctx, e)
}

// LoginFailedDomain logs a sign-in refused because the email is outside the
// allowed domain.
func (l *Logger) LoginFailedDomain(ctx context.Context, r *http.Request, email, allowedDomain string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedDomain)
	e.Success = false
	e.Email = email
	e.FailureReason = "email domain not allowed"
	e.Details = map[string]string{"allowed_domain": allowedDomain}
	l.Log(ctx, e)
}

// LoginFailedOAuth logs a failed token exchange or profile fetch.
func (l *Logger) LoginFailedOAuth(ctx context.Context, r *http.Request, reason string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedOAuth)
	e.Success = false
	e.FailureReason = reason
	l.Log(ctx, e)
}

// LoginFailedState logs a callback whose state token was missing, expired
// or already used.
func (l *Logger) LoginFailedState(ctx context.Context, r *http.Request) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedState)
	e.Success = false
	e.FailureReason = "invalid oauth state"
	l.Log(ctx, e)
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLogout)
	e.UserID = userID
	l.Log(ctx, e)
}

// --- Admin Events ---

// ChapterCreated logs a new chapter.
func (l *Logger) ChapterCreated(ctx context.Context, r *http.Request, actorID string, ch models.Chapter) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventChapterCreated)
	e.ActorID = actorID
	e.ChapterID = ch.ID
	e.Details = map[string]string{"chapter_name": ch.Name}
	l.Log(ctx, e)
}

// ChapterUpdated logs a chapter edit.
func (l *Logger) ChapterUpdated(ctx context.Context, r *http.Request, actorID string, ch models.Chapter) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventChapterUpdated)
	e.ActorID = actorID
	e.ChapterID = ch.ID
	e.Details = map[string]string{"chapter_name": ch.Name}
	l.Log(ctx, e)
}

// ChapterDeleted logs a chapter removal.
func (l *Logger) ChapterDeleted(ctx context.Context, r *http.Request, actorID, chapterID string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventChapterDeleted)
	e.ActorID = actorID
	e.ChapterID = chapterID
	l.Log(ctx, e)
}

// ApplicationCreated logs a new study/club application.
func (l *Logger) ApplicationCreated(ctx context.Context, r *http.Request, actorID, chapterID string, cg models.ChapterGroup) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventApplicationCreated)
	e.ActorID = actorID
	e.ChapterID = chapterID
	e.Details = map[string]string{
		"chapter_group_id": cg.ID,
		"group_name":       cg.Name(),
		"type":             string(cg.EffectiveType()),
	}
	l.Log(ctx, e)
}

// MemberSelected logs a leader selecting (role regular) or unselecting
// (role observer) an applicant.
func (l *Logger) MemberSelected(ctx context.Context, r *http.Request, actorID, chapterID, groupID string, m models.Membership) {
	eventType := audit.EventMemberSelected
	if m.Role != models.RoleRegular {
		eventType = audit.EventMemberUnselected
	}
	e := requestEvent(r, audit.CategoryAdmin, eventType)
	e.ActorID = actorID
	e.UserID = m.User.ID
	e.ChapterID = chapterID
	e.Details = map[string]string{
		"chapter_group_id": groupID,
		"membership_id":    m.ID,
		"role":             string(m.Role),
	}
	l.Log(ctx, e)
}

// RegistrationFinalized logs a leader's final registration.
func (l *Logger) RegistrationFinalized(ctx context.Context, r *http.Request, actorID, chapterID, groupID string, in models.RegistrationInput) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventRegistrationFinalized)
	e.ActorID = actorID
	e.ChapterID = chapterID
	e.Details = map[string]string{
		"chapter_group_id":            groupID,
		"allow_new_hires":             boolToString(in.AllowNewHires),
		"leader_orientation_attended": boolToString(in.LeaderOrientationAttended),
	}
	if in.SubLeaderID != "" {
		e.Details["sub_leader_id"] = in.SubLeaderID
	}
	l.Log(ctx, e)
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
