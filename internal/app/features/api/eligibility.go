// internal/app/features/api/eligibility.go
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/eligibility"
	"github.com/metacode22/study-somoim/internal/app/system/jsonresp"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

type eligibilityBody struct {
	ParticipationType models.ParticipationType `json:"participationType"`
}

// participationFrom reads the participation type from a JSON body or a form
// field. An empty value defaults to regular.
func participationFrom(r *http.Request) (models.ParticipationType, bool) {
	var pt models.ParticipationType
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body eligibilityBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", false
		}
		pt = body.ParticipationType
	} else {
		pt = models.ParticipationType(strings.TrimSpace(r.FormValue("participationType")))
	}
	if pt == "" {
		pt = models.ParticipationRegular
	}
	return pt, pt.Valid()
}

// HandleEligibility runs the weekday and club-count pre-check for the
// signed-in user against group {id} in the current chapter.
func (h *Handler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		jsonresp.Fail(w, http.StatusUnauthorized, jsonresp.CodeUnauthorized, "로그인이 필요합니다.")
		return
	}
	pt, ok := participationFrom(r)
	if !ok {
		jsonresp.BadRequest(w, "participationType은 regular 또는 observer여야 합니다.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "api eligibility")
	defer cancel()

	ch, err := h.Chapters.Current(ctx)
	if err != nil {
		h.fail(w, r, "load current chapter", err)
		return
	}
	if ch == nil {
		jsonresp.NotFound(w, noChapterMsg)
		return
	}

	res := h.Eligibility.Validate(ctx, eligibility.Request{
		ChapterID:         ch.ID,
		GroupID:           chi.URLParam(r, "id"),
		UserID:            user.ID,
		ParticipationType: pt,
	})
	jsonresp.OK(w, res)
}
