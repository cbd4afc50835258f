// internal/app/features/admin/chapters.go
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/backend"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/inputval"
	"github.com/metacode22/study-somoim/internal/app/system/navigation"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

const chaptersURL = "/admin/chapters"

// dateFields are the chapter form's date inputs in display order.
var dateFields = []struct{ Name, Label string }{
	{"applicationStart", "신규 개설 신청 시작일"},
	{"applicationEnd", "신규 개설 신청 종료일"},
	{"recruitmentStart", "부원 모집 시작일"},
	{"recruitmentEnd", "부원 모집 종료일"},
	{"activityStart", "활동 시작일"},
	{"activityEnd", "활동 종료일"},
}

type chapterRow struct {
	ID          string
	Name        string
	Sequence    int
	PhaseLabel  string
	Application string
	Recruitment string
	Activity    string
	Current     bool
}

type chaptersData struct {
	viewdata.BaseVM
	Rows []chapterRow
}

type dateInput struct {
	Name  string
	Label string
	Value string
	Error string
}

type chapterFormData struct {
	viewdata.BaseVM

	Action   string
	Editing  bool
	Name     string
	Sequence string
	Dates    []dateInput

	FieldErrors map[string]string
	Error       string
}

type deleteData struct {
	viewdata.BaseVM
	Chapter models.Chapter
	Period  string
}

// valuesFrom returns the form input values for an existing chapter.
func valuesFrom(ch models.Chapter, loc *time.Location) map[string]string {
	f := inputval.ChapterFormFrom(ch)
	date := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.In(loc).Format(inputval.DateLayout)
	}
	return map[string]string{
		"name":             f.Name,
		"sequence":         strconv.Itoa(f.Sequence),
		"applicationStart": date(f.ApplicationStart),
		"applicationEnd":   date(f.ApplicationEnd),
		"recruitmentStart": date(f.RecruitmentStart),
		"recruitmentEnd":   date(f.RecruitmentEnd),
		"activityStart":    date(f.ActivityStart),
		"activityEnd":      date(f.ActivityEnd),
	}
}

// postedValues echoes the submitted inputs so a rejected form keeps them.
func postedValues(r *http.Request) map[string]string {
	out := map[string]string{
		"name":     r.PostFormValue("name"),
		"sequence": r.PostFormValue("sequence"),
	}
	for _, d := range dateFields {
		out[d.Name] = r.PostFormValue(d.Name)
	}
	return out
}

func newChapterForm(r *http.Request, action string, editing bool, values, errs map[string]string) chapterFormData {
	title := "기수 추가"
	if editing {
		title = "기수 수정"
	}
	data := chapterFormData{
		BaseVM:      viewdata.NewBaseVM(r, title, chaptersURL),
		Action:      action,
		Editing:     editing,
		Name:        values["name"],
		Sequence:    values["sequence"],
		FieldErrors: errs,
	}
	for _, d := range dateFields {
		data.Dates = append(data.Dates, dateInput{Name: d.Name, Label: d.Label, Value: values[d.Name], Error: errs[d.Name]})
	}
	return data
}

// parseChapter reads and validates the posted chapter form.
func (h *Handler) parseChapter(r *http.Request) (inputval.ChapterForm, *inputval.Result) {
	f, res := inputval.ParseChapterForm(r.PostFormValue, h.Loc)
	if res.HasErrors() {
		return f, res
	}
	return f, inputval.ValidateChapter(f)
}

// ServeChapters lists every chapter with its periods and phase.
func (h *Handler) ServeChapters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin chapters")
	defer cancel()

	list, err := h.Chapters.List(ctx)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: list chapters", err, "/admin")
		return
	}
	current, err := h.Chapters.Current(ctx)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: load current chapter", err, "/admin")
		return
	}

	now := h.Clock.Now()
	rows := make([]chapterRow, 0, len(list))
	for _, ch := range list {
		p := ch.Periods
		rows = append(rows, chapterRow{
			ID:          ch.ID,
			Name:        ch.Name,
			Sequence:    ch.Sequence,
			PhaseLabel:  phase.Label(phase.Current(p, now)),
			Application: phase.FormatRange(p.ApplicationStart, p.ApplicationEnd, h.Loc),
			Recruitment: phase.FormatRange(p.RecruitmentStart, p.RecruitmentEnd, h.Loc),
			Activity:    phase.FormatRange(p.ActivityStart, p.ActivityEnd, h.Loc),
			Current:     current != nil && current.ID == ch.ID,
		})
	}
	templates.Render(w, r, "admin_chapters", chaptersData{
		BaseVM: viewdata.NewBaseVM(r, "기수 관리", "/admin"),
		Rows:   rows,
	})
}

// ServeNew renders an empty chapter form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "admin_chapter_form", newChapterForm(r, chaptersURL+"/new", false, nil, nil))
}

// HandleNew validates the posted periods and creates the chapter.
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: parse chapter form", err, "잘못된 요청입니다.", chaptersURL)
		return
	}

	f, res := h.parseChapter(r)
	if res.HasErrors() {
		data := newChapterForm(r, chaptersURL+"/new", false, postedValues(r), res.ByField())
		data.Error = res.First()
		templates.Render(w, r, "admin_chapter_form", data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin create chapter")
	defer cancel()

	ch, err := h.Chapters.Create(ctx, user.ID, f.Input())
	if err != nil {
		if st := backend.StatusOf(err); st >= 400 && st < 500 {
			data := newChapterForm(r, chaptersURL+"/new", false, postedValues(r), nil)
			data.Error = backend.MessageOf(err, "기수를 생성하지 못했습니다.")
			templates.Render(w, r, "admin_chapter_form", data)
			return
		}
		h.ErrLog.LogBackendError(w, r, "admin: create chapter", err, chaptersURL)
		return
	}

	h.AuditLog.ChapterCreated(ctx, r, user.ID, *ch)
	h.flash(w, r, "success", ch.Name+" 기수가 생성되었습니다.")
	http.Redirect(w, r, chaptersURL, http.StatusSeeOther)
}

// loadChapter fetches {id}, rendering 404 when the backend has no such
// chapter.
func (h *Handler) loadChapter(w http.ResponseWriter, r *http.Request) (*models.Chapter, bool) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin load chapter")
	defer cancel()

	ch, err := h.Chapters.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: load chapter", err, chaptersURL)
		return nil, false
	}
	if ch == nil {
		uierrors.RenderNotFound(w, r, "기수를 찾을 수 없습니다.", chaptersURL)
		return nil, false
	}
	return ch, true
}

// ServeEdit renders the form filled from the stored chapter.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ch, ok := h.loadChapter(w, r)
	if !ok {
		return
	}
	action := chaptersURL + "/" + ch.ID + "/edit"
	templates.Render(w, r, "admin_chapter_form", newChapterForm(r, action, true, valuesFrom(*ch, h.Loc), nil))
}

// HandleEdit validates the posted periods and updates the chapter.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin: parse chapter form", err, "잘못된 요청입니다.", chaptersURL)
		return
	}
	id := chi.URLParam(r, "id")
	action := chaptersURL + "/" + id + "/edit"

	f, res := h.parseChapter(r)
	if res.HasErrors() {
		data := newChapterForm(r, action, true, postedValues(r), res.ByField())
		data.Error = res.First()
		templates.Render(w, r, "admin_chapter_form", data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin update chapter")
	defer cancel()

	ch, err := h.Chapters.Update(ctx, user.ID, id, f.Input())
	if err != nil {
		if st := backend.StatusOf(err); st >= 400 && st < 500 && st != http.StatusNotFound {
			data := newChapterForm(r, action, true, postedValues(r), nil)
			data.Error = backend.MessageOf(err, "기수를 수정하지 못했습니다.")
			templates.Render(w, r, "admin_chapter_form", data)
			return
		}
		h.ErrLog.LogBackendError(w, r, "admin: update chapter", err, chaptersURL)
		return
	}

	h.AuditLog.ChapterUpdated(ctx, r, user.ID, *ch)
	h.flash(w, r, "success", ch.Name+" 기수가 수정되었습니다.")
	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.AdminChaptersBackURL), http.StatusSeeOther)
}

// ServeDelete renders the delete confirmation.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ch, ok := h.loadChapter(w, r)
	if !ok {
		return
	}
	p := ch.Periods
	templates.Render(w, r, "admin_chapter_delete", deleteData{
		BaseVM:  viewdata.NewBaseVM(r, "기수 삭제", chaptersURL),
		Chapter: *ch,
		Period:  phase.FormatRange(p.ApplicationStart, p.ActivityEnd, h.Loc),
	})
}

// HandleDelete removes the chapter.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	id := chi.URLParam(r, "id")
	back := navigation.SafeBackURL(r, navigation.AdminChaptersBackURL)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin delete chapter")
	defer cancel()

	if err := h.Chapters.Delete(ctx, user.ID, id); err != nil {
		if st := backend.StatusOf(err); st >= 400 && st < 500 && st != http.StatusNotFound {
			h.flash(w, r, "error", backend.MessageOf(err, "기수를 삭제하지 못했습니다."))
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		h.ErrLog.LogBackendError(w, r, "admin: delete chapter", err, chaptersURL)
		return
	}

	h.AuditLog.ChapterDeleted(ctx, r, user.ID, id)
	h.flash(w, r, "success", "기수가 삭제되었습니다.")
	http.Redirect(w, r, back, http.StatusSeeOther)
}
