package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/backend"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// BasePath is the API prefix the fake backend serves under.
const BasePath = "/study-somoim"

// FakeBackend is an in-memory stand-in for the study/club backend API,
// served over httptest. Handler and store tests point a real backend.Client
// at it.
type FakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	chapters  []models.Chapter
	currentID string
	groups    map[string]models.ChapterGroup
	members   map[string][]models.Membership
	teams     []models.Team
	calls     []string
	writers   []string
	reject    *rejection
	seq       int
}

type rejection struct {
	status  int
	message string
}

// NewFakeBackend starts a fake backend that shuts down with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		t:       t,
		groups:  map[string]models.ChapterGroup{},
		members: map[string][]models.Membership{},
	}
	f.server = httptest.NewServer(f.routes())
	t.Cleanup(f.server.Close)
	return f
}

// URL is the API root including the base path.
func (f *FakeBackend) URL() string { return f.server.URL + BasePath }

// Client returns a backend client pointed at the fake.
func (f *FakeBackend) Client() *backend.Client {
	c, err := backend.New(f.URL())
	if err != nil {
		f.t.Fatalf("backend.New: %v", err)
	}
	return c
}

// AddChapter stores ch; the first chapter added becomes current.
func (f *FakeBackend) AddChapter(ch models.Chapter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chapters = append(f.chapters, ch)
	if f.currentID == "" {
		f.currentID = ch.ID
	}
}

// SetCurrent selects the current chapter. An empty id makes /chapters/current
// answer null.
func (f *FakeBackend) SetCurrent(id string) {
	f.mu.Lock()
	f.currentID = id
	f.mu.Unlock()
}

// AddGroup stores a chapter group.
func (f *FakeBackend) AddGroup(cg models.ChapterGroup) {
	f.mu.Lock()
	f.groups[cg.ID] = cg
	f.mu.Unlock()
}

// Group returns the stored chapter group.
func (f *FakeBackend) Group(id string) (models.ChapterGroup, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cg, ok := f.groups[id]
	return cg, ok
}

// AddMember stores a membership under groupID.
func (f *FakeBackend) AddMember(groupID string, m models.Membership) {
	f.mu.Lock()
	m.ChapterGroup = models.ChapterGroupRef{ID: groupID}
	f.members[groupID] = append(f.members[groupID], m)
	f.mu.Unlock()
}

// Members returns the memberships stored under groupID.
func (f *FakeBackend) Members(groupID string) []models.Membership {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Membership(nil), f.members[groupID]...)
}

// AddTeam stores a lookup team.
func (f *FakeBackend) AddTeam(id, name string) {
	f.mu.Lock()
	f.teams = append(f.teams, models.Team{ID: id, Name: name})
	f.mu.Unlock()
}

// RejectNextWrite makes the next POST/PATCH/DELETE fail with status and a
// NestJS-style message body.
func (f *FakeBackend) RejectNextWrite(status int, message string) {
	f.mu.Lock()
	f.reject = &rejection{status: status, message: message}
	f.mu.Unlock()
}

// Calls returns "METHOD path" for every request served, in order.
func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount counts requests whose "METHOD path" starts with prefix.
func (f *FakeBackend) CallCount(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Writers returns the x-user-id of every write, in order.
func (f *FakeBackend) Writers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writers...)
}

func (f *FakeBackend) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Routes                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(f.record)
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/chapters/current", f.currentChapter)
		r.Get("/chapters", f.listChapters)
		r.Post("/chapters", f.createChapter)
		r.Get("/chapters/{id}", f.getChapter)
		r.Patch("/chapters/{id}", f.updateChapter)
		r.Delete("/chapters/{id}", f.deleteChapter)

		r.Get("/chapters/{c}/groups/recruiting", f.recruiting)
		r.Get("/chapters/{c}/groups/{g}", f.getGroup)
		r.Get("/chapters/{c}/groups/{g}/members", f.listMembers)
		r.Post("/chapters/{c}/groups/{g}/members", f.apply)
		r.Patch("/chapters/{c}/groups/{g}/members/{m}", f.selectMember)
		r.Delete("/chapters/{c}/groups/{g}/members/{m}", f.cancel)
		r.Post("/chapters/{c}/groups/{g}/registration", f.finalize)

		r.Post("/chapters/{c}/applications", f.createApplication)
		r.Get("/chapters/{c}/applications", f.listApplications)
		r.Get("/chapters/{c}/registrations", f.registrations)

		r.Get("/lookup/teams", f.listTeams)
	})
	return r
}

func (f *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+strings.TrimPrefix(r.URL.Path, BasePath))
		write := r.Method != http.MethodGet
		if write {
			f.writers = append(f.writers, r.Header.Get(backend.HeaderUserID))
		}
		rej := f.reject
		if write && rej != nil {
			f.reject = nil
		}
		f.mu.Unlock()

		if write && rej != nil {
			writeError(w, rej.status, rej.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"statusCode": status,
		"message":    message,
		"error":      http.StatusText(status),
	})
}

func pageOf[T any](r *http.Request, items []T) models.Page[T] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pages := (total + limit - 1) / limit
	return models.Page[T]{
		Data: append([]T{}, items[start:end]...),
		Meta: models.PageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages, HasNextPage: page < pages},
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Chapters                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) findChapter(id string) (int, bool) {
	for i, ch := range f.chapters {
		if ch.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (f *FakeBackend) currentChapter(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i, ok := f.findChapter(f.currentID); ok {
		writeJSON(w, http.StatusOK, f.chapters[i])
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (f *FakeBackend) listChapters(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": f.chapters})
}

func (f *FakeBackend) getChapter(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i, ok := f.findChapter(chi.URLParam(r, "id")); ok {
		writeJSON(w, http.StatusOK, f.chapters[i])
		return
	}
	writeError(w, http.StatusNotFound, "기수를 찾을 수 없습니다.")
}

func (f *FakeBackend) createChapter(w http.ResponseWriter, r *http.Request) {
	var in models.ChapterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := models.Chapter{ID: f.nextID("ch"), Name: in.Name, Sequence: in.Sequence, Periods: in.Periods, CreatedAt: time.Now().UTC()}
	f.chapters = append(f.chapters, ch)
	writeJSON(w, http.StatusCreated, ch)
}

func (f *FakeBackend) updateChapter(w http.ResponseWriter, r *http.Request) {
	var in models.ChapterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.findChapter(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "기수를 찾을 수 없습니다.")
		return
	}
	ch := &f.chapters[i]
	ch.Name, ch.Sequence, ch.Periods, ch.UpdatedAt = in.Name, in.Sequence, in.Periods, time.Now().UTC()
	writeJSON(w, http.StatusOK, *ch)
}

func (f *FakeBackend) deleteChapter(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.findChapter(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "기수를 찾을 수 없습니다.")
		return
	}
	f.chapters = append(f.chapters[:i], f.chapters[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Chapter groups                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) groupsIn(chapterID string, keep func(models.ChapterGroup) bool) []models.ChapterGroup {
	out := []models.ChapterGroup{}
	for _, cg := range f.groups {
		if cg.Chapter == chapterID && (keep == nil || keep(cg)) {
			out = append(out, cg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *FakeBackend) recruiting(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.groupsIn(chi.URLParam(r, "c"), func(cg models.ChapterGroup) bool {
		return cg.ReviewStatus != models.ReviewRejected
	}))
}

func (f *FakeBackend) getGroup(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cg, ok := f.groups[chi.URLParam(r, "g")]
	if !ok || cg.Chapter != chi.URLParam(r, "c") {
		writeError(w, http.StatusNotFound, "그룹을 찾을 수 없습니다.")
		return
	}
	writeJSON(w, http.StatusOK, cg)
}

func (f *FakeBackend) createApplication(w http.ResponseWriter, r *http.Request) {
	var in models.ApplicationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("cg")
	typ := in.Type.Label()
	cg := models.ChapterGroup{
		ID:      id,
		Chapter: chi.URLParam(r, "c"),
		Group: models.GroupRef{ID: "grp-" + id, Group: &models.Group{
			ID: "grp-" + id, Name: in.Name, Type: typ, Description: in.Description, Category: in.Category, IsActive: true,
		}},
		Leader:          models.UserRef{ID: in.LeaderID},
		Team:            in.TeamID,
		Type:            typ,
		OperationPlan:   in.OperationPlan,
		MeetingSchedule: in.MeetingSchedule,
		MeetingLocation: in.MeetingLocation,
		Category:        in.Category,
		ReviewStatus:    models.ReviewPending,
		GroupName:       in.Name,
		CreatedAt:       time.Now().UTC(),
	}
	f.groups[id] = cg
	writeJSON(w, http.StatusCreated, cg)
}

func (f *FakeBackend) listApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.groupsIn(chi.URLParam(r, "c"), func(cg models.ChapterGroup) bool {
		if t := q.Get("type"); t != "" && string(cg.EffectiveType().AppType()) != t {
			return false
		}
		if s := q.Get("reviewStatus"); s != "" && string(cg.ReviewStatus) != s {
			return false
		}
		if s := q.Get("search"); s != "" && !strings.Contains(cg.Name(), s) {
			return false
		}
		return true
	})
	writeJSON(w, http.StatusOK, pageOf(r, items))
}

func (f *FakeBackend) registrations(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.groupsIn(chi.URLParam(r, "c"), models.ChapterGroup.SelectionComplete))
}

func (f *FakeBackend) finalize(w http.ResponseWriter, r *http.Request) {
	var in models.RegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cg, ok := f.groups[chi.URLParam(r, "g")]
	if !ok {
		writeError(w, http.StatusNotFound, "그룹을 찾을 수 없습니다.")
		return
	}
	now := time.Now().UTC()
	cg.IsRegistered = true
	cg.RegisteredAt = &now
	cg.Status = "registered"
	cg.AllowNewHires = in.AllowNewHires
	cg.LeaderOrientationAttended = in.LeaderOrientationAttended
	if in.SubLeaderID != "" {
		cg.SubLeader = &models.UserRef{ID: in.SubLeaderID}
	}
	f.groups[cg.ID] = cg
	writeJSON(w, http.StatusCreated, cg)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Memberships                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) listMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Membership{}
	for _, m := range f.members[chi.URLParam(r, "g")] {
		if q.Get("activeOnly") == "true" && !m.Active() {
			continue
		}
		if role := q.Get("role"); role != "" && string(m.Role) != role {
			continue
		}
		if pt := q.Get("participationType"); pt != "" && string(m.ParticipationType) != pt {
			continue
		}
		out = append(out, m)
	}
	writeJSON(w, http.StatusOK, pageOf(r, out))
}

func (f *FakeBackend) apply(w http.ResponseWriter, r *http.Request) {
	var in models.ApplyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	groupID := chi.URLParam(r, "g")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[groupID]; !ok {
		writeError(w, http.StatusNotFound, "그룹을 찾을 수 없습니다.")
		return
	}
	for _, m := range f.members[groupID] {
		if m.User.ID == in.UserID && m.Active() {
			writeError(w, http.StatusConflict, "이미 신청한 그룹입니다.")
			return
		}
	}
	m := models.Membership{
		ID:                f.nextID("m"),
		ChapterGroup:      models.ChapterGroupRef{ID: groupID},
		User:              models.UserRef{ID: in.UserID},
		Role:              models.RoleObserver,
		ParticipationType: in.ParticipationType,
		CreatedAt:         time.Now().UTC(),
	}
	f.members[groupID] = append(f.members[groupID], m)
	writeJSON(w, http.StatusCreated, m)
}

func (f *FakeBackend) memberIndex(groupID, id string) int {
	for i, m := range f.members[groupID] {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeBackend) selectMember(w http.ResponseWriter, r *http.Request) {
	var in models.SelectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	groupID := chi.URLParam(r, "g")
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.memberIndex(groupID, chi.URLParam(r, "m"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "신청 내역을 찾을 수 없습니다.")
		return
	}
	f.members[groupID][i].Role = in.Role
	writeJSON(w, http.StatusOK, f.members[groupID][i])
}

func (f *FakeBackend) cancel(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "g")
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.memberIndex(groupID, chi.URLParam(r, "m"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "신청 내역을 찾을 수 없습니다.")
		return
	}
	now := time.Now().UTC()
	f.members[groupID][i].CancelledAt = &now
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeBackend) listTeams(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.teams)
}

// Close shuts the server down early, so later calls fail at the transport.
func (f *FakeBackend) Close() { f.server.Close() }
