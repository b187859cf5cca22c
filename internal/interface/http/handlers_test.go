package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/application/query"
	"github.com/toqeer-ahmed/MindMate/internal/application/validation"
	"github.com/toqeer-ahmed/MindMate/internal/domain/academic"
	"github.com/toqeer-ahmed/MindMate/internal/domain/risk"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/internal/domain/student"
	"github.com/toqeer-ahmed/MindMate/internal/domain/summary"
	"github.com/toqeer-ahmed/MindMate/internal/domain/wellness"
	"github.com/toqeer-ahmed/MindMate/pkg/logger"
	"github.com/toqeer-ahmed/MindMate/pkg/timeutil"
)

const (
	idHina    = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	idUnknown = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"

	testAdvisorKey = "correct horse battery staple"
)

var testNow = time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type memRepo struct {
	snaps   map[shared.StudentID]student.Snapshot
	loadErr error
}

func (r *memRepo) ListStudents(context.Context) ([]student.Profile, error) {
	out := make([]student.Profile, 0, len(r.snaps))
	for _, s := range r.snaps {
		out = append(out, s.Profile)
	}
	return out, nil
}

func (r *memRepo) LoadSnapshot(_ context.Context, id shared.StudentID, _ wellness.Window) (student.Snapshot, error) {
	if r.loadErr != nil {
		return student.Snapshot{}, r.loadErr
	}
	s, ok := r.snaps[id]
	if !ok {
		return student.Snapshot{}, shared.ErrStudentNotFound
	}
	return s, nil
}

type flagSet map[string]bool

func (f flagSet) IsEnabled(name string) bool { return f[name] }

func hinaSnapshot() student.Snapshot {
	today := shared.DateOf(testNow, time.UTC)
	assessment := func(id string, obtained float64, weight academic.Weightage) academic.Assessment {
		return academic.Assessment{ID: id, Kind: academic.KindQuiz, TotalMarks: 100, ObtainedMarks: obtained, Weightage: weight}
	}
	return student.Snapshot{
		Profile: student.Profile{ID: idHina, Name: "Hina"},
		Courses: []academic.Course{
			{ID: "ds", Name: "Data Structures", CreditHours: 3, Assessments: []academic.Assessment{
				assessment("q1", 80, 50), assessment("q2", 70, 50),
			}},
			{ID: "calc", Name: "Calculus", CreditHours: 3, Assessments: []academic.Assessment{
				assessment("mid", 40, 100),
			}},
		},
		Moods: []wellness.MoodEntry{
			{ID: "m1", MoodScore: 8, Timestamp: testNow.Add(-2 * time.Hour)},
			{ID: "m2", MoodScore: 6, Timestamp: testNow.Add(-time.Hour)},
			{ID: "m3", MoodScore: 7, Timestamp: testNow.Add(-72 * time.Hour)},
		},
		Tasks: []wellness.Task{{
			ID: "t1", Title: "Essay", Status: wellness.TaskDone, Priority: wellness.PriorityMedium, DueDate: &today,
		}},
		Journals: []wellness.JournalEntry{{
			ID: "j1", Title: "Busy", Content: "private thoughts", CreatedAt: testNow.Add(-72 * time.Hour),
		}},
	}
}

type serverOpts struct {
	repo     *memRepo
	keyHash  string
	features query.Features
	health   *HealthChecker
}

func newTestServer(t *testing.T, opts serverOpts) http.Handler {
	t.Helper()
	if opts.repo == nil {
		opts.repo = &memRepo{snaps: map[shared.StudentID]student.Snapshot{idHina: hinaSnapshot()}}
	}

	clock := timeutil.FixedClock(testNow, time.UTC)
	screener := validation.NewScreener()
	classifier := risk.NewClassifier(risk.DefaultPolicy())
	assessor := risk.NewAssessor(classifier, risk.DefaultBurnoutPolicy(), time.UTC)
	builder := summary.NewBuilder(summary.DefaultPolicy(), classifier, time.UTC)

	deps := Dependencies{
		AcademicStanding: query.NewGetAcademicStandingHandler(opts.repo, screener, clock, opts.features, academic.DefaultAtRiskBelow),
		MoodTrend:        query.NewGetMoodTrendHandler(opts.repo, screener, clock, opts.features),
		DailySummary:     query.NewGetDailySummaryHandler(opts.repo, screener, builder, clock, opts.features),
		WellnessReports: query.NewGetWellnessReportsHandler(opts.repo, screener, assessor, clock, query.ReportsOptions{
			Features:    opts.features,
			Concurrency: 2,
		}),
		Health: opts.health,
		Logger: logger.Nop(),
	}

	cfg := DefaultConfig()
	cfg.Mode = gin.TestMode
	cfg.AdvisorKeyHash = opts.keyHash
	return NewServer(cfg, deps).Handler()
}

func advisorHash(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdvisorKey), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func get(h http.Handler, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decode[ErrorEnvelope](t, rec)
	assert.Equal(t, code, env.Error.Code)
	assert.NotEmpty(t, env.Error.Message)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT VIEWS
// ══════════════════════════════════════════════════════════════════════════════

func TestAcademicStanding(t *testing.T) {
	h := newTestServer(t, serverOpts{})

	rec := get(h, "/api/v1/students/"+idHina+"/academics")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[query.GetAcademicStandingResult](t, rec)
	assert.Equal(t, "Hina", res.StudentName)
	require.Len(t, res.Courses, 2)
	assert.InDelta(t, 57.5, res.OverallAverage, 1e-9)
	assert.Equal(t, 1, res.CoursesAtRisk)

	byID := map[string]query.CourseStandingDTO{}
	for _, c := range res.Courses {
		byID[c.CourseID] = c
	}
	assert.InDelta(t, 75.0, byID["ds"].Percentage, 1e-9)
	assert.False(t, byID["ds"].AtRisk)
	assert.InDelta(t, 40.0, byID["calc"].Percentage, 1e-9)
	assert.True(t, byID["calc"].AtRisk)
}

func TestStudentRoutes_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		repo   *memRepo
		path   string
		status int
		code   string
	}{
		{"malformed id", nil, "/api/v1/students/not-a-uuid/academics", http.StatusBadRequest, codeInvalidRequest},
		{"unknown student", nil, "/api/v1/students/" + idUnknown + "/academics", http.StatusNotFound, codeNotFound},
		{"repository down", &memRepo{loadErr: errors.New("connection refused")}, "/api/v1/students/" + idHina + "/academics", http.StatusServiceUnavailable, codeUnavailable},
		{"bad days", nil, "/api/v1/students/" + idHina + "/mood-trend?days=abc", http.StatusBadRequest, codeInvalidRequest},
		{"days out of range", nil, "/api/v1/students/" + idHina + "/mood-trend?days=400", http.StatusBadRequest, codeInvalidRequest},
		{"bad perDay", nil, "/api/v1/students/" + idHina + "/mood-trend?perDay=maybe", http.StatusBadRequest, codeInvalidRequest},
		{"bad date", nil, "/api/v1/students/" + idHina + "/summary?date=12-03-2025", http.StatusBadRequest, codeInvalidRequest},
		{"summary unknown student", nil, "/api/v1/students/" + idUnknown + "/summary", http.StatusNotFound, codeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, serverOpts{repo: tt.repo})
			assertError(t, get(h, tt.path), tt.status, tt.code)
		})
	}
}

func TestMoodTrend(t *testing.T) {
	h := newTestServer(t, serverOpts{})

	rec := get(h, "/api/v1/students/"+idHina+"/mood-trend?days=7&perDay=true")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[query.GetMoodTrendResult](t, rec)
	assert.Equal(t, 7, res.Days)
	assert.True(t, res.PerDay)
	assert.Equal(t, 3, res.Samples)
	assert.InDelta(t, 7.0, res.AverageMood, 1e-9)
	require.Len(t, res.Points, 2)
	assert.InDelta(t, 7.0, res.Points[1].Score, 1e-9)
	assert.Equal(t, 2, res.Points[1].Samples)

	rec = get(h, "/api/v1/students/"+idHina+"/mood-trend")
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[query.GetMoodTrendResult](t, rec)
	assert.Equal(t, query.DefaultTrendDays, res.Days)
	assert.Len(t, res.Points, 3)
}

func TestDailySummary(t *testing.T) {
	h := newTestServer(t, serverOpts{features: flagSet{config.FeatureSummaryRedactJournal: true}})

	rec := get(h, "/api/v1/students/"+idHina+"/summary?date=2025-03-12")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	sum, ok := raw["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2025-03-12", sum["date"])
	assert.InDelta(t, 67.0, sum["wellnessScore"], 1e-9)
	assert.Equal(t, "LOW", sum["riskLevel"])

	rec = get(h, "/api/v1/students/"+idHina+"/summary?date=2025-03-09")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[query.GetDailySummaryResult](t, rec)
	require.Len(t, res.Summary.JournalEntries, 1)
	assert.Equal(t, query.RedactedContent, res.Summary.JournalEntries[0].Content)
	assert.Equal(t, "Busy", res.Summary.JournalEntries[0].Title)
}

func TestDailySummary_DefaultsToToday(t *testing.T) {
	h := newTestServer(t, serverOpts{})

	rec := get(h, "/api/v1/students/"+idHina+"/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[query.GetDailySummaryResult](t, rec)
	assert.Equal(t, shared.NewDate(2025, time.March, 12), res.Summary.Date)
	assert.Len(t, res.Summary.MoodEntries, 2)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADVISOR VIEWS
// ══════════════════════════════════════════════════════════════════════════════

func TestWellnessReports_Auth(t *testing.T) {
	h := newTestServer(t, serverOpts{keyHash: advisorHash(t)})

	assertError(t, get(h, "/api/v1/advisor/reports"), http.StatusUnauthorized, codeUnauthorized)
	assertError(t, get(h, "/api/v1/advisor/reports", "Authorization", "Bearer wrong"), http.StatusUnauthorized, codeUnauthorized)
	assertError(t, get(h, "/api/v1/advisor/reports", "Authorization", "Basic "+testAdvisorKey), http.StatusUnauthorized, codeUnauthorized)

	rec := get(h, "/api/v1/advisor/reports", "Authorization", "Bearer "+testAdvisorKey)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = get(h, "/api/v1/advisor/reports", HeaderAdvisorKey, testAdvisorKey)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestWellnessReports_DisabledWithoutKeyHash(t *testing.T) {
	h := newTestServer(t, serverOpts{})
	rec := get(h, "/api/v1/advisor/reports", "Authorization", "Bearer "+testAdvisorKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWellnessReports(t *testing.T) {
	h := newTestServer(t, serverOpts{keyHash: advisorHash(t)})

	rec := get(h, "/api/v1/advisor/reports?windowDays=7", "Authorization", "Bearer "+testAdvisorKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[query.GetWellnessReportsResult](t, rec)
	assert.False(t, res.FromCache)
	assert.Equal(t, 7, res.WindowDays)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Failures)
	require.Len(t, res.Reports, 1)

	row := res.Reports[0]
	assert.Equal(t, idHina, row.StudentID)
	assert.Equal(t, "Hina", row.StudentName)
	assert.InDelta(t, 7.0, row.AverageMoodScore, 1e-9)
	assert.Equal(t, 1, row.JournalCount)
	assert.Equal(t, 1, row.TasksCompleted)
	assert.Equal(t, risk.LevelLow, row.RiskLevel)
	assert.Equal(t, 1, res.Counts[risk.LevelLow])

	assertError(t,
		get(h, "/api/v1/advisor/reports?windowDays=365", "Authorization", "Bearer "+testAdvisorKey),
		http.StatusBadRequest, codeInvalidRequest)
}

// ══════════════════════════════════════════════════════════════════════════════
// INFRASTRUCTURE ROUTES & MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

func TestHealthz(t *testing.T) {
	hc := NewHealthChecker("1.2.3")
	hc.AddCheck("postgres", func(context.Context) error { return nil })
	hc.AddOptionalCheck("redis", func(context.Context) error { return errors.New("dial tcp: refused") })

	h := newTestServer(t, serverOpts{health: hc})
	rec := get(h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[HealthStatus](t, rec)
	assert.True(t, status.Healthy)
	assert.True(t, status.Degraded)
	assert.Equal(t, "1.2.3", status.Version)

	hc.AddCheck("postgres", func(context.Context) error { return errors.New("down") })
	rec = get(h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	assert.Equal(t, http.StatusOK, get(h, "/livez").Code)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, serverOpts{})

	rec := get(h, "/livez")
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)

	rec = get(h, "/livez", HeaderRequestID, "req-42")
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = gin.TestMode
	// Nil query handlers panic on use.
	h := NewServer(cfg, Dependencies{Logger: logger.Nop()}).Handler()

	assertError(t, get(h, "/api/v1/students/"+idHina+"/academics"), http.StatusInternalServerError, codeInternal)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, serverOpts{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/students/"+idHina+"/academics", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/students/"+idHina+"/academics", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{shared.ErrInvalidStudentID, http.StatusBadRequest},
		{shared.ErrStudentNotFound, http.StatusNotFound},
		{shared.WrapError("query", "X", shared.ErrTimeout, "slow", context.Canceled), http.StatusGatewayTimeout},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{shared.NewDomainError("query", "X", shared.ErrServiceUnavailable, "down"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}
