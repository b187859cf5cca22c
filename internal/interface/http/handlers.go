package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toqeer-ahmed/MindMate/internal/application/query"
	"github.com/toqeer-ahmed/MindMate/internal/domain/shared"
	"github.com/toqeer-ahmed/MindMate/pkg/logger"
)

// Error codes of the JSON error envelope.
const (
	codeInvalidRequest = "invalid_request"
	codeNotFound       = "not_found"
	codeUnauthorized   = "unauthorized"
	codeUnavailable    = "service_unavailable"
	codeTimeout        = "timeout"
	codeInternal       = "internal_error"
)

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type handlers struct {
	deps Dependencies
}

func newHandlers(deps Dependencies) *handlers {
	return &handlers{deps: deps}
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (h *handlers) health(c *gin.Context) {
	status := h.deps.Health.Check(c.Request.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func (h *handlers) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT VIEWS
// ══════════════════════════════════════════════════════════════════════════════

// GET /api/v1/students/:id/academics
func (h *handlers) academicStanding(c *gin.Context) {
	result, err := h.deps.AcademicStanding.Handle(c.Request.Context(), query.GetAcademicStandingQuery{
		StudentID: c.Param("id"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type moodTrendParams struct {
	Days   int  `form:"days" binding:"omitempty,min=1,max=365"`
	PerDay bool `form:"perDay"`
}

// GET /api/v1/students/:id/mood-trend?days=N&perDay=true
func (h *handlers) moodTrend(c *gin.Context) {
	var params moodTrendParams
	if err := c.ShouldBindQuery(&params); err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, "days must be 1-365 and perDay a boolean")
		return
	}

	result, err := h.deps.MoodTrend.Handle(c.Request.Context(), query.GetMoodTrendQuery{
		StudentID: c.Param("id"),
		Days:      params.Days,
		PerDay:    params.PerDay,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type summaryParams struct {
	Date string `form:"date"`
}

// GET /api/v1/students/:id/summary?date=YYYY-MM-DD
func (h *handlers) dailySummary(c *gin.Context) {
	var params summaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	q := query.GetDailySummaryQuery{StudentID: c.Param("id")}
	if params.Date != "" {
		day, err := shared.ParseDate(params.Date)
		if err != nil {
			h.respondError(c, err)
			return
		}
		q.Date = day
	}

	result, err := h.deps.DailySummary.Handle(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADVISOR VIEWS
// ══════════════════════════════════════════════════════════════════════════════

type reportsParams struct {
	WindowDays int  `form:"windowDays" binding:"omitempty,min=1,max=90"`
	Fresh      bool `form:"fresh"`
}

// GET /api/v1/advisor/reports?windowDays=N&fresh=true
func (h *handlers) wellnessReports(c *gin.Context) {
	var params reportsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, "windowDays must be 1-90 and fresh a boolean")
		return
	}

	result, err := h.deps.WellnessReports.Handle(c.Request.Context(), query.GetWellnessReportsQuery{
		WindowDays: params.WindowDays,
		Fresh:      params.Fresh,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// statusFor maps domain error kinds to HTTP statuses. Messages of 4xx
// errors are shown to the caller; 5xx get a generic message.
func statusFor(err error) (int, string, string) {
	switch {
	case shared.IsValidation(err):
		return http.StatusBadRequest, codeInvalidRequest, err.Error()
	case shared.IsNotFound(err):
		return http.StatusNotFound, codeNotFound, err.Error()
	case errors.Is(err, shared.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout, "the request took too long"
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, codeUnavailable, "student records are temporarily unavailable"
	default:
		return http.StatusInternalServerError, codeInternal, "an unexpected error occurred"
	}
}

func (h *handlers) respondError(c *gin.Context, err error) {
	status, code, message := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			logger.String("path", c.FullPath()),
			logger.Err(err),
		)
	}
	abortWithError(c, status, code, message)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: message, Code: code}})
}
