package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/petfolio/reminder-dispatch/internal/domain"
	"github.com/petfolio/reminder-dispatch/internal/service/dispatch"
)

type DispatchHandler struct {
	dispatchService *dispatch.Service
}

func NewDispatchHandler(dispatchService *dispatch.Service) *DispatchHandler {
	return &DispatchHandler{dispatchService: dispatchService}
}

// HandleDispatchMedications runs one medication tick. The tick instant
// defaults to the current minute; ?now= overrides it with an RFC3339 time
// for replays and testing.
func (h *DispatchHandler) HandleDispatchMedications(c *gin.Context) {
	now, ok := h.resolveTickTime(c)
	if !ok {
		return
	}

	report, err := h.dispatchService.DispatchMedications(c.Request.Context(), now)
	h.respond(c, report, err)
}

// HandleDispatchDeadlines runs one deadline tick, same time semantics.
func (h *DispatchHandler) HandleDispatchDeadlines(c *gin.Context) {
	now, ok := h.resolveTickTime(c)
	if !ok {
		return
	}

	report, err := h.dispatchService.DispatchDeadlines(c.Request.Context(), now)
	h.respond(c, report, err)
}

func (h *DispatchHandler) resolveTickTime(c *gin.Context) (time.Time, bool) {
	if nowStr := c.Query("now"); nowStr != "" {
		parsed, err := time.Parse(time.RFC3339, nowStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid now time format, expected RFC3339",
			})
			return time.Time{}, false
		}
		now := parsed.Truncate(time.Minute)
		slog.InfoContext(c.Request.Context(), "using virtual time",
			slog.Time("virtual_now", now),
		)
		return now, true
	}
	return time.Now().Truncate(time.Minute), true
}

func (h *DispatchHandler) respond(c *gin.Context, report *dispatch.TickReport, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrPersistenceUnavailable) {
			status = http.StatusServiceUnavailable
		}
		slog.ErrorContext(c.Request.Context(), "dispatch tick failed",
			slog.String("error", err.Error()),
		)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
