package http

import (
	"errors"
	"log/slog"
	"net/http"

	"eventreminder/internal/domain"
)

// StatsController serves the read-only delivery statistics endpoints.
type StatsController struct {
	Logger *slog.Logger
	Stats  domain.StatsService
}

func NewStatsController(logger *slog.Logger, stats domain.StatsService) *StatsController {
	return &StatsController{Logger: logger, Stats: stats}
}

// NotificationStats godoc
// @Summary Delivery statistics for one notification
// @Description Returns outcome counts and rates (sent, delivered, read, responded) for a single notification.
// @Tags stats
// @Produce json
// @Param notificationID path string true "Notification ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.NotificationStats}
// @Failure 404 {object} APIResponse "error.code: not_found"
// @Failure 500 {object} APIResponse "error.code: internal_error"
// @Router /notifications/{notificationID}/stats [get]
func (c *StatsController) NotificationStats(w http.ResponseWriter, r *http.Request) {
	notificationID := r.PathValue("notificationID")
	if notificationID == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing notificationID")
		return
	}
	stats, err := c.Stats.PerNotification(r.Context(), notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "notification not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	WriteJSONSuccess(w, http.StatusOK, stats)
}

// EventStats godoc
// @Summary Delivery statistics for an event
// @Description Returns per-notification statistics for every notification of an event, ordered by scheduled time.
// @Tags stats
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} APIResponse{data=[]domain.NotificationStats}
// @Failure 404 {object} APIResponse "error.code: not_found"
// @Failure 500 {object} APIResponse "error.code: internal_error"
// @Router /events/{eventID}/stats [get]
func (c *StatsController) EventStats(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing eventID")
		return
	}
	stats, err := c.Stats.PerEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	WriteJSONSuccess(w, http.StatusOK, stats)
}
