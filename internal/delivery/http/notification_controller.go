package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"eventreminder/internal/domain"
	"eventreminder/internal/services"
)

// NotificationController exposes the operator-facing notification
// operations: scheduling, manual runs, cancellation, acknowledgements,
// and the recovery sweep for stuck dispatches.
type NotificationController struct {
	Logger         *slog.Logger
	Catalog        domain.NotificationCatalog
	Delivery       domain.DeliveryService
	Scheduler      *services.Scheduler
	StuckThreshold time.Duration
}

func NewNotificationController(
	logger *slog.Logger,
	catalog domain.NotificationCatalog,
	delivery domain.DeliveryService,
	scheduler *services.Scheduler,
	stuckThreshold time.Duration,
) *NotificationController {
	return &NotificationController{
		Logger:         logger,
		Catalog:        catalog,
		Delivery:       delivery,
		Scheduler:      scheduler,
		StuckThreshold: stuckThreshold,
	}
}

// ScheduleNotifications godoc
// @Summary Derive scheduled notifications for an event
// @Description Creates the five notification rows for an event with notifications enabled. Re-invocation is a no-op for pairs that already exist. Returns the full current set for the event.
// @Tags notifications
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} APIResponse "data contains the event's notifications"
// @Failure 404 {object} APIResponse "error.code: not_found"
// @Failure 500 {object} APIResponse "error.code: internal_error"
// @Router /events/{eventID}/notifications/schedule [post]
func (c *NotificationController) ScheduleNotifications(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing eventID")
		return
	}
	notifications, err := c.Catalog.DeriveForEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	WriteJSONSuccess(w, http.StatusCreated, notifications)
}

// SendPendingRequest is the optional request body for POST
// /notifications/send-pending.
type SendPendingRequest struct {
	ForceAll bool `json:"force_all"`
}

// SendPendingResponse reports how many messages a manual run sent.
type SendPendingResponse struct {
	Sent int `json:"sent"`
}

// SendPending godoc
// @Summary Run the notification dispatcher now
// @Description Processes due notifications immediately. With force_all it ignores scheduling and processes every pending notification. Refused with 409 while another run is in flight.
// @Tags notifications
// @Accept json
// @Produce json
// @Param body body SendPendingRequest false "Options"
// @Success 200 {object} APIResponse "data contains the sent count"
// @Failure 409 {object} APIResponse "error.code: conflict"
// @Failure 500 {object} APIResponse "error.code: internal_error"
// @Router /notifications/send-pending [post]
func (c *NotificationController) SendPending(w http.ResponseWriter, r *http.Request) {
	var req SendPendingRequest
	if r.ContentLength != 0 {
		if !DecodeJSON(w, r, &req) {
			return
		}
	}
	sent, err := c.Scheduler.RunOnce(r.Context(), req.ForceAll)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "a run is already in flight")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	WriteJSONSuccess(w, http.StatusOK, SendPendingResponse{Sent: sent})
}

// CancelNotification godoc
// @Summary Cancel a pending notification
// @Description Cancels a notification that has not started dispatching. A notification that is dispatching or already sent cannot be cancelled.
// @Tags notifications
// @Produce json
// @Param notificationID path string true "Notification ID (UUID)"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "error.code: not_found"
// @Failure 409 {object} APIResponse "error.code: conflict"
// @Router /notifications/{notificationID}/cancel [post]
func (c *NotificationController) CancelNotification(w http.ResponseWriter, r *http.Request) {
	notificationID := r.PathValue("notificationID")
	if notificationID == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing notificationID")
		return
	}
	if err := c.Catalog.MarkCancelled(r.Context(), notificationID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "notification not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "notification is not pending")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		}
		return
	}
	WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// MarkRead godoc
// @Summary Record a read acknowledgement
// @Description Marks the delivery record for (notification, recipient) as read. Idempotent; repeated acks are a no-op.
// @Tags acknowledgements
// @Produce json
// @Param notificationID path string true "Notification ID (UUID)"
// @Param recipientID path string true "Recipient ID (UUID)"
// @Success 204 "no content"
// @Failure 404 {object} APIResponse "error.code: not_found"
// @Failure 500 {object} APIResponse "error.code: internal_error"
// @Router /notifications/{notificationID}/recipients/{recipientID}/read [post]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	c.ack(w, r, c.Delivery.MarkRead)
}

// MarkResponded godoc
// @Summary Record a response acknowledgement
// @Description Marks the delivery record for (notification, recipient) as responded (and read, when no read was observed). Idempotent.
// @Tags acknowledgements
// @Produce json
// @Param notificationID path string true "Notification ID (UUID)"
// @Param recipientID path string true "Recipient ID (UUID)"
// @Success 204 "no content"
// @Failure 404 {object} APIResponse "error.code: not_found"
// @Failure 500 {object} APIResponse "error.code: internal_error"
// @Router /notifications/{notificationID}/recipients/{recipientID}/responded [post]
func (c *NotificationController) MarkResponded(w http.ResponseWriter, r *http.Request) {
	c.ack(w, r, c.Delivery.MarkResponded)
}

func (c *NotificationController) ack(w http.ResponseWriter, r *http.Request, mutate func(ctx context.Context, notificationID, recipientID string) error) {
	notificationID := r.PathValue("notificationID")
	recipientID := r.PathValue("recipientID")
	if notificationID == "" || recipientID == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing notificationID or recipientID")
		return
	}
	if err := mutate(r.Context(), notificationID, recipientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "delivery record not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStuck godoc
// @Summary List notifications stuck in dispatching
// @Description Lists notifications left in the dispatching state longer than the configured threshold, usually after a crash mid-batch. Resume them explicitly via the resume endpoint.
// @Tags notifications
// @Produce json
// @Success 200 {object} APIResponse "data contains the stuck notifications"
// @Failure 500 {object} APIResponse "error.code: internal_error"
// @Router /notifications/stuck [get]
func (c *NotificationController) ListStuck(w http.ResponseWriter, r *http.Request) {
	stuck, err := c.Catalog.ListStuck(r.Context(), c.StuckThreshold)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	WriteJSONSuccess(w, http.StatusOK, stuck)
}

// ResumeNotification godoc
// @Summary Resume a stuck notification
// @Description Re-runs the recipient fan-out for a notification stuck in dispatching. Safe to re-run: delivery records are upserted by (notification, recipient) key.
// @Tags notifications
// @Produce json
// @Param notificationID path string true "Notification ID (UUID)"
// @Success 200 {object} APIResponse "data contains the dispatch summary"
// @Failure 404 {object} APIResponse "error.code: not_found"
// @Failure 409 {object} APIResponse "error.code: conflict"
// @Router /notifications/{notificationID}/resume [post]
func (c *NotificationController) ResumeNotification(w http.ResponseWriter, r *http.Request) {
	notificationID := r.PathValue("notificationID")
	if notificationID == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing notificationID")
		return
	}
	summary, err := c.Delivery.Resume(r.Context(), notificationID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "notification not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "notification is not dispatching")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		}
		return
	}
	WriteJSONSuccess(w, http.StatusOK, summary)
}
