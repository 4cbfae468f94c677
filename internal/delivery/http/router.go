package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(notificationController *NotificationController, statsController *StatsController) *http.ServeMux {
	mux := http.NewServeMux()

	// Notifications
	mux.HandleFunc("POST /events/{eventID}/notifications/schedule", notificationController.ScheduleNotifications)
	mux.HandleFunc("POST /notifications/send-pending", notificationController.SendPending)
	mux.HandleFunc("POST /notifications/{notificationID}/cancel", notificationController.CancelNotification)
	mux.HandleFunc("GET /notifications/stuck", notificationController.ListStuck)
	mux.HandleFunc("POST /notifications/{notificationID}/resume", notificationController.ResumeNotification)

	// Acknowledgements
	mux.HandleFunc("POST /notifications/{notificationID}/recipients/{recipientID}/read", notificationController.MarkRead)
	mux.HandleFunc("POST /notifications/{notificationID}/recipients/{recipientID}/responded", notificationController.MarkResponded)

	// Stats
	mux.HandleFunc("GET /events/{eventID}/stats", statsController.EventStats)
	mux.HandleFunc("GET /notifications/{notificationID}/stats", statsController.NotificationStats)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
