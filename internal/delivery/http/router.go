package http

import (
	"net/http"

	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	catalogHandler      *handler.CatalogHandler
	appointmentHandler  *handler.AppointmentHandler
	notificationHandler *handler.NotificationHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	gatherer            prometheus.Gatherer
}

func NewRouter(
	authHandler *handler.AuthHandler,
	catalogHandler *handler.CatalogHandler,
	appointmentHandler *handler.AppointmentHandler,
	notificationHandler *handler.NotificationHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	gatherer prometheus.Gatherer,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		catalogHandler:      catalogHandler,
		appointmentHandler:  appointmentHandler,
		notificationHandler: notificationHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		gatherer:            gatherer,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)
	auth.HandleFunc("/recovery/questions", r.authHandler.RecoveryQuestions).Methods(http.MethodPost)
	auth.HandleFunc("/recovery/reset", r.authHandler.ResetPassword).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	authProtected.HandleFunc("/me", r.authHandler.UpdateProfile).Methods(http.MethodPut)
	authProtected.HandleFunc("/password", r.authHandler.ChangePassword).Methods(http.MethodPut)

	// Catalog routes (public)
	api.HandleFunc("/specialties", r.catalogHandler.ListSpecialties).Methods(http.MethodGet)
	api.HandleFunc("/physicians", r.catalogHandler.ListPhysicians).Methods(http.MethodGet)

	// Any authenticated user
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.HandleFunc("/physicians/{id:[0-9]+}/slots", r.catalogHandler.AvailableSlots).Methods(http.MethodGet)
	protected.HandleFunc("/appointments", r.appointmentHandler.Book).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/cancel", r.appointmentHandler.CancelByKeys).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/reschedule", r.appointmentHandler.Reschedule).Methods(http.MethodPut)

	// Patient routes
	patient := api.PathPrefix("/me").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/appointments", r.appointmentHandler.ListMine).Methods(http.MethodGet)
	patient.HandleFunc("/notifications", r.notificationHandler.List).Methods(http.MethodGet)
	patient.HandleFunc("/notifications/{id:[0-9]+}/read", r.notificationHandler.MarkRead).Methods(http.MethodPut)
	patient.HandleFunc("/notifications/{id:[0-9]+}", r.notificationHandler.Delete).Methods(http.MethodDelete)

	// Administrator routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdministrator)
	admin.HandleFunc("/physician", r.catalogHandler.GetMyPhysician).Methods(http.MethodGet)
	admin.HandleFunc("/physicians/{id:[0-9]+}/patients", r.catalogHandler.ListPatientsOfPhysician).Methods(http.MethodGet)
	admin.HandleFunc("/appointments", r.appointmentHandler.ListAll).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}/attendance", r.appointmentHandler.MarkAttendance).Methods(http.MethodPut)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
