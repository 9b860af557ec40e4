package handlers

import (
	"net/http"

	"github.com/Dias221467/Habit_Tracker/pkg/middleware"
	"github.com/gorilla/mux"
)

// NewRouter registers every route. Paths keep their trailing slash.
func NewRouter(habitHandler *HabitHandler, userHandler *UserHandler, telegramHandler *TelegramHandler, jwtSecret string) *mux.Router {
	router := mux.NewRouter()

	// Habit routes
	protectedHabitRoutes := router.PathPrefix("/habits").Subrouter()
	protectedHabitRoutes.Use(middleware.AuthMiddleware(jwtSecret))
	protectedHabitRoutes.HandleFunc("/", habitHandler.GetHabitsHandler).Methods(http.MethodGet)
	protectedHabitRoutes.HandleFunc("/", habitHandler.CreateHabitHandler).Methods(http.MethodPost)
	protectedHabitRoutes.HandleFunc("/{id}/", habitHandler.GetHabitHandler).Methods(http.MethodGet)
	protectedHabitRoutes.HandleFunc("/{id}/", habitHandler.UpdateHabitHandler).Methods(http.MethodPut, http.MethodPatch)
	protectedHabitRoutes.HandleFunc("/{id}/", habitHandler.DeleteHabitHandler).Methods(http.MethodDelete)

	publicHabitRoutes := router.PathPrefix("/public-habits").Subrouter()
	publicHabitRoutes.Use(middleware.AuthMiddleware(jwtSecret))
	publicHabitRoutes.HandleFunc("/", habitHandler.GetPublicHabitsHandler).Methods(http.MethodGet)

	// User routes
	router.HandleFunc("/users/register/", userHandler.RegisterUserHandler).Methods(http.MethodPost)
	router.HandleFunc("/users/token/", userHandler.ObtainTokenHandler).Methods(http.MethodPost)
	router.HandleFunc("/users/token/refresh/", userHandler.RefreshTokenHandler).Methods(http.MethodPost)
	router.HandleFunc("/users/telegram/webhook/", telegramHandler.WebhookHandler).Methods(http.MethodPost)

	router.Use(middleware.LoggingMiddleware)
	return router
}
