package handlers

import (
	"errors"
	"net/http"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/internal/services"
	"github.com/Dias221467/Habit_Tracker/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HabitHandler handles HTTP requests related to habits.
type HabitHandler struct {
	Service *services.HabitService
}

// NewHabitHandler creates a new instance of HabitHandler.
func NewHabitHandler(habitService *services.HabitService) *HabitHandler {
	return &HabitHandler{Service: habitService}
}

// CreateHabitHandler handles POST /habits/.
func (h *HabitHandler) CreateHabitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var in models.HabitInput
	if !decodeJSON(w, r, &in) {
		return
	}

	habit, err := h.Service.CreateHabit(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithField("habit_id", habit.ID.Hex()).Info("Habit created successfully")
	writeJSON(w, http.StatusCreated, habit)
}

// GetHabitsHandler handles GET /habits/.
func (h *HabitHandler) GetHabitsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	page, ok := pageNumber(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailInvalidPage)
		return
	}

	habits, total, err := h.Service.ListHabits(r.Context(), userID, page)
	h.writePage(w, r, page, habits, total, err)
}

// GetPublicHabitsHandler handles GET /public-habits/.
func (h *HabitHandler) GetPublicHabitsHandler(w http.ResponseWriter, r *http.Request) {
	page, ok := pageNumber(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailInvalidPage)
		return
	}

	habits, total, err := h.Service.ListPublicHabits(r.Context(), page)
	h.writePage(w, r, page, habits, total, err)
}

func (h *HabitHandler) writePage(w http.ResponseWriter, r *http.Request, page int, habits []models.Habit, total int64, err error) {
	if errors.Is(err, services.ErrInvalidPage) {
		writeDetail(w, http.StatusNotFound, detailInvalidPage)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newHabitPage(r, page, h.Service.PageSize(), total, habits))
}

// GetHabitHandler handles GET /habits/{id}/.
func (h *HabitHandler) GetHabitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	habit, err := h.Service.GetHabit(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeHabitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

// UpdateHabitHandler handles PUT and PATCH /habits/{id}/.
func (h *HabitHandler) UpdateHabitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	// Unknown ids are 404 before the body is looked at.
	if _, err := h.Service.GetHabit(r.Context(), userID, id); err != nil {
		writeHabitError(w, err)
		return
	}

	var in models.HabitInput
	if !decodeJSON(w, r, &in) {
		return
	}

	habit, err := h.Service.UpdateHabit(r.Context(), userID, id, in, r.Method == http.MethodPatch)
	if err != nil {
		writeHabitError(w, err)
		return
	}

	logrus.WithField("habit_id", id).Info("Habit updated successfully")
	writeJSON(w, http.StatusOK, habit)
}

// DeleteHabitHandler handles DELETE /habits/{id}/.
func (h *HabitHandler) DeleteHabitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteHabit(r.Context(), userID, id); err != nil {
		writeHabitError(w, err)
		return
	}

	logrus.WithField("habit_id", id).Info("Habit deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

func writeHabitError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrHabitNotFound) {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	writeError(w, err)
}

// currentUserID resolves the authenticated user, answering 401 when the
// request carries no usable identity.
func currentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized access attempt")
		writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Warn("Token carries an invalid user ID")
		writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
		return primitive.NilObjectID, false
	}
	return userID, true
}
