package handlers

import (
	"errors"
	"net/http"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/internal/services"
	"github.com/sirupsen/logrus"
)

// UserHandler handles registration and token endpoints.
type UserHandler struct {
	Service *services.UserService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{Service: userService}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// RegisterUserHandler handles POST /users/register/.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithField("user_id", user.ID.Hex()).Info("User registered")
	writeJSON(w, http.StatusCreated, user)
}

// ObtainTokenHandler handles POST /users/token/.
func (h *UserHandler) ObtainTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	missing := map[string][]string{}
	if req.Username == "" {
		missing["username"] = []string{"This field is required."}
	}
	if req.Password == "" {
		missing["password"] = []string{"This field is required."}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, missing)
		return
	}

	pair, err := h.Service.ObtainTokens(r.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeDetail(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// RefreshTokenHandler handles POST /users/token/refresh/.
func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
		return
	}

	access, err := h.Service.RefreshAccessToken(r.Context(), req.Refresh)
	if errors.Is(err, services.ErrInvalidToken) {
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}
