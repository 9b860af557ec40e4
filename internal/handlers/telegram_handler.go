package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Habit_Tracker/internal/services"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// TelegramHandler receives Bot API webhook updates.
type TelegramHandler struct {
	Service *services.TelegramService
	Secret  string
}

func NewTelegramHandler(telegramService *services.TelegramService, secret string) *TelegramHandler {
	return &TelegramHandler{Service: telegramService, Secret: secret}
}

// WebhookHandler handles POST /users/telegram/webhook/. Telegram retries
// anything but a 2xx, so every update that passed the secret check is
// acknowledged with 200.
func (h *TelegramHandler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	if h.Secret != "" {
		got := r.Header.Get(telegramSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
			logrus.Warn("Telegram webhook called with a wrong secret token")
			writeDetail(w, http.StatusUnauthorized, "Invalid secret token.")
			return
		}
	}

	defer r.Body.Close()
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logrus.WithError(err).Warn("Malformed Telegram update ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.Service.HandleUpdate(r.Context(), update); err != nil {
		logrus.WithError(err).WithField("update_id", update.UpdateID).Error("Failed to handle Telegram update")
	}
	w.WriteHeader(http.StatusOK)
}
