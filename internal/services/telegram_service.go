package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/Habit_Tracker/internal/repository"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	startCommand = "/start"
	greeting     = "Привет! Я буду напоминать тебе о твоих привычках."
)

// TelegramService links chats to accounts from incoming bot updates.
type TelegramService struct {
	users  UserStore
	sender MessageSender
}

func NewTelegramService(users UserStore, sender MessageSender) *TelegramService {
	return &TelegramService{users: users, sender: sender}
}

// HandleUpdate links the sender's chat to the account whose username matches
// the Telegram username and answers /start. A sender without a username is
// not linked but still greeted. A username with no account is ignored.
func (s *TelegramService) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil || update.Message.Chat == nil || update.Message.Chat.ID == 0 {
		return nil
	}
	chat := update.Message.Chat
	log := logrus.WithFields(logrus.Fields{
		"update_id": update.UpdateID,
		"chat_id":   chat.ID,
	})

	if chat.UserName != "" {
		user, err := s.users.GetUserByUsername(ctx, chat.UserName)
		if errors.Is(err, repository.ErrNotFound) {
			log.WithField("username", chat.UserName).Info("No account for Telegram username")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up user: %w", err)
		}

		if user.TelegramChatID == nil || *user.TelegramChatID != chat.ID {
			if err := s.users.SetTelegramChatID(ctx, user.ID, chat.ID); err != nil {
				return fmt.Errorf("failed to link telegram chat: %w", err)
			}
			log.WithField("user_id", user.ID.Hex()).Info("Telegram chat linked")
		}
	}

	if strings.TrimSpace(update.Message.Text) == startCommand {
		if err := s.sender.SendMessage(ctx, chat.ID, greeting); err != nil {
			return fmt.Errorf("failed to send greeting: %w", err)
		}
	}
	return nil
}
