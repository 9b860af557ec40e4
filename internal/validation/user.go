package validation

import (
	"regexp"
	"unicode/utf8"

	"github.com/Dias221467/Habit_Tracker/internal/models"
)

const (
	MinPasswordLength = 8
	MaxUsernameLength = 150
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// CheckRegistration validates a registration payload field by field.
// Username uniqueness is checked by the caller against storage.
func CheckRegistration(req models.RegisterRequest) FieldErrors {
	errs := FieldErrors{}

	switch {
	case req.Username == "":
		errs.Set("username", msgNotBlank)
	case utf8.RuneCountInString(req.Username) > MaxUsernameLength:
		errs.Set("username", "Ensure this field has no more than 150 characters.")
	case !usernameRegex.MatchString(req.Username):
		errs.Set("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	switch {
	case req.Password == "":
		errs.Set("password", msgNotBlank)
	case utf8.RuneCountInString(req.Password) < MinPasswordLength:
		errs.Set("password", "Ensure this field has at least 8 characters.")
	}

	if req.Email != "" && !emailRegex.MatchString(req.Email) {
		errs.Set("email", "Enter a valid email address.")
	}

	return errs
}
