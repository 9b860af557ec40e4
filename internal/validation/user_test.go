package validation

import (
	"strings"
	"testing"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCheckRegistration(t *testing.T) {
	tests := []struct {
		name       string
		req        models.RegisterRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "strongpass123"},
		},
		{
			name: "email optional",
			req:  models.RegisterRequest{Username: "bob.b+1@x", Password: "strongpass123"},
		},
		{
			name:       "empty username and short password",
			req:        models.RegisterRequest{Password: "123"},
			wantFields: []string{"username", "password"},
		},
		{
			name:       "bad characters in username",
			req:        models.RegisterRequest{Username: "bad name!", Password: "strongpass123"},
			wantFields: []string{"username"},
		},
		{
			name:       "long username",
			req:        models.RegisterRequest{Username: strings.Repeat("a", 151), Password: "strongpass123"},
			wantFields: []string{"username"},
		},
		{
			name:       "invalid email",
			req:        models.RegisterRequest{Username: "carol", Email: "nope", Password: "strongpass123"},
			wantFields: []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := CheckRegistration(tt.req)
			assert.ElementsMatch(t, tt.wantFields, keys(errs))
		})
	}
}
