package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/internal/repository"
	"github.com/Dias221467/Habit_Tracker/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret        = "handler-secret"
	testWebhookSecret = "hook-secret"
)

type stubSender struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (s *stubSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = map[int64][]string{}
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

type testServer struct {
	handler http.Handler
	users   *repository.MemoryUserRepository
	sender  *stubSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	habits := repository.NewMemoryHabitRepository()
	users := repository.NewMemoryUserRepository()
	sender := &stubSender{}

	habitService := services.NewHabitService(habits, 2)
	userService := services.NewUserService(users, services.TokenSettings{
		Secret:     testSecret,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	telegramService := services.NewTelegramService(users, sender)

	router := NewRouter(
		NewHabitHandler(habitService),
		NewUserHandler(userService),
		NewTelegramHandler(telegramService, testWebhookSecret),
		testSecret,
	)
	return &testServer{handler: router, users: users, sender: sender}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// login registers username and returns its access token.
func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "password123"}

	rec := s.do(t, http.MethodPost, "/users/register/", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/users/token/", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pair models.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair.Access
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const usefulHabit = `{"place":"park","time":"07:30","action":"run","time_to_complete":60}`

func TestHabitRoutes_RequireAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/habits/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/public-habits/", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHabitRoutes_CRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	rec := s.do(t, http.MethodPost, "/habits/", token, usefulHabit)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Habit](t, rec)
	assert.Equal(t, 1, created.Periodicity)
	path := "/habits/" + created.ID.Hex() + "/"

	rec = s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run", decode[models.Habit](t, rec).Action)

	rec = s.do(t, http.MethodPatch, path, token, `{"periodicity":"3"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, decode[models.Habit](t, rec).Periodicity)

	rec = s.do(t, http.MethodPut, path, token, `{"action":"walk"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode[map[string][]string](t, rec)
	assert.Contains(t, errs, "place")

	rec = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHabitRoutes_ValidationErrorBody(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	rec := s.do(t, http.MethodPost, "/habits/", token,
		`{"place":"p","time":"07:30","action":"a","time_to_complete":121,"periodicity":8}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"Время на выполнение привычки не может превышать 120 секунд."}, errs["time_to_complete"])
	assert.Equal(t, []string{"Нельзя выполнять привычку реже, чем 1 раз в 7 дней."}, errs["periodicity"])

	rec = s.do(t, http.MethodPost, "/habits/", token, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHabitRoutes_WrongTypeIsFieldError(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	rec := s.do(t, http.MethodPost, "/habits/", token,
		`{"place":"p","time":"07:30","action":"a","time_to_complete":60,"is_pleasant":"maybe"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decode[map[string][]string](t, rec)
	assert.Equal(t, map[string][]string{"is_pleasant": {"Must be a valid boolean."}}, errs)
}

func TestTelegramWebhook_StartWithoutUsername(t *testing.T) {
	s := newTestServer(t)
	body := `{"update_id":3,"message":{"message_id":1,"text":"/start","chat":{"id":88,"type":"private"}}}`

	req := httptest.NewRequest(http.MethodPost, "/users/telegram/webhook/", bytes.NewBufferString(body))
	req.Header.Set(telegramSecretHeader, testWebhookSecret)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.sender.sent[88], 1)
}

func TestHabitRoutes_OwnerIsolation(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")

	rec := s.do(t, http.MethodPost, "/habits/", alice, `{"place":"p","time":"07:30","action":"a","time_to_complete":60,"is_public":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/habits/" + decode[models.Habit](t, rec).ID.Hex() + "/"

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, path, bob, `{"action":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, bob, nil).Code)

	rec = s.do(t, http.MethodGet, "/habits/", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[models.HabitPage](t, rec).Count)

	rec = s.do(t, http.MethodGet, "/public-habits/", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[models.HabitPage](t, rec).Count)
}

func TestHabitRoutes_Pagination(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/habits/", token, usefulHabit)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/habits/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[models.HabitPage](t, rec)
	assert.Equal(t, int64(3), first.Count)
	assert.Len(t, first.Results, 2)
	require.NotNil(t, first.Next)
	assert.Equal(t, "http://example.com/habits/?page=2", *first.Next)
	assert.Nil(t, first.Previous)

	rec = s.do(t, http.MethodGet, "/habits/?page=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[models.HabitPage](t, rec)
	assert.Len(t, second.Results, 1)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Previous)
	assert.Equal(t, "http://example.com/habits/", *second.Previous)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/habits/?page=3", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/habits/?page=abc", token, nil).Code)
}

func TestUserRoutes_Tokens(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]string{"username": "alice", "password": "password123"}

	rec := s.do(t, http.MethodPost, "/users/register/", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")

	rec = s.do(t, http.MethodPost, "/users/register/", "", creds)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string][]string](t, rec), "username")

	rec = s.do(t, http.MethodPost, "/users/token/", "", map[string]string{"username": "alice", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec), "detail")

	rec = s.do(t, http.MethodPost, "/users/token/", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decode[models.TokenPair](t, rec)

	rec = s.do(t, http.MethodPost, "/users/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["access"])

	rec = s.do(t, http.MethodPost, "/users/token/refresh/", "", map[string]string{"refresh": pair.Access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A refresh token is not accepted as an access token.
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/habits/", pair.Refresh, nil).Code)
}

func TestTelegramWebhook(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "alice")
	body := `{"update_id":1,"message":{"message_id":1,"text":"/start","chat":{"id":77,"username":"alice"}}}`

	req := httptest.NewRequest(http.MethodPost, "/users/telegram/webhook/", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, payload := range []string{body, `{"update_id":2}`, `not json`} {
		req = httptest.NewRequest(http.MethodPost, "/users/telegram/webhook/", bytes.NewBufferString(payload))
		req.Header.Set(telegramSecretHeader, testWebhookSecret)
		rec = httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, payload)
	}

	recipients, err := s.users.GetTelegramRecipients(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipients, 1)
	assert.Len(t, s.sender.sent[77], 1)
}
