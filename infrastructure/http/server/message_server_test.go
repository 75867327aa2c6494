package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-direct/auth"
	"chat-direct/domain"
	"chat-direct/errors"
	"chat-direct/repositories"
	"chat-direct/runtime"
	"chat-direct/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	sidebar  []domain.SidebarEntry
	messages []domain.Message
	sent     []domain.Message
	sendErr  error
}

func (f *fakeChatService) SendMessage(ctx context.Context, senderID, receiverID, text, inlineImage string) (domain.Message, error) {
	if f.sendErr != nil {
		return domain.Message{}, f.sendErr
	}
	message, err := domain.NewMessage(senderID, receiverID, text, inlineImage)
	if err != nil {
		return domain.Message{}, err
	}
	f.sent = append(f.sent, message)
	return message, nil
}

func (f *fakeChatService) GetConversation(userA, userB string) ([]domain.Message, error) {
	return f.messages, nil
}

func (f *fakeChatService) Sidebar(viewerID string) ([]domain.SidebarEntry, error) {
	return f.sidebar, nil
}

func (f *fakeChatService) Search(ctx context.Context, userA, userB, terms string, limit int) ([]repositories.SearchHit, error) {
	return nil, nil
}

type fakeAuthService struct{}

func (f fakeAuthService) Login(email, password string) (services.Token, string, error) {
	return "", "", errors.ErrInvalidCredentials
}

func (f fakeAuthService) Register(email, name, password string) (services.Token, string, error) {
	return "", "", errors.ErrUserAlreadyExists
}

func newTestRouter(t *testing.T, chatService services.IChatService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewRouter(
		NewAuthServer(log, fakeAuthService{}),
		NewMessageServer(log, chatService),
		NewWSServer(log, runtime.NewPresence(), 8),
		t.TempDir(),
	)
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestSidebar_Requires_Token(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t, &fakeChatService{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/messages/users", nil)
	router.ServeHTTP(w, r)

	req.Equal(http.StatusUnauthorized, w.Code)
}

func TestSidebar_Flattens_Entries(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()
	service := &fakeChatService{sidebar: []domain.SidebarEntry{
		{User: domain.User{ID: "u2", Email: "two@example.com", Name: "Two"}, LastMessageAt: now},
		{User: domain.User{ID: "u1", Email: "one@example.com", Name: "One"}, LastMessageAt: now.Add(-time.Hour)},
	}}
	router := newTestRouter(t, service)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/messages/users", nil)
	r.Header.Set("Authorization", bearerFor(t, uuid.NewString()))
	router.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	var body []sidebarResponse
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Len(body, 2)
	req.Equal("u2", body[0].ID)
	req.Equal("two@example.com", body[0].Email)
	req.Equal("u1", body[1].ID)
}

func TestGetConversation_Empty_Is_An_Array(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t, &fakeChatService{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/messages/"+uuid.NewString(), nil)
	r.Header.Set("Authorization", bearerFor(t, uuid.NewString()))
	router.ServeHTTP(w, r)

	// The body must be [] and not null
	req.Equal(http.StatusOK, w.Code)
	req.Equal("[]", strings.TrimSpace(w.Body.String()))
}

func TestSend_Returns_Persisted_Message(t *testing.T) {
	req := require.New(t)
	service := &fakeChatService{}
	router := newTestRouter(t, service)
	senderID := uuid.NewString()
	receiverID := uuid.NewString()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/messages/send/"+receiverID,
		strings.NewReader(`{"text":"hello"}`))
	r.Header.Set("Authorization", bearerFor(t, senderID))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	var message domain.Message
	req.NoError(json.Unmarshal(w.Body.Bytes(), &message))
	req.Equal(senderID, message.SenderID)
	req.Equal(receiverID, message.ReceiverID)
	req.Equal("hello", message.Text)
	req.NotEqual(uuid.Nil, message.ID)
	req.Len(service.sent, 1)
}

func TestSend_Rejects_Forged_Peer_ID(t *testing.T) {
	req := require.New(t)
	service := &fakeChatService{}
	router := newTestRouter(t, service)

	// A peer id embedding the storage key delimiter would land inside
	// another pair's conversation prefix if it ever reached the key layer
	forged := uuid.NewString() + ":" + uuid.NewString() + ":1788216874397454587"

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/messages/send/"+forged,
		strings.NewReader(`{"text":"injected"}`))
	r.Header.Set("Authorization", bearerFor(t, uuid.NewString()))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)

	// Then the request dies at the boundary and nothing is sent
	req.Equal(http.StatusBadRequest, w.Code)
	req.Empty(service.sent)
}

func TestGetConversation_Rejects_Malformed_Peer_ID(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t, &fakeChatService{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/messages/not-a-uuid", nil)
	r.Header.Set("Authorization", bearerFor(t, uuid.NewString()))
	router.ServeHTTP(w, r)

	req.Equal(http.StatusBadRequest, w.Code)
}

func TestSend_Empty_Message_Is_Rejected(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t, &fakeChatService{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/messages/send/"+uuid.NewString(),
		strings.NewReader(`{}`))
	r.Header.Set("Authorization", bearerFor(t, uuid.NewString()))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)

	req.Equal(http.StatusBadRequest, w.Code)
}

func TestSearch_Requires_Query(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t, &fakeChatService{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/messages/"+uuid.NewString()+"/search", nil)
	r.Header.Set("Authorization", bearerFor(t, uuid.NewString()))
	router.ServeHTTP(w, r)

	req.Equal(http.StatusBadRequest, w.Code)
}

func TestRegister_Conflict_Maps_To_409(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t, &fakeChatService{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"a@b.c","password":"ComplexPass123!"}`))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)

	req.Equal(http.StatusConflict, w.Code)
}

func TestLogin_Invalid_Credentials_Map_To_401(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t, &fakeChatService{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"a@b.c","password":"nope"}`))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)

	req.Equal(http.StatusUnauthorized, w.Code)
}
