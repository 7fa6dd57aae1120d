package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

type fakeOrders struct {
	uid     string
	chatID  string
	message string
	err     error
}

func (f *fakeOrders) result(uid, chatID, message string) (*usecase.OrderResult, error) {
	f.uid, f.chatID, f.message = uid, chatID, message
	if f.err != nil {
		return nil, f.err
	}
	if uid == "" {
		return nil, entity.NewChatError(entity.ErrCodeUnauthenticated, true, usecase.UNAUTHENTICATED_MESSAGE)
	}
	return &usecase.OrderResult{
		Chat:   &entity.OrderChat{ID: "chat-1", UserID: uid},
		Status: entity.ChatStatusProcessing,
	}, nil
}

func (f *fakeOrders) CreateOrder(_ context.Context, uid, message string) (*usecase.OrderResult, error) {
	return f.result(uid, "", message)
}

func (f *fakeOrders) PostMessage(_ context.Context, uid, chatID, message string) (*usecase.OrderResult, error) {
	return f.result(uid, chatID, message)
}

func (f *fakeOrders) CloseOrder(_ context.Context, uid, chatID string) (*usecase.OrderResult, error) {
	return f.result(uid, chatID, "")
}

func (f *fakeOrders) DeleteOrder(_ context.Context, uid, chatID string) error {
	_, err := f.result(uid, chatID, "")
	return err
}

func (f *fakeOrders) GetOrder(_ context.Context, uid, chatID string) (*usecase.OrderView, error) {
	result, err := f.result(uid, chatID, "")
	if err != nil {
		return nil, err
	}
	return &usecase.OrderView{Chat: result.Chat}, nil
}

func setupServer(t *testing.T) (*httptest.Server, *fakeOrders) {
	orders := &fakeOrders{}
	mux := http.NewServeMux()
	NewChatHandler(orders, testSecret, logger.NewFromZap(zaptest.NewLogger(t))).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, orders
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func call(t *testing.T, server *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestChatHandler_CreateOrder(t *testing.T) {
	server, orders := setupServer(t)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})

	resp := call(t, server, http.MethodPost, "/orders", token, `{"message":"Jet to Nice"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "user-1", orders.uid)
	assert.Equal(t, "Jet to Nice", orders.message)

	var result struct {
		Chat struct {
			ID     string `json:"id"`
			UserID string `json:"userId"`
		} `json:"chat"`
		Status entity.ChatStatus `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "chat-1", result.Chat.ID)
	assert.Equal(t, "user-1", result.Chat.UserID)
	assert.Equal(t, entity.ChatStatusProcessing, result.Status)
}

func TestChatHandler_PathRoutes(t *testing.T) {
	server, orders := setupServer(t)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-1"})

	resp := call(t, server, http.MethodPost, "/orders/chat-9/messages", token, `{"message":"Tomorrow"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "chat-9", orders.chatID)
	assert.Equal(t, "Tomorrow", orders.message)

	resp = call(t, server, http.MethodPost, "/orders/chat-8/close", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "chat-8", orders.chatID)

	resp = call(t, server, http.MethodGet, "/orders/chat-7", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "chat-7", orders.chatID)

	resp = call(t, server, http.MethodDelete, "/orders/chat-6", token, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "chat-6", orders.chatID)
}

func TestChatHandler_Authentication(t *testing.T) {
	server, orders := setupServer(t)

	resp := call(t, server, http.MethodPost, "/orders", "", `{"message":"Hi"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, entity.ErrCodeUnauthenticated, decodeError(t, resp).Code)
	assert.Empty(t, orders.uid)

	forged := signToken(t, "other-secret", jwt.MapClaims{"sub": "user-1"})
	resp = call(t, server, http.MethodPost, "/orders", forged, `{"message":"Hi"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	expired := signToken(t, testSecret, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()})
	resp = call(t, server, http.MethodPost, "/orders", expired, `{"message":"Hi"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	anonymous := signToken(t, testSecret, jwt.MapClaims{"name": "nobody"})
	resp = call(t, server, http.MethodPost, "/orders", anonymous, `{"message":"Hi"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"permission", entity.NewChatError(entity.ErrCodePermissionDenied, true, usecase.ACCESS_DENIED_MESSAGE), http.StatusForbidden},
		{"not found", entity.NewChatError(entity.ErrCodeNotFound, true, usecase.CHAT_NOT_FOUND_MESSAGE), http.StatusNotFound},
		{"invalid", entity.NewChatError(entity.ErrCodeInvalidArgument, true, usecase.EMPTY_MESSAGE_MESSAGE), http.StatusBadRequest},
		{"complete", entity.NewChatError(entity.ErrCodeFailedPrecondition, true, usecase.ORDER_COMPLETE_MESSAGE), http.StatusConflict},
		{"plain error", errors.New("mongo down"), http.StatusInternalServerError},
	}
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-1"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, orders := setupServer(t)
			orders.err = tt.err

			resp := call(t, server, http.MethodPost, "/orders/chat-1/messages", token, `{"message":"Hi"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestChatHandler_MalformedBody(t *testing.T) {
	server, _ := setupServer(t)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-1"})

	resp := call(t, server, http.MethodPost, "/orders", token, `{"message":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, entity.ErrCodeInvalidArgument, body.Code)
	assert.Equal(t, "malformed request body", body.Message)
}
