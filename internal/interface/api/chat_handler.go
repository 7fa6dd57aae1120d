package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// OrderOperations are the client facing chat operations
type OrderOperations interface {
	CreateOrder(ctx context.Context, uid, message string) (*usecase.OrderResult, error)
	PostMessage(ctx context.Context, uid, chatID, message string) (*usecase.OrderResult, error)
	CloseOrder(ctx context.Context, uid, chatID string) (*usecase.OrderResult, error)
	DeleteOrder(ctx context.Context, uid, chatID string) error
	GetOrder(ctx context.Context, uid, chatID string) (*usecase.OrderView, error)
}

type uidKey struct{}

// ChatHandler exposes order chats over HTTP
type ChatHandler struct {
	orders    OrderOperations
	jwtSecret []byte
	log       logger.Logger
}

// NewChatHandler creates the handler. Tokens are HS256 and carry the user id in the subject.
func NewChatHandler(orders OrderOperations, jwtSecret string, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		orders:    orders,
		jwtSecret: []byte(jwtSecret),
		log:       log.With("component", "api"),
	}
}

type messageRequest struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Code    entity.ChatErrorCode `json:"code"`
	Message string               `json:"message"`
}

// Register mounts the chat routes
func (h *ChatHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /orders", h.authenticated(h.createOrder))
	mux.Handle("GET /orders/{id}", h.authenticated(h.getOrder))
	mux.Handle("POST /orders/{id}/messages", h.authenticated(h.postMessage))
	mux.Handle("POST /orders/{id}/close", h.authenticated(h.closeOrder))
	mux.Handle("DELETE /orders/{id}", h.authenticated(h.deleteOrder))
}

func (h *ChatHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if !h.decode(w, r, &body) {
		return
	}
	result, err := h.orders.CreateOrder(r.Context(), uidFrom(r), body.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *ChatHandler) postMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if !h.decode(w, r, &body) {
		return
	}
	result, err := h.orders.PostMessage(r.Context(), uidFrom(r), r.PathValue("id"), body.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

func (h *ChatHandler) closeOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.CloseOrder(r.Context(), uidFrom(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ChatHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteOrder(r.Context(), uidFrom(r), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.orders.GetOrder(r.Context(), uidFrom(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// authenticated resolves the bearer token into a user id. A missing token leaves the id
// empty and the operation itself reports the call as unauthenticated.
func (h *ChatHandler) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next(w, r)
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			h.writeError(w, entity.NewChatError(entity.ErrCodeUnauthenticated, true, "invalid authorization header"))
			return
		}

		uid, err := h.subject(tokenStr)
		if err != nil {
			h.log.Debug("JWT validation failed", "error", err)
			h.writeError(w, entity.NewChatError(entity.ErrCodeUnauthenticated, true, "invalid or expired token"))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), uidKey{}, uid)))
	})
}

func (h *ChatHandler) subject(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		return h.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

func uidFrom(r *http.Request) string {
	uid, _ := r.Context().Value(uidKey{}).(string)
	return uid
}

func (h *ChatHandler) decode(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		h.writeError(w, entity.WrapChatError(entity.ErrCodeInvalidArgument, true, "malformed request body", err))
		return false
	}
	return true
}

func (h *ChatHandler) writeError(w http.ResponseWriter, err error) {
	chatErr, ok := entity.AsChatError(err)
	if !ok {
		chatErr = entity.WrapChatError(entity.ErrCodeInternal, false, "internal error", err)
	}
	status := statusOf(chatErr.Code)
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Code: chatErr.Code, Message: chatErr.Message})
}

func statusOf(code entity.ChatErrorCode) int {
	switch code {
	case entity.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case entity.ErrCodePermissionDenied:
		return http.StatusForbidden
	case entity.ErrCodeNotFound:
		return http.StatusNotFound
	case entity.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case entity.ErrCodeFailedPrecondition:
		return http.StatusConflict
	case entity.ErrCodeUnimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
