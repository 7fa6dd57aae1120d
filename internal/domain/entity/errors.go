package entity

import (
	"errors"
	"fmt"
)

// ChatErrorCode classifies boundary faults
type ChatErrorCode string

const (
	ErrCodeUnauthenticated    ChatErrorCode = "unauthenticated"
	ErrCodePermissionDenied   ChatErrorCode = "permission-denied"
	ErrCodeNotFound           ChatErrorCode = "not-found"
	ErrCodeInvalidArgument    ChatErrorCode = "invalid-argument"
	ErrCodeFailedPrecondition ChatErrorCode = "failed-precondition"
	ErrCodeUnimplemented      ChatErrorCode = "unimplemented"
	ErrCodeInternal           ChatErrorCode = "internal"
)

// ChatError is a fault that aborts the turn or the boundary call.
// Permanent faults must not be retried by the delivery layer.
type ChatError struct {
	Code      ChatErrorCode
	Permanent bool
	Message   string
	Err       error
}

// NewChatError creates a chat fault
func NewChatError(code ChatErrorCode, permanent bool, message string) *ChatError {
	return &ChatError{Code: code, Permanent: permanent, Message: message}
}

// WrapChatError creates a chat fault around a cause
func WrapChatError(code ChatErrorCode, permanent bool, message string, err error) *ChatError {
	return &ChatError{Code: code, Permanent: permanent, Message: message, Err: err}
}

func (e *ChatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

// AsChatError finds a chat fault in the error chain
func AsChatError(err error) (*ChatError, bool) {
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr, true
	}
	return nil, false
}

// HasCode reports whether err is a chat fault with code
func HasCode(err error, code ChatErrorCode) bool {
	chatErr, ok := AsChatError(err)
	return ok && chatErr.Code == code
}

// IsPermanent reports whether err is a chat fault marked non-retryable
func IsPermanent(err error) bool {
	chatErr, ok := AsChatError(err)
	return ok && chatErr.Permanent
}
