// Package apperror defines the typed failures surfaced by the cache, the
// fetch coordinator and the computation engines.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNetwork           Kind = "NETWORK_ERROR"
	KindTimeout           Kind = "TIMEOUT"
	KindInsufficientData  Kind = "INSUFFICIENT_DATA"
	KindUnknownKey        Kind = "UNKNOWN_KEY"
	KindInvalidParameters Kind = "INVALID_PARAMETERS"
	KindLockFailure       Kind = "LOCK_FAILURE"
	KindInternal          Kind = "INTERNAL"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrNetwork           = &Error{Kind: KindNetwork, Message: "upstream request failed"}
	ErrTimeout           = &Error{Kind: KindTimeout, Message: "fetch timed out"}
	ErrInsufficientData  = &Error{Kind: KindInsufficientData, Message: "insufficient data"}
	ErrUnknownKey        = &Error{Kind: KindUnknownKey, Message: "unknown series key"}
	ErrInvalidParameters = &Error{Kind: KindInvalidParameters, Message: "invalid parameters"}
	ErrLockFailure       = &Error{Kind: KindLockFailure, Message: "failed to acquire lock"}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps a kind to the HTTP status used by the command surface.
func Status(kind Kind) int {
	switch kind {
	case KindUnknownKey:
		return http.StatusNotFound
	case KindInvalidParameters:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindNetwork:
		return http.StatusBadGateway
	case KindInsufficientData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse : err 를 JSON 응답 본문으로 변환
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Code: string(KindOf(err)), Message: err.Error()}
}

func NewInternalServerError() ErrorResponse {
	return ErrorResponse{Code: string(KindInternal), Message: "Internal Server Error"}
}
