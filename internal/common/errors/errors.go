package errors

import (
	"fmt"
	"time"
)

// ErrorCode классифицирует ошибки приложения
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	// Lookup failures: fatal for the single request that hit them.
	ErrCodeChannelNotFound ErrorCode = "CHANNEL_NOT_FOUND"
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	ErrCodeDealNotFound    ErrorCode = "DEAL_NOT_FOUND"

	// Benign race: a status-guarded update found the row in a disallowed state.
	ErrCodePreconditionNotMet ErrorCode = "PRECONDITION_NOT_MET"

	// Transient remote failures: degrade, never abort the enclosing workflow.
	ErrCodeTelegramAPI ErrorCode = "TELEGRAM_API_ERROR"
	ErrCodeUserbotAPI  ErrorCode = "USERBOT_API_ERROR"
	ErrCodeMTProtoAPI  ErrorCode = "MTPROTO_API_ERROR"

	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

// AppError представляет типизированную ошибку приложения
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsTransient сообщает, является ли ошибка временным отказом внешнего сервиса
func (e *AppError) IsTransient() bool {
	return e.Code == ErrCodeTelegramAPI ||
		e.Code == ErrCodeUserbotAPI ||
		e.Code == ErrCodeMTProtoAPI
}

func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeChannelNotFound ||
		e.Code == ErrCodeUserNotFound ||
		e.Code == ErrCodeDealNotFound
}

// WithDetail добавляет детальную информацию к ошибке
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf оборачивает существующую ошибку с форматированием
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewChannelNotFoundError создает ошибку "канал не найден"
func NewChannelNotFoundError(username string) *AppError {
	return New(ErrCodeChannelNotFound, fmt.Sprintf("Channel not found: @%s", username)).
		WithDetail("username", username)
}

// NewTelegramAPIError создает ошибку Telegram API
func NewTelegramAPIError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeTelegramAPI, fmt.Sprintf("Telegram API operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewUserbotAPIError создает ошибку сервиса юзербота
func NewUserbotAPIError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeUserbotAPI, fmt.Sprintf("Userbot operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewDatabaseError создает ошибку базы данных
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError приводит ошибку к AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
