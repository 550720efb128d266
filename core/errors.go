package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorAuthenticationFailed = "KADUU_AUTHENTICATION_FAILED"
	ErrorValidationFailed     = "KADUU_VALIDATION_FAILED"
	ErrorAPIRequestFailed     = "KADUU_API_REQUEST_FAILED"
	ErrorEmptyResponse        = "KADUU_EMPTY_RESPONSE"
	ErrorInternal             = "KADUU_INTERNAL_ERROR"
)

const authenticationFailedPrefix = "Authentication failed: "

// NewAuthenticationError reports a failed credential exchange. The message is
// always prefixed so callers can surface it verbatim.
func NewAuthenticationError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(authenticationMessage(message), goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorAuthenticationFailed).
		WithSeverity(goerrors.SeverityError)
	if len(metadata) > 0 {
		err = err.WithMetadata(RedactSensitiveMap(metadata))
	}
	return err
}

func WrapAuthenticationError(source error, message string, metadata map[string]any) *goerrors.Error {
	if source == nil {
		return NewAuthenticationError(message, metadata)
	}
	err := goerrors.Wrap(source, goerrors.CategoryAuth, authenticationMessage(message)).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorAuthenticationFailed).
		WithSeverity(goerrors.SeverityError)
	if len(metadata) > 0 {
		err = err.WithMetadata(RedactSensitiveMap(metadata))
	}
	return err
}

func NewValidationError(field string, message string) *goerrors.Error {
	return goerrors.NewValidation(message, goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorValidationFailed).
		WithSeverity(goerrors.SeverityError)
}

// NewAPIError wraps a failed leak API exchange. statusCode is zero when the
// request never produced a response.
func NewAPIError(source error, message string, statusCode int, metadata map[string]any) *goerrors.Error {
	code := statusCode
	if code < http.StatusBadRequest {
		code = http.StatusBadGateway
	}
	var err *goerrors.Error
	if source != nil {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	} else {
		err = goerrors.New(message, goerrors.CategoryExternal)
	}
	err = err.WithCode(code).WithTextCode(ErrorAPIRequestFailed)
	fields := cloneFields(metadata)
	if statusCode > 0 {
		fields["status_code"] = statusCode
	}
	if len(fields) > 0 {
		err = err.WithMetadata(RedactSensitiveMap(fields))
	}
	return err
}

func NewEmptyResponseError(metadata map[string]any) *goerrors.Error {
	err := goerrors.New("No valid response data received", goerrors.CategoryOperation).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorEmptyResponse)
	if len(metadata) > 0 {
		err = err.WithMetadata(RedactSensitiveMap(metadata))
	}
	return err
}

func NewInternalError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorInternal)
}

func IsAuthenticationError(err error) bool {
	return hasTextCode(err, ErrorAuthenticationFailed)
}

func IsValidationError(err error) bool {
	return hasTextCode(err, ErrorValidationFailed)
}

func IsAPIError(err error) bool {
	return hasTextCode(err, ErrorAPIRequestFailed)
}

func IsEmptyResponseError(err error) bool {
	return hasTextCode(err, ErrorEmptyResponse)
}

func hasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCode
}

// MapError converts any error into the rich envelope. Errors that already
// carry one keep their category and text code.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureErrorEnvelope(rich)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "authentication"), strings.Contains(msg, "access_token"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryAuth).WithTextCode(ErrorAuthenticationFailed))
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must be"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(ErrorValidationFailed))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

// ErrorDescription returns the human readable description used in error
// records. Validation errors list their field messages.
func ErrorDescription(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return err.Error()
	}
	fields := rich.AllValidationErrors()
	if len(fields) == 0 {
		return rich.Error()
	}
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field.Field) == "" {
			parts = append(parts, field.Message)
			continue
		}
		parts = append(parts, field.Field+": "+field.Message)
	}
	return strings.Join(parts, "; ")
}

// ErrorMessage returns the short message of err without the wrapped cause.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && strings.TrimSpace(rich.Message) != "" {
		return rich.Message
	}
	return err.Error()
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = errorHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorValidationFailed
	case goerrors.CategoryAuth:
		return ErrorAuthenticationFailed
	case goerrors.CategoryExternal:
		return ErrorAPIRequestFailed
	default:
		return ErrorInternal
	}
}

func errorHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func authenticationMessage(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "unknown error"
	}
	if strings.HasPrefix(message, authenticationFailedPrefix) {
		return message
	}
	return authenticationFailedPrefix + message
}

// annotateError merges fields into the error metadata, mapping foreign errors
// into the envelope first.
func annotateError(err error, fields map[string]any) error {
	if err == nil {
		return nil
	}
	rich := MapError(err)
	if rich == nil || len(fields) == 0 {
		return rich
	}
	merged := cloneFields(rich.Metadata)
	for key, value := range RedactSensitiveMap(fields) {
		if _, exists := merged[key]; exists {
			continue
		}
		merged[key] = value
	}
	return rich.WithMetadata(merged)
}
