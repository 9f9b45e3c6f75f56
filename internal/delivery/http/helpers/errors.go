package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"openmic/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorTable is checked in order; the first match wins.
var errorTable = []errorMapping{
	{domain.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrDurationTooLong, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrTimeslotOutsideEvent, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrInvalidTimeRange, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrUnknownPermission, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrUnknownConfigKey, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
	{domain.ErrUserInactive, http.StatusForbidden, ErrCodeForbidden},
	{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound},
	{domain.ErrTimeslotsExist, http.StatusConflict, ErrCodeConflict},
	{domain.ErrDuplicateSignup, http.StatusConflict, ErrCodeConflict},
	{domain.ErrTimeslotFull, http.StatusConflict, ErrCodeConflict},
	{domain.ErrEventFull, http.StatusConflict, ErrCodeConflict},
	{domain.ErrTimeslotUnavailable, http.StatusConflict, ErrCodeConflict},
	{domain.ErrSignupsClosed, http.StatusConflict, ErrCodeConflict},
	{domain.ErrDuplicateEmail, http.StatusConflict, ErrCodeConflict},
	{domain.ErrDuplicateRoleName, http.StatusConflict, ErrCodeConflict},
	{domain.ErrConflict, http.StatusConflict, ErrCodeConflict},
	{domain.ErrEventExpired, http.StatusGone, ErrCodeEventExpired},
}

// StatusForError returns the HTTP status and error code for err. Unmapped errors
// are 500 internal_error.
func StatusForError(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// WriteServiceError writes err as a JSON error. Internal errors are logged and
// replaced with a generic message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := StatusForError(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, status, code, "internal server error")
		return
	}
	WriteJSONError(w, status, code, err.Error())
}
