package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/garnizeh/jobboard/internal/catalog"
	"github.com/garnizeh/jobboard/internal/schema"
	"github.com/garnizeh/jobboard/internal/tracker"
	"github.com/garnizeh/jobboard/internal/wizard"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Error  string                   `json:"error"`
	Fields []wizard.ValidationError `json:"fields,omitempty"`
}

// decode reads a JSON body into v and runs struct validation on it.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, tracker.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, tracker.ErrInterestNotFound),
		errors.Is(err, catalog.ErrJobNotFound),
		errors.Is(err, repository.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrInvalidStatus),
		errors.Is(err, tracker.ErrInvalidTransition),
		errors.Is(err, tracker.ErrInvalidPriority),
		errors.Is(err, tracker.ErrEmptyComment),
		errors.Is(err, tracker.ErrMissingJobID),
		errors.Is(err, catalog.ErrEmptyLabel),
		errors.Is(err, schema.ErrInvalidDocument),
		errors.Is(err, wizard.ErrUnknownStep),
		errors.Is(err, wizard.ErrDraftInvalid),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.String("path", r.URL.Path), slog.Any("err", err))
		msg = "internal error"
	}
	writeJSON(w, errorResponse{Error: msg}, status)
}
