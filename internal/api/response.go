package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/erazemk/izposoja/internal/cover"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = validator.New()

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes the request body into target and validates it.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.New(fieldMessage(fe))
		}
		return err
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " required"
	case "gt", "gte":
		return fe.Field() + " must be greater than " + fe.Param()
	case "lte":
		return fe.Field() + " must be at most " + fe.Param()
	case "max":
		return fe.Field() + " too long"
	}
	return fe.Field() + " is invalid"
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeError maps domain errors to status codes. Anything unknown is logged
// and reported as an internal error with msg.
func writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, rental.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rental.ErrInvalidInput):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, rental.ErrExtensionLimitExceeded),
		errors.Is(err, rental.ErrItemCheckedOut),
		errors.Is(err, rental.ErrSweepRunning),
		errors.Is(err, store.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, cover.ErrUnsupportedFormat):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cover.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		slog.Error(msg, "error", err)
		jsonError(w, http.StatusInternalServerError, msg)
	}
}
