package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"apptbook/internal/schedule"
	"apptbook/internal/service/appointments"
	"apptbook/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps the error taxonomy onto status codes: caller
// mistakes are 4xx, anything else is a 500 whose detail stays in the log.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *appointments.ValidationError
	var ierr *schedule.InputError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &ierr):
		writeError(w, http.StatusBadRequest, ierr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "appointment conflicts with an existing one")
	default:
		s.logger.Error("request failed",
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeRejection(w http.ResponseWriter, res schedule.Result) {
	writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
		Valid:  false,
		Reason: string(res.Reason),
	})
}
