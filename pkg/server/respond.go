package server

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/session"
)

type errorBody struct {
	Code  errs.Code `json:"code"`
	Error string    `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the status derived from err's code.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		err = errs.Wrap(errs.ErrCodeNotFound, err, "map session %s not found", routeID(r))
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		err = errs.Wrap(errs.ErrCodeInvalidInput, err, "request body exceeds %d bytes", maxErr.Limit)
	}

	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Error: errs.UserMessage(err)})
}
