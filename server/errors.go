package server

import (
	"errors"
	"net/http"

	"icon_studio/errclass"
)

// statusFor maps an error class to the HTTP status it is served with.
func statusFor(e *errclass.Error) int {
	switch {
	case errors.Is(e, errclass.ErrInvalidRequest), errors.Is(e, errclass.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(e, errclass.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(e, errclass.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(e, errclass.ErrLoadFailure), errors.Is(e, errclass.ErrSurfaceUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(e, errclass.ErrGenerationFailure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError serves err as {"code","message","details"}. Internal errors are
// logged with their cause and served without it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := errclass.As(err)
	status := statusFor(e)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		e = errclass.ErrInternal
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", e.Code, "details", e.Details)
	}
	writeJSONStatus(w, status, e)
}

func errNotFoundRoute(path string) error {
	return errclass.ErrNotFound.WithDetailsf("no route for %s", path)
}
