package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apierr "github.com/matzehuels/astview/pkg/errors"
	"github.com/matzehuels/astview/pkg/render"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/tree"
	"github.com/matzehuels/astview/pkg/view"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code    apierr.Code `json:"code"`
	Message string      `json:"message"`
}

// Classify maps an error from the view, source or render packages to a
// coded error. Errors that already carry a code are returned unchanged.
func Classify(err error) *apierr.Error {
	var coded *apierr.Error
	if errors.As(err, &coded) {
		return coded
	}
	var mirror *tree.MirrorError
	switch {
	case errors.Is(err, view.ErrNotFound):
		return apierr.Wrap(apierr.ErrCodeViewNotFound, err, "view not found")
	case errors.Is(err, tree.ErrNotFound):
		return apierr.Wrap(apierr.ErrCodeNodeNotFound, err, "node not found")
	case errors.As(err, &mirror), errors.Is(err, source.ErrSyntax):
		return apierr.Wrap(apierr.ErrCodeMirrorFailed, err, "cannot build tree")
	case errors.Is(err, source.ErrNoContent), errors.Is(err, view.ErrNoContent):
		return apierr.Wrap(apierr.ErrCodeNoContent, err, "source has no content")
	case errors.Is(err, source.ErrUnsupportedLanguage):
		return apierr.Wrap(apierr.ErrCodeUnsupportedLanguage, err, "unsupported language")
	case errors.Is(err, render.ErrUnknownFormat):
		return apierr.Wrap(apierr.ErrCodeInvalidFormat, err, "invalid format")
	case errors.Is(err, view.ErrClosed):
		return apierr.Wrap(apierr.ErrCodeViewNotFound, err, "view closed")
	}
	return apierr.Wrap(apierr.ErrCodeInternal, err, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := Classify(err)
	status := e.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", e.Code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: e.Code, Message: apierr.UserMessage(e)})
}
