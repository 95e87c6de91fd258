package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and the request ID, then
// returned to the client as a user message with an action and a code taken
// from ingest.MapError.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/tabinspect/internal/ingest"
	"github.com/JonMunkholm/tabinspect/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// statusForFailure maps a load failure kind to an HTTP status.
func statusForFailure(kind ingest.FailureKind) int {
	switch kind {
	case ingest.InvalidFormat:
		return http.StatusBadRequest
	case ingest.NotFound:
		return http.StatusNotFound
	case ingest.EncodingUndetermined, ingest.ParseError:
		return http.StatusUnprocessableEntity
	case ingest.MissingDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped user message with statusCode.
// Load failures pick their own status code.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := ingest.MapError(err)
	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}

	var f *ingest.Failure
	if errors.As(err, &f) {
		statusCode = statusForFailure(f.Kind)
		resp.Kind = f.Kind.String()
		resp.Detail = f.Message
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	writeJSON(w, statusCode, resp)
}

// respondInvalid writes a 400 for a malformed or invalid request body.
func (s *Server) respondInvalid(w http.ResponseWriter, r *http.Request, err error) {
	detail := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fe.Field() + " failed " + fe.Tag()
		}
		detail = strings.Join(fields, "; ")
	}

	logging.FromContext(r.Context()).Warn("invalid request",
		"path", r.URL.Path,
		"error", detail,
	)

	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request",
		Message: "Invalid request",
		Action:  "Check the request body and try again",
		Code:    "REQ001",
		Detail:  detail,
	})
}
