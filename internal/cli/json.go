package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
)

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Cause      string `json:"cause,omitempty"`
}

// Machine-readable error codes.
const (
	ErrCodeNetwork       = "NETWORK_ERROR"
	ErrCodeServer        = "SERVER_ERROR"
	ErrCodeDataShape     = "BAD_PAYLOAD"
	ErrCodeConfigInvalid = "CONFIG_INVALID"
	ErrCodeNotLoggedIn   = "NOT_LOGGED_IN"
	ErrCodeUnknown       = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with the code mapped from
// the structured error, if any.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}
	code := errors.CodeOf(err)
	if code == "" {
		return &JSONError{Code: ErrCodeUnknown, Message: err.Error()}
	}

	out := &JSONError{Code: mapErrorCode(code), Message: errors.MessageOf(err)}
	var kErr *errors.Error
	if stderrors.As(err, &kErr) {
		out.Suggestion = kErr.Suggestion
		if kErr.Cause != nil {
			out.Cause = kErr.Cause.Error()
		}
	}
	return out
}

func mapErrorCode(internal string) string {
	switch internal {
	case errors.ErrNetwork:
		return ErrCodeNetwork
	case errors.ErrApplication:
		return ErrCodeServer
	case errors.ErrDataShape:
		return ErrCodeDataShape
	case errors.ErrConfig:
		return ErrCodeConfigInvalid
	case errors.ErrAuth:
		return ErrCodeNotLoggedIn
	}
	return ErrCodeUnknown
}
