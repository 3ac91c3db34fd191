// Package httputil holds the JSON helpers shared by every HTTP handler:
// response envelopes, domain error translation, and request decoding.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "donorlink/pkg/domain-errors"
)

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders a coded domain error as a JSON envelope. Errors without a
// code, and internal errors, render as a generic 500 message so internals
// never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := "internal error"

	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		if code != dErrors.CodeInternal {
			message = de.Message
		}
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error":   string(code),
		"message": message,
	})
}

// Decode parses the JSON request body into T. On failure it writes a
// bad_request envelope and reports false.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return v, false
	}
	return v, true
}
