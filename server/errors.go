package server

import (
	"errors"
	"net/http"

	"podcast_studio/studio"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string            `json:"kind"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// statusFor maps the studio taxonomy onto HTTP status codes.
func statusFor(e *studio.Error) int {
	switch e.Kind {
	case studio.KindValidation:
		if e.Code == studio.CodeValidationFailed || e.Code == studio.CodeIncompleteAssets {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case studio.KindAuth:
		return http.StatusUnauthorized
	case studio.KindState:
		return http.StatusConflict
	case studio.KindUpstream:
		return http.StatusBadGateway
	case studio.KindConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the JSON error envelope. Causes are never
// exposed; only the user-facing message is sent.
func writeError(w http.ResponseWriter, err error) {
	var serr *studio.Error
	if !errors.As(err, &serr) {
		writeStatusError(w, http.StatusInternalServerError, "Internal", "Something went wrong. Please try again.")
		return
	}
	writeJSON(w, statusFor(serr), errorBody{Error: errorDetail{
		Kind:    string(serr.Kind),
		Code:    serr.Code,
		Message: serr.Message,
		Fields:  serr.Fields,
	}})
}

func writeStatusError(w http.ResponseWriter, status int, code, msg string) {
	kind := "request"
	switch status {
	case http.StatusUnauthorized:
		kind = string(studio.KindAuth)
	case http.StatusServiceUnavailable:
		kind = string(studio.KindConfiguration)
	case http.StatusInternalServerError:
		kind = "internal"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Code: code, Message: msg}})
}
