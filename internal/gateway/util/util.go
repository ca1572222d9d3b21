package util

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"unirecords/internal/apperr"
)

// JSONResponse structure for successful responses.
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// JSONError structure for error responses.
type JSONError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes a success payload wrapped in the standard envelope.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := JSONResponse{Success: true, Data: payload}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

// WriteJSONError writes a standardized error response.
func WriteJSONError(w http.ResponseWriter, status int, kind, message string) {
	log.Printf("HTTP Error %d (%s): %s", status, kind, message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := JSONError{Success: false, Error: kind, Message: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error writing JSON error response: %v", err)
	}
}

// HandleServiceError translates an engine error into the HTTP response the
// caller sees. This is the single mapping point from the error taxonomy to
// status codes.
func HandleServiceError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	message := apperr.MessageOf(err)

	if kind == apperr.KindInternal {
		// Unclassified failures stay opaque to the client.
		log.Printf("Internal error: %v", err)
		message = "internal server error"
	}

	WriteJSONError(w, StatusForKind(kind), kind.String(), message)
}

// StatusForKind returns the HTTP status HandleServiceError would use.
func StatusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ExtractToken extracts the token from the Authorization header
// ("Bearer <token>").
func ExtractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}

// DecodeJSONBody decodes the request body into dst, rejecting unknown
// fields.
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
