package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/calisthenics-hub/api/apperrors"
)

// MessageResponse is the acknowledgement body returned by the catalogue
// endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a 201 Created response
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteMessage writes {"message": message} with the given status code
func WriteMessage(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, MessageResponse{Message: message})
}

// DecodeJSON decodes the request body into dst and validates it. Failures
// are returned as AppErrors: VALIDATION_ERROR for malformed or invalid
// input and PAYLOAD_TOO_LARGE when the body limit was hit.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.Validation("Request body is required", nil)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.PayloadTooLarge(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return apperrors.Validation("Request body is required", nil)
		case errors.As(err, &syntaxErr):
			return apperrors.Validation("Malformed JSON", map[string]interface{}{
				"offset": syntaxErr.Offset,
			})
		case errors.As(err, &typeErr):
			return apperrors.Validation("Invalid field type", map[string]interface{}{
				typeErr.Field: fmt.Sprintf("must be %s", typeErr.Type),
			})
		default:
			return apperrors.Validation("Invalid request body", map[string]interface{}{
				"body": err.Error(),
			})
		}
	}

	return ValidateStruct(dst)
}
