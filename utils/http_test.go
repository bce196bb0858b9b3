package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calisthenics-hub/api/apperrors"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOKAndCreated(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteOK(w, map[string]string{"result": "success"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":"success"}`, w.Body.String())

	w = httptest.NewRecorder()
	require.NoError(t, WriteCreated(w, map[string]string{"id": "123"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"123"}`, w.Body.String())
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteMessage(w, http.StatusCreated, "Create order"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Create order"}`, w.Body.String())
}

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	newRequest := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}

	t.Run("valid body", func(t *testing.T) {
		var dst loginBody
		err := DecodeJSON(newRequest(`{"email":"a@example.com","password":"pw"}`), &dst)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", dst.Email)
	})

	tests := []struct {
		name    string
		body    string
		code    apperrors.Code
		status  int
		message string
	}{
		{"empty body", "", apperrors.CodeValidation, http.StatusBadRequest, "Request body is required"},
		{"malformed json", `{"email":`, apperrors.CodeValidation, http.StatusBadRequest, "Malformed JSON"},
		{"wrong type", `{"email":42}`, apperrors.CodeValidation, http.StatusBadRequest, "Invalid field type"},
		{"unknown field", `{"email":"a@example.com","password":"pw","admin":true}`, apperrors.CodeValidation, http.StatusBadRequest, "Invalid request body"},
		{"fails validation", `{"email":"nope"}`, apperrors.CodeValidation, http.StatusBadRequest, "Validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst loginBody
			err := DecodeJSON(newRequest(tt.body), &dst)
			require.Error(t, err)

			appErr := apperrors.From(err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	t.Run("body over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := newRequest(`{"email":"a@example.com","password":"a-very-long-password"}`)
		r.Body = http.MaxBytesReader(w, r.Body, 10)

		var dst loginBody
		err := DecodeJSON(r, &dst)
		appErr := apperrors.From(err)
		assert.Equal(t, apperrors.CodePayloadTooLarge, appErr.Code)
		assert.Equal(t, http.StatusRequestEntityTooLarge, appErr.Status)
	})
}
