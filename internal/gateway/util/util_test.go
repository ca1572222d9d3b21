package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"unirecords/internal/apperr"
)

func TestStatusForKind(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindNotFound:     http.StatusNotFound,
		apperr.KindForbidden:    http.StatusForbidden,
		apperr.KindValidation:   http.StatusBadRequest,
		apperr.KindInvalidState: http.StatusConflict,
		apperr.KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := StatusForKind(kind); got != want {
			t.Errorf("StatusForKind(%v) = %d, want %d", kind, got, want)
		}
	}
}

func TestHandleServiceError(t *testing.T) {
	t.Run("ClassifiedErrorKeepsMessage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleServiceError(rec, apperr.NotFound("student not found: a@b.c"))

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
		var body JSONError
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body.Success || body.Error != "not_found" || body.Message != "student not found: a@b.c" {
			t.Errorf("Unexpected body: %+v", body)
		}
	})

	t.Run("InternalErrorIsOpaque", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleServiceError(rec, errors.New("pq: connection refused on host db-internal-01"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", rec.Code)
		}
		var body JSONError
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body.Message != "internal server error" {
			t.Errorf("Internal details leaked: %q", body.Message)
		}
	})
}

func TestExtractToken(t *testing.T) {
	newRequest := func(header string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	t.Run("ValidBearer", func(t *testing.T) {
		token, err := ExtractToken(newRequest("Bearer abc.def.ghi"))
		if err != nil {
			t.Fatalf("ExtractToken failed: %v", err)
		}
		if token != "abc.def.ghi" {
			t.Errorf("Expected token, got %q", token)
		}
	})

	t.Run("CaseInsensitiveScheme", func(t *testing.T) {
		token, err := ExtractToken(newRequest("bearer abc"))
		if err != nil {
			t.Fatalf("ExtractToken failed: %v", err)
		}
		if token != "abc" {
			t.Errorf("Expected token, got %q", token)
		}
	})

	t.Run("MissingHeader", func(t *testing.T) {
		if _, err := ExtractToken(newRequest("")); err == nil {
			t.Error("Expected error for missing header")
		}
	})

	t.Run("WrongScheme", func(t *testing.T) {
		if _, err := ExtractToken(newRequest("Basic dXNlcjpwYXNz")); err == nil {
			t.Error("Expected error for non-bearer scheme")
		}
	})
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("RejectsUnknownFields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":true}`))
		var p payload
		if err := DecodeJSONBody(r, &p); err == nil {
			t.Error("Expected error for unknown field")
		}
	})

	t.Run("DecodesValidBody", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
		var p payload
		if err := DecodeJSONBody(r, &p); err != nil {
			t.Fatalf("DecodeJSONBody failed: %v", err)
		}
		if p.Name != "x" {
			t.Errorf("Expected name x, got %q", p.Name)
		}
	})
}

func TestWriteJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}
	var body JSONResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if !body.Success {
		t.Error("Expected success envelope")
	}
}
