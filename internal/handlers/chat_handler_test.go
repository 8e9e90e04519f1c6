package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"porchlight/internal/services"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// With no Firestore client the chat feature must degrade to 503, never panic.
func TestChatHistoryWithoutFirestore(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(services.NewChatStore(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("chatID")
	c.SetParamValues("chat-1")

	if err := h.History(c); err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message in the response")
	}
}

func TestChatHistoryMissingChatID(t *testing.T) {
	e := newTestEcho()
	h := NewChatHandler(services.NewChatStore(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.History(c); err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMessageSentValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing chat id", body: `{"text":"hello"}`},
		{name: "missing text", body: `{"chat_id":"chat-1"}`},
		{name: "not json", body: `chat-1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			h := NewChatHandler(services.NewChatStore(nil), nil)

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := h.MessageSent(c); err != nil {
				t.Fatalf("MessageSent() error = %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
