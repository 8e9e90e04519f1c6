package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newUnreachableDB returns a gorm handle whose every query fails, so the
// ownership lookup in ownedProperty is guaranteed to reject.
func newUnreachableDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=1 user=none dbname=none sslmode=disable",
	}), &gorm.Config{
		Logger:               gormlogger.Discard,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("failed to build db handle: %v", err)
	}
	return db
}

func decodeSingleErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	// A second envelope in the body means a handler kept going after a
	// rejected access check
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a single JSON object: %v (body %q)", err, rec.Body.String())
	}
	return body
}

func TestUpdateStopsWhenLookupRejects(t *testing.T) {
	e := newTestEcho()
	h := NewPropertyHandler(newUnreachableDB(t), nil)

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":"t","address":"a"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("prop-1")

	if err := h.Update(c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if body := decodeSingleErrorEnvelope(t, rec); body["error"] != "Property not found" {
		t.Errorf("error = %q, want property not found", body["error"])
	}
}

func TestDeleteStopsWhenLookupRejects(t *testing.T) {
	e := newTestEcho()
	h := NewPropertyHandler(newUnreachableDB(t), nil)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("prop-1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	// One envelope only: the soft delete must not run after the rejection
	if body := decodeSingleErrorEnvelope(t, rec); body["error"] != "Property not found" {
		t.Errorf("error = %q, want property not found", body["error"])
	}
}

func TestUploadPhotoStopsWhenLookupRejects(t *testing.T) {
	e := newTestEcho()
	h := NewPropertyHandler(newUnreachableDB(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("prop-1")

	if err := h.UploadPhoto(c); err != nil {
		t.Fatalf("UploadPhoto() error = %v", err)
	}
	// nil storage answers before the lookup
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestPropertyErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "missing property", err: errPropertyNotFound, wantStatus: http.StatusNotFound},
		{name: "foreign listing", err: errNotListingOwner, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			h := NewPropertyHandler(newUnreachableDB(t), nil)

			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPut, "/", nil), rec)

			if err := h.propertyError(c, tt.err); err != nil {
				t.Fatalf("propertyError() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
