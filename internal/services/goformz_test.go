package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoFormzClientEnabled(t *testing.T) {
	if NewGoFormzClient("https://api.goformz.com/v2", "").Enabled() {
		t.Error("expected client without token to report disabled")
	}
	if !NewGoFormzClient("https://api.goformz.com/v2", "token").Enabled() {
		t.Error("expected client with token to report enabled")
	}
}

func TestGoFormzClientListTemplates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/templates" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization header = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"tpl-1","name":"Inspection"},{"id":"tpl-2","name":"Move-in"}]`))
	}))
	defer srv.Close()

	client := NewGoFormzClient(srv.URL, "test-token")

	templates, err := client.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("got %d templates, want 2", len(templates))
	}
	if templates[0].ID != "tpl-1" || templates[0].Name != "Inspection" {
		t.Errorf("unexpected first template %+v", templates[0])
	}
}

func TestGoFormzClientListFormsStatusFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/formz" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "Completed" {
			t.Errorf("status query = %q, want Completed", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"f-1","name":"Unit 4 inspection","status":"Completed","ownerEmail":"agent@example.com"}]`))
	}))
	defer srv.Close()

	client := NewGoFormzClient(srv.URL, "test-token")

	forms, err := client.ListForms(context.Background(), "Completed")
	if err != nil {
		t.Fatalf("ListForms() error = %v", err)
	}
	if len(forms) != 1 {
		t.Fatalf("got %d forms, want 1", len(forms))
	}
	if forms[0].OwnerEmail != "agent@example.com" {
		t.Errorf("OwnerEmail = %q, want agent@example.com", forms[0].OwnerEmail)
	}
}

func TestGoFormzClientGetFormNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"internal detail that must not leak"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewGoFormzClient(srv.URL, "test-token")

	_, err := client.GetForm(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var gfErr *GoFormzError
	if !errors.As(err, &gfErr) {
		t.Fatalf("error type = %T, want *GoFormzError", err)
	}
	if gfErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", gfErr.StatusCode)
	}
}

func TestGoFormzClientGetFormPDF(t *testing.T) {
	pdf := []byte("%PDF-1.7 fake")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/formz/f-1/pdf" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/pdf" {
			t.Errorf("Accept header = %q, want application/pdf", got)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	defer srv.Close()

	client := NewGoFormzClient(srv.URL, "test-token")

	got, err := client.GetFormPDF(context.Background(), "f-1")
	if err != nil {
		t.Fatalf("GetFormPDF() error = %v", err)
	}
	if string(got) != string(pdf) {
		t.Errorf("pdf body = %q, want %q", got, pdf)
	}
}
