package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GoFormzClient talks to the GoFormz v2 API. All porchlight form routes
// proxy through it, so GoFormz credentials never reach the browser.
type GoFormzClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

type GoFormzTemplate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type GoFormzForm struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TemplateID string    `json:"templateId"`
	Status     string    `json:"status"`
	OwnerEmail string    `json:"ownerEmail"`
	CreatedAt  time.Time `json:"createdDate"`
	UpdatedAt  time.Time `json:"lastUpdateDate"`
}

// GoFormzError is returned for non-2xx upstream responses. The status code
// is kept for classification; the body is never forwarded to clients.
type GoFormzError struct {
	StatusCode int
	Op         string
}

func (e *GoFormzError) Error() string {
	return fmt.Sprintf("goformz: %s returned status %d", e.Op, e.StatusCode)
}

func NewGoFormzClient(baseURL, apiToken string) *GoFormzClient {
	return &GoFormzClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether an API token is configured.
func (c *GoFormzClient) Enabled() bool {
	return c.apiToken != ""
}

func (c *GoFormzClient) do(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("goformz: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("goformz: %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GoFormzError{StatusCode: resp.StatusCode, Op: op}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("goformz: failed to decode %s response: %w", op, err)
	}
	return nil
}

// ListTemplates returns the form templates visible to the API token.
func (c *GoFormzClient) ListTemplates(ctx context.Context) ([]GoFormzTemplate, error) {
	var templates []GoFormzTemplate
	if err := c.do(ctx, "list templates", "/templates", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// ListForms returns form submissions, optionally filtered by status.
func (c *GoFormzClient) ListForms(ctx context.Context, status string) ([]GoFormzForm, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	var forms []GoFormzForm
	if err := c.do(ctx, "list forms", "/formz", query, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

// GetForm returns a single form submission by ID.
func (c *GoFormzClient) GetForm(ctx context.Context, formID string) (*GoFormzForm, error) {
	var form GoFormzForm
	if err := c.do(ctx, "get form", "/formz/"+url.PathEscape(formID), nil, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// GetFormPDF downloads the rendered PDF of a completed form.
func (c *GoFormzClient) GetFormPDF(ctx context.Context, formID string) ([]byte, error) {
	u := c.baseURL + "/formz/" + url.PathEscape(formID) + "/pdf"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("goformz: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("goformz: pdf request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GoFormzError{StatusCode: resp.StatusCode, Op: "get form pdf"}
	}

	return io.ReadAll(resp.Body)
}
