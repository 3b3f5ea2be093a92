package compendium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings needed to construct a Client.
type Config struct {
	// BaseURL is the root URL of the Compendium server (e.g. "http://localhost:8080").
	BaseURL string

	// HTTPClient is an optional custom HTTP client. If nil, a default client
	// with Timeout is used.
	HTTPClient *http.Client

	// Timeout applies to individual API requests. Defaults to 30 seconds.
	Timeout time.Duration
}

// Client is an HTTP client for the Compendium API. Each resource is reached
// through its own field, e.g. client.Spells.Get(ctx, 3).
// All methods are safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client

	Classes       *Resource[Summary, Class, ClassInput]
	Proficiencies *Resource[ProficiencySummary, Proficiency, ProficiencyInput]
	Races         *Resource[Summary, Race, RaceInput]
	Subraces      *Resource[Summary, Subrace, SubraceInput]
	Schools       *Resource[Summary, School, SchoolInput]
	Spells        *Resource[Summary, Spell, SpellInput]
	Subclasses    *Resource[Summary, Subclass, SubclassInput]
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("compendium: BaseURL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), client: httpClient}
	c.Classes = &Resource[Summary, Class, ClassInput]{c: c, name: "classes"}
	c.Proficiencies = &Resource[ProficiencySummary, Proficiency, ProficiencyInput]{c: c, name: "proficiencies"}
	c.Races = &Resource[Summary, Race, RaceInput]{c: c, name: "races"}
	c.Subraces = &Resource[Summary, Subrace, SubraceInput]{c: c, name: "subraces"}
	c.Schools = &Resource[Summary, School, SchoolInput]{c: c, name: "schools"}
	c.Spells = &Resource[Summary, Spell, SpellInput]{c: c, name: "spells"}
	c.Subclasses = &Resource[Summary, Subclass, SubclassInput]{c: c, name: "subclasses"}
	return c, nil
}

// Root returns the collection URL of every resource, keyed by resource name.
func (c *Client) Root(ctx context.Context) (map[string]string, error) {
	var resp map[string]string
	if err := c.do(ctx, http.MethodGet, "/", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Health reports server and database health. An unhealthy server answers
// 503, which is returned as an *Error.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Resource is the CRUD surface of one catalog resource. S is the listing
// item, D the detail document and I the write input.
type Resource[S, D, I any] struct {
	c    *Client
	name string
}

// List returns every record in id order.
func (r *Resource[S, D, I]) List(ctx context.Context) ([]S, error) {
	var resp []S
	if err := r.c.do(ctx, http.MethodGet, "/"+r.name+"/", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Get returns the detail document of id.
func (r *Resource[S, D, I]) Get(ctx context.Context, id int64) (*D, error) {
	var resp D
	if err := r.c.do(ctx, http.MethodGet, r.item(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create adds a record and returns its detail document.
func (r *Resource[S, D, I]) Create(ctx context.Context, in I) (*D, error) {
	var resp D
	if err := r.c.do(ctx, http.MethodPost, "/"+r.name+"/", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update sends the set fields of in as a partial update.
func (r *Resource[S, D, I]) Update(ctx context.Context, id int64, in I) (*D, error) {
	var resp D
	if err := r.c.do(ctx, http.MethodPatch, r.item(id), in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes id and everything that depends on it.
func (r *Resource[S, D, I]) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, r.item(id), nil, nil)
}

func (r *Resource[S, D, I]) item(id int64) string {
	return "/" + r.name + "/" + strconv.FormatInt(id, 10) + "/"
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("compendium: marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("compendium: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("compendium: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResponse(resp, dest)
}

func handleResponse(resp *http.Response, dest any) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("compendium: read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	if resp.StatusCode == http.StatusNoContent || dest == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, dest); err != nil {
		return fmt.Errorf("compendium: decode response: %w", err)
	}
	return nil
}

func parseErrorResponse(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode}

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		// Only validation errors carry field details.
		_ = json.Unmarshal(envelope.Error.Details, &apiErr.Fields)
	} else {
		apiErr.Code = http.StatusText(statusCode)
		apiErr.Message = string(body)
	}

	return apiErr
}
