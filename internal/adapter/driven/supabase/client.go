// Package supabase implements the ResidentStore port against the Supabase
// REST API (PostgREST).
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
	"github.com/ericfisherdev/residentwelcome/internal/domain/port/driven"
)

// maxResponseBody bounds how much of a PostgREST response is read.
const maxResponseBody = 10 << 20

// insertColumns is the explicit column list sent with every insert so that
// PostgREST does not infer columns from the first object.
var insertColumns = []string{"full_name", "email", "address"}

// Compile-time interface satisfaction check.
var _ driven.ResidentStore = (*Client)(nil)

// Client inserts residents through the PostgREST endpoint of a Supabase project.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	apiKey     string
	table      string
}

// NewClient creates a Client for the project at projectURL, authenticating
// with apiKey (normally the service role key). Requests are bounded by timeout.
func NewClient(projectURL, apiKey, table string, timeout time.Duration) (*Client, error) {
	return NewClientWithHTTPClient(&http.Client{Timeout: timeout}, projectURL, apiKey, table)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, projectURL, apiKey, table string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(projectURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing project URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing project URL: %q is not absolute", projectURL)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    u,
		apiKey:     apiKey,
		table:      table,
	}, nil
}

// Insert POSTs residents as a JSON array and asks PostgREST to return the
// stored representation. Each returned object is kept verbatim in Raw.
func (c *Client) Insert(ctx context.Context, residents ...model.NewResident) ([]model.InsertedResident, error) {
	if residents == nil {
		residents = []model.NewResident{}
	}
	body, err := json.Marshal(residents)
	if err != nil {
		return nil, fmt.Errorf("marshal residents: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.insertURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create insert request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", "return=representation")
	req.Header.Set("X-Client-Info", "residentwelcome")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", c.table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read insert response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("insert into %s: %w", c.table, parseAPIError(resp.StatusCode, respBody))
	}

	var rawRows []json.RawMessage
	if err := json.Unmarshal(respBody, &rawRows); err != nil {
		return nil, fmt.Errorf("decode insert response: %w", err)
	}

	// The insert has committed by now. A column that does not fit Resident is
	// logged and left zero; Raw still carries the row as stored.
	inserted := make([]model.InsertedResident, 0, len(rawRows))
	for i, raw := range rawRows {
		r, err := model.DecodeResident(raw)
		if err != nil {
			slog.Warn("supabase: inserted row decoded partially", "table", c.table, "row", i, "error", err)
		}
		inserted = append(inserted, model.InsertedResident{Resident: r, Raw: raw})
	}

	return inserted, nil
}

// insertURL builds {project}/rest/v1/{table}?columns=...&select=*.
func (c *Client) insertURL() string {
	u := *c.baseURL
	u.Path = u.Path + "/rest/v1/" + c.table

	quoted := make([]string, len(insertColumns))
	for i, col := range insertColumns {
		quoted[i] = `"` + col + `"`
	}

	q := url.Values{}
	q.Set("columns", strings.Join(quoted, ","))
	q.Set("select", "*")
	u.RawQuery = q.Encode()

	return u.String()
}
