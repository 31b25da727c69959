// Package feeds is the adapter for the spreadsheet-backed function API.
// The backend exposes two callable-by-name functions: get_patients, which
// returns every row of a named sheet tab, and update_patient, which patches
// a subset of fields on one row. Records come back loosely typed; callers
// must tolerate missing or renamed fields (see internal/mapper) and never assume a fixed
// schema.
package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Sheet tab names. These must match the spreadsheet exactly.
const (
	TabOutbox     = "Outbox"
	TabConfirmed  = "Confirmed"
	TabCancelled  = "CancelledFollowUp"
	TabReschedule = "RescheduleFollowUp"
	TabRecall     = "NoNextAppointment"
)

// Record is one loosely-typed row as returned by the feed API.
type Record = map[string]any

// Source fetches all records of a named tab.
type Source interface {
	FetchTab(ctx context.Context, tab string) ([]Record, error)
}

// Updater writes a partial field update back to one row of a tab. The key
// map carries whichever lookup field the tab uses (appointment_id,
// idempotency_key, or id).
type Updater interface {
	UpdateRow(ctx context.Context, tab string, key map[string]any, updates map[string]any) error
}

// Client talks to the function API over HTTPS with a service key.
type Client struct {
	BaseURL    string
	ServiceKey string
	HTTPClient *http.Client
	Log        zerolog.Logger
}

// NewClient constructs a Client with a sane request timeout. The timeout is
// deliberately shorter than the poll interval so a hung backend cannot stack
// up overlapping cycles.
func NewClient(baseURL, serviceKey string, log zerolog.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		Log:        log,
	}
}

type patientsEnvelope struct {
	Patients []Record `json:"patients"`
}

// FetchTab invokes get_patients for the given tab and returns its records.
// A missing or null patients array yields an empty slice, not an error.
func (c *Client) FetchTab(ctx context.Context, tab string) ([]Record, error) {
	endpoint := c.BaseURL + "/get_patients?tab=" + url.QueryEscape(tab)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("feeds: build request for %s: %w", tab, err)
	}
	c.authorize(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feeds: fetch %s: %w", tab, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("feeds: read %s response: %w", tab, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feeds: fetch %s: status %d: %s", tab, resp.StatusCode, truncateBody(body))
	}

	var env patientsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("feeds: decode %s response: %w", tab, err)
	}
	if env.Patients == nil {
		return []Record{}, nil
	}
	return env.Patients, nil
}

// UpdateRow invokes update_patient with the tab name, row lookup key fields,
// and the partial update set.
func (c *Client) UpdateRow(ctx context.Context, tab string, key map[string]any, updates map[string]any) error {
	payload := map[string]any{
		"tab":     tab,
		"updates": updates,
	}
	for k, v := range key {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("feeds: marshal update for %s: %w", tab, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/update_patient", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("feeds: build update request for %s: %w", tab, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("feeds: update %s: %w", tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("feeds: update %s: status %d: %s", tab, resp.StatusCode, truncateBody(body))
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.ServiceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	}
	req.Header.Set("Accept", "application/json")
}

func truncateBody(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "…"
	}
	return string(b)
}
