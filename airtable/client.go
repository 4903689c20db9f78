// Package airtable is a thin REST client for the legacy tabular store. It
// covers exactly what the sync and invalidation paths need: list with a
// formula filter, and single/batch record updates.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"ns2po_server/structs"
	"time"
)

// Record is one Airtable row. Fields is the raw field map; the sync layer
// maps named fields onto table structs.
type Record struct {
	ID          string         `json:"id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime time.Time      `json:"createdTime"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to one Airtable base.
type Client struct {
	apiKey  string
	baseID  string
	baseURL string
	http    *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg *structs.AirtableConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseID:  cfg.BaseID,
		baseURL: cfg.APIBaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// ListRecords fetches all records of a table matching an optional
// filterByFormula expression, following pagination offsets.
func (c *Client) ListRecords(ctx context.Context, table, formula string) ([]Record, error) {
	var all []Record
	offset := ""

	for {
		endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))

		params := url.Values{}
		if formula != "" {
			params.Set("filterByFormula", formula)
		}
		if offset != "" {
			params.Set("offset", offset)
		}
		if encoded := params.Encode(); encoded != "" {
			endpoint += "?" + encoded
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build airtable request: %w", err)
		}

		var page listResponse
		if err := c.do(req, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Records...)

		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

// UpdateRecord patches the named fields of one record.
func (c *Client) UpdateRecord(ctx context.Context, table, recordID string, fields map[string]any) error {
	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table), recordID)

	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return fmt.Errorf("failed to encode airtable update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build airtable request: %w", err)
	}

	return c.do(req, nil)
}

// UpdateRecords patches up to ten records in one call, the Airtable batch
// limit.
func (c *Client) UpdateRecords(ctx context.Context, table string, updates map[string]map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if len(updates) > 10 {
		return fmt.Errorf("airtable batch update limited to 10 records, got %d", len(updates))
	}

	type recordPatch struct {
		ID     string         `json:"id"`
		Fields map[string]any `json:"fields"`
	}
	payload := struct {
		Records []recordPatch `json:"records"`
	}{}
	for id, fields := range updates {
		payload.Records = append(payload.Records, recordPatch{ID: id, Fields: fields})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode airtable batch update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build airtable request: %w", err)
	}

	return c.do(req, nil)
}

// CountRecords returns the number of records matching the formula.
func (c *Client) CountRecords(ctx context.Context, table, formula string) (int, error) {
	records, err := c.ListRecords(ctx, table, formula)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("airtable request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("airtable error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("airtable error (%d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode airtable response: %w", err)
	}
	return nil
}

// StringField reads a string field from a record, empty when absent.
func (r Record) StringField(name string) string {
	if v, ok := r.Fields[name].(string); ok {
		return v
	}
	return ""
}

// FloatField reads a numeric field from a record, zero when absent.
func (r Record) FloatField(name string) float64 {
	if v, ok := r.Fields[name].(float64); ok {
		return v
	}
	return 0
}

// IntField reads an integer field from a record, zero when absent.
func (r Record) IntField(name string) int {
	if v, ok := r.Fields[name].(float64); ok {
		return int(v)
	}
	return 0
}

// BoolField reads a checkbox field from a record, false when absent.
func (r Record) BoolField(name string) bool {
	if v, ok := r.Fields[name].(bool); ok {
		return v
	}
	return false
}

// TimeField reads an RFC3339 date field, zero time when absent or malformed.
func (r Record) TimeField(name string) time.Time {
	raw, ok := r.Fields[name].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
