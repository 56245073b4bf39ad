// Package extract calls the structured-extraction service that turns a
// photographed or spreadsheet fiche into sheet data. The service output is
// untrusted: every field is optional and numeral fields arrive as strings.
// Calls are one-shot, with no retry and no partial commit; the caller only writes
// to the store after a fully decoded response.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/optipresta/optipresta/internal/contract"
)

const defaultTimeout = 60 * time.Second

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: defaultTimeout},
	}
}

type request struct {
	Prompt    string `json:"prompt"`
	Text      string `json:"text,omitempty"`
	ImageData string `json:"image_data,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
}

const (
	textPrompt  = "Analyse ces données CSV de fiche prestation et structure-les en JSON."
	imagePrompt = "Analyse cette fiche de prestation et extrais toutes les données structurées."
)

// FromText extracts sheet data from delimited text (spreadsheet rows
// serialized as CSV blocks).
func (c *Client) FromText(ctx context.Context, text string) (*contract.EventData, error) {
	return c.call(ctx, request{Prompt: textPrompt, Text: text})
}

// FromImage extracts sheet data from raw image bytes.
func (c *Client) FromImage(ctx context.Context, image []byte, mimeType string) (*contract.EventData, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return c.call(ctx, request{
		Prompt:    imagePrompt,
		ImageData: base64.StdEncoding.EncodeToString(image),
		MimeType:  mimeType,
	})
}

func (c *Client) call(ctx context.Context, req request) (*contract.EventData, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("extraction endpoint is not configured")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read extraction response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	var data contract.EventData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("malformed extraction response: %w", err)
	}
	return &data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
