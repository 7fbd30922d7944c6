// Package openai provides a client for OpenAI's image edit endpoint.
//
// Only the one call the medal pipeline needs is implemented: a multipart
// POST to /images/edits with a bearer credential.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// maxErrorBody caps how much of a failed response is kept for details.
const maxErrorBody = 1 << 20

// ErrMissingAPIKey is returned when the client has no credential.
var ErrMissingAPIKey = errors.New("openai: missing API key")

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string

	// HTTPClient defaults to a client without timeout; deadlines come from
	// the request context.
	HTTPClient *http.Client
}

// Client wraps an *http.Client bound to one API base URL and credential.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
	}
}

// EditImage sends one image edit request and waits for the result.
//
// Errors:
//   - ErrMissingAPIKey when no credential is configured (no request is sent)
//   - *APIError when the API answered with a non-2xx status
//   - a wrapped transport or context error when no response was received
//   - a wrapped decode error when a 2xx body is not JSON
func (c *Client) EditImage(ctx context.Context, req EditRequest) (*EditResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, contentType, err := encodeEditRequest(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding image edit request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EditsPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "building image edit request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "sending image edit request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return nil, errors.Wrapf(readErr, "reading image edit error response (status %d)", resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: raw}
	}

	var out EditResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decoding image edit response")
	}

	return &out, nil
}

// encodeEditRequest builds the multipart body. The image field carries the
// caller's URL as plain text; nothing is downloaded.
func encodeEditRequest(req EditRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct {
		name, value string
	}{
		{"model", req.Model},
		{"image", req.Image},
		{"prompt", req.Prompt},
		{"size", req.Size},
	}

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", f.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
