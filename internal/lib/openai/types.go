package openai

import (
	"encoding/json"
	"fmt"
)

// EditsPath is the image edit endpoint, relative to the API base URL.
const EditsPath = "/images/edits"

// EditRequest holds the four form fields of an image edit call.
type EditRequest struct {
	Model  string
	Image  string
	Prompt string
	Size   string
}

// EditResponse is the success payload of /images/edits.
type EditResponse struct {
	Created int64       `json:"created"`
	Data    []ImageData `json:"data"`
}

// ImageData is one generated image.
type ImageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// FirstURL returns data[0].url, or "" when the path is absent.
func (r *EditResponse) FirstURL() string {
	if r == nil || len(r.Data) == 0 {
		return ""
	}
	return r.Data[0].URL
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: image edit failed with status %d", e.StatusCode)
}

// Details returns the response body for callers: embedded as-is when it is
// JSON, as a string otherwise.
func (e *APIError) Details() any {
	if len(e.Body) == 0 {
		return nil
	}
	if json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	return string(e.Body)
}
