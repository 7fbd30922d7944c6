package handler

import (
	"embed"
	"fmt"
	"net/http"

	"github.com/corylsmithjr/medal-api/internal/server"
	"github.com/labstack/echo/v4"
)

// The Lambda bundle has no static directory, so the documents are compiled in.
//
//go:embed static/openapi.json static/openapi.html
var docs embed.FS

// OpenAPIHandler serves the OpenAPI document and a small UI to try the API.
type OpenAPIHandler struct {
	Handler
}

// NewOpenAPIHandler constructs an OpenAPIHandler with access to shared dependencies.
func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI serves the docs UI page.
//
// Cache-Control is set to "no-cache" so clients do not reuse old docs.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	return h.serve(c, "static/openapi.html", echo.MIMETextHTMLCharsetUTF8)
}

// ServeOpenAPISpec serves the OpenAPI JSON document.
func (h *OpenAPIHandler) ServeOpenAPISpec(c echo.Context) error {
	return h.serve(c, "static/openapi.json", echo.MIMEApplicationJSON)
}

func (h *OpenAPIHandler) serve(c echo.Context, name, contentType string) error {
	data, err := docs.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err := c.Blob(http.StatusOK, contentType, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}
