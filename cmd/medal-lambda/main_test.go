package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/corylsmithjr/medal-api/internal/app"
	"github.com/corylsmithjr/medal-api/internal/config"
	"github.com/corylsmithjr/medal-api/internal/lib/utils"
)

func newTestApp(t *testing.T, format string) *app.App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Observability.Logging.Level = "error"
	cfg.Lambda.EventFormat = format

	a, err := app.NewWithConfig(cfg)
	utils.AssertNil(t, err)
	return a
}

func TestNewHandlerServesV2ByDefault(t *testing.T) {
	h, err := newHandler(newTestApp(t, "v2"))
	utils.AssertNil(t, err)

	proxy, ok := h.(func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error))
	utils.AssertTrue(t, ok)

	event := events.APIGatewayV2HTTPRequest{RawPath: "/status"}
	event.RequestContext.HTTP.Method = http.MethodGet
	event.RequestContext.HTTP.Path = "/status"

	resp, err := proxy(context.Background(), event)
	utils.AssertNil(t, err)
	utils.AssertEquals(t, http.StatusOK, resp.StatusCode)
}

func TestNewHandlerServesV1(t *testing.T) {
	h, err := newHandler(newTestApp(t, "v1"))
	utils.AssertNil(t, err)

	proxy, ok := h.(func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error))
	utils.AssertTrue(t, ok)

	resp, err := proxy(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/status"})
	utils.AssertNil(t, err)
	utils.AssertEquals(t, http.StatusOK, resp.StatusCode)
}

func TestNewHandlerRejectsUnknownFormat(t *testing.T) {
	_, err := newHandler(newTestApp(t, "v9"))
	utils.AssertNonNil(t, err)
}
