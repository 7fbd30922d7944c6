package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/corylsmithjr/medal-api/internal/lib/utils"
	"github.com/labstack/echo/v4"
)

type seenRequest struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Query  string `json:"query"`
	Body   string `json:"body"`
	Header string `json:"header"`
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Any("/api/processMedal", func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusAccepted, seenRequest{
			Method: c.Request().Method,
			Path:   c.Request().URL.Path,
			Query:  c.QueryParam("q"),
			Body:   string(body),
			Header: c.Request().Header.Get("X-Test"),
		})
	})
	return e
}

func decodeSeen(t *testing.T, body string) seenRequest {
	t.Helper()
	var seen seenRequest
	utils.AssertNil(t, json.Unmarshal([]byte(body), &seen))
	return seen
}

func TestProxyV1(t *testing.T) {
	a := New(newEcho())

	resp, err := a.ProxyV1(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/api/processMedal",
		QueryStringParameters: map[string]string{"q": "1"},
		Headers:               map[string]string{"X-Test": "yes"},
		Body:                  `{"imageUrl":"https://example.com/a.png"}`,
	})

	utils.AssertNil(t, err)
	utils.AssertEquals(t, http.StatusAccepted, resp.StatusCode)
	utils.AssertFalse(t, resp.IsBase64Encoded)
	contentType := http.Header(resp.MultiValueHeaders).Get(echo.HeaderContentType)
	utils.AssertTrue(t, strings.HasPrefix(contentType, echo.MIMEApplicationJSON))

	utils.AssertEquals(t, seenRequest{
		Method: http.MethodPost,
		Path:   "/api/processMedal",
		Query:  "1",
		Body:   `{"imageUrl":"https://example.com/a.png"}`,
		Header: "yes",
	}, decodeSeen(t, resp.Body))
}

func TestProxyV2(t *testing.T) {
	a := New(newEcho())

	event := events.APIGatewayV2HTTPRequest{
		RawPath:         "/api/processMedal",
		RawQueryString:  "q=2",
		Headers:         map[string]string{"x-test": "v2"},
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"imageUrl":"x"}`)),
		IsBase64Encoded: true,
	}
	event.RequestContext.HTTP.Method = http.MethodPost
	event.RequestContext.HTTP.Path = "/api/processMedal"
	event.RequestContext.HTTP.SourceIP = "203.0.113.9"

	resp, err := a.ProxyV2(context.Background(), event)

	utils.AssertNil(t, err)
	utils.AssertEquals(t, http.StatusAccepted, resp.StatusCode)
	utils.AssertFalse(t, resp.IsBase64Encoded)

	utils.AssertEquals(t, seenRequest{
		Method: http.MethodPost,
		Path:   "/api/processMedal",
		Query:  "2",
		Body:   `{"imageUrl":"x"}`,
		Header: "v2",
	}, decodeSeen(t, resp.Body))
}

func TestProxyV2InvalidBase64(t *testing.T) {
	a := New(newEcho())

	event := events.APIGatewayV2HTTPRequest{RawPath: "/api/processMedal", Body: "%%%", IsBase64Encoded: true}
	event.RequestContext.HTTP.Method = http.MethodPost
	event.RequestContext.HTTP.Path = "/api/processMedal"

	_, err := a.ProxyV2(context.Background(), event)
	utils.AssertNonNil(t, err)
}

func TestProxyUnknownRoute(t *testing.T) {
	a := New(newEcho())

	resp, err := a.ProxyV1(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/nope"})

	utils.AssertNil(t, err)
	utils.AssertEquals(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerSelectsEventFormat(t *testing.T) {
	a := New(newEcho())

	h, err := a.Handler(FormatV1)
	utils.AssertNil(t, err)
	_, ok := h.(func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error))
	utils.AssertTrue(t, ok)

	for _, format := range []string{FormatV2, ""} {
		h, err = a.Handler(format)
		utils.AssertNil(t, err)
		_, ok = h.(func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error))
		utils.AssertTrueMsg(t, ok, format)
	}

	_, err = a.Handler("v3")
	utils.AssertNonNil(t, err)
}
