package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corylsmithjr/medal-api/internal/config"
	"github.com/corylsmithjr/medal-api/internal/errs"
	"github.com/corylsmithjr/medal-api/internal/lib/utils"
	"github.com/corylsmithjr/medal-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *server.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	logger := zerolog.Nop()

	s, err := server.New(cfg, &logger, nil)
	utils.AssertNil(t, err)
	return s
}

func newTestEcho(s *server.Server) *echo.Echo {
	mw := NewMiddlewares(s)

	e := echo.New()
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	e.Use(
		mw.Global.Recover(),
		RequestID(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.BodyLimit(),
		mw.RateLimit.Limit(),
	)
	return e
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	utils.AssertNil(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireMethod(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	calls := 0
	e.Any("/only-post", func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusNoContent)
	}, RequireMethod(http.MethodPost))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rec := serve(e, method, "/only-post", "")
		utils.AssertEqualsMsg(t, http.StatusMethodNotAllowed, rec.Code, method)
		utils.AssertEquals(t, http.MethodPost, rec.Header().Get(echo.HeaderAllow))
		utils.AssertEquals(t, "Method not allowed. Use POST.", decodeError(t, rec).Error)
	}

	rec := serve(e, http.MethodHead, "/only-post", "")
	utils.AssertEquals(t, http.StatusMethodNotAllowed, rec.Code)
	utils.AssertEquals(t, 0, rec.Body.Len())

	utils.AssertEquals(t, 0, calls)

	rec = serve(e, http.MethodPost, "/only-post", "")
	utils.AssertEquals(t, http.StatusNoContent, rec.Code)
	utils.AssertEquals(t, 1, calls)
}

func TestRestrictMethodsCoversRouterMethods(t *testing.T) {
	mw := NewMiddlewares(newTestServer(t, nil))

	e := echo.New()
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	e.Use(mw.Global.CORS())
	calls := 0
	e.Any("/only-post", func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusNoContent)
	}, mw.Global.RestrictMethods("/only-post", http.MethodPost))
	e.GET("/other", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for _, method := range []string{http.MethodOptions, "PURGE", "FOO"} {
		rec := serve(e, method, "/only-post", "")
		utils.AssertEqualsMsg(t, http.StatusMethodNotAllowed, rec.Code, method)
		utils.AssertEqualsMsg(t, http.MethodPost, rec.Header().Get(echo.HeaderAllow), method)
		utils.AssertEquals(t, "Method not allowed. Use POST.", decodeError(t, rec).Error)
	}
	utils.AssertEquals(t, 0, calls)

	// Unrestricted paths keep echo's message.
	rec := serve(e, "PURGE", "/other", "")
	utils.AssertEquals(t, http.StatusMethodNotAllowed, rec.Code)
	utils.AssertEquals(t, "Method Not Allowed", decodeError(t, rec).Error)
}

func TestCORSAnswersOnlyRealPreflights(t *testing.T) {
	mw := NewMiddlewares(newTestServer(t, nil))

	e := echo.New()
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	e.Use(mw.Global.CORS())
	e.Any("/only-post", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, mw.Global.RestrictMethods("/only-post", http.MethodPost))

	req := httptest.NewRequest(http.MethodOptions, "/only-post", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	utils.AssertEquals(t, http.StatusMethodNotAllowed, rec.Code)

	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	utils.AssertEquals(t, http.StatusNoContent, rec.Code)
	utils.AssertEquals(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestGlobalErrorHandlerRendersHTTPError(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.GET("/fail", func(c echo.Context) error {
		return errs.NewInternalServerError("OpenAI API call failed.", map[string]string{"code": "bad"})
	})

	rec := serve(e, http.MethodGet, "/fail", "")
	utils.AssertEquals(t, http.StatusInternalServerError, rec.Code)
	utils.AssertEquals(t, `{"details":{"code":"bad"},"error":"OpenAI API call failed."}`, canonical(t, rec.Body.Bytes()))
}

func TestGlobalErrorHandlerUnknownError(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("kaboom")
	})
	e.GET("/panic", func(c echo.Context) error {
		panic("unreachable state")
	})

	rec := serve(e, http.MethodGet, "/boom", "")
	utils.AssertEquals(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	utils.AssertEquals(t, errs.ServerErrorMessage, body.Error)
	utils.AssertEquals(t, any("kaboom"), body.Details)

	rec = serve(e, http.MethodGet, "/panic", "")
	utils.AssertEquals(t, http.StatusInternalServerError, rec.Code)
	body = decodeError(t, rec)
	utils.AssertEquals(t, errs.ServerErrorMessage, body.Error)
	utils.AssertEquals(t, any("unreachable state"), body.Details)
}

func TestGlobalErrorHandlerEchoErrors(t *testing.T) {
	e := newTestEcho(newTestServer(t, func(cfg *config.Config) {
		cfg.Server.BodyLimit = "10B"
	}))
	e.POST("/upload", func(c echo.Context) error {
		var v map[string]any
		return c.Bind(&v)
	})

	rec := serve(e, http.MethodGet, "/missing", "")
	utils.AssertEquals(t, http.StatusNotFound, rec.Code)
	utils.AssertEquals(t, MsgRouteNotFound, decodeError(t, rec).Error)

	rec = serve(e, http.MethodPost, "/upload", `{"imageUrl":"https://example.com/a.png"}`)
	utils.AssertEquals(t, http.StatusRequestEntityTooLarge, rec.Code)
	utils.AssertEquals(t, "Request Entity Too Large", decodeError(t, rec).Error)
}

func TestRequestIDIsEchoed(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	var seen string
	e.GET("/id", func(c echo.Context) error {
		seen = GetRequestID(c)
		return c.NoContent(http.StatusOK)
	})

	rec := serve(e, http.MethodGet, "/id", "")
	utils.AssertTrue(t, seen != "")
	utils.AssertEquals(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	utils.AssertEquals(t, "abc-123", seen)
	utils.AssertEquals(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestContextLoggerReachesRequestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	s, err := server.New(config.DefaultConfig(), &logger, nil)
	utils.AssertNil(t, err)

	e := newTestEcho(s)
	e.GET("/log", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from service")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	e.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	utils.AssertNil(t, json.Unmarshal(bytes.SplitN(buf.Bytes(), []byte("\n"), 2)[0], &line))
	utils.AssertEquals(t, any("from service"), line["message"])
	utils.AssertEquals(t, any("req-42"), line["request_id"])
	utils.AssertEquals(t, any("/log"), line["path"])
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 1
	})
	e := newTestEcho(s)
	e.GET("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := serve(e, http.MethodGet, "/limited", "")
	utils.AssertEquals(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/limited", "")
	utils.AssertEquals(t, http.StatusTooManyRequests, rec.Code)
	utils.AssertEquals(t, MsgTooManyRequests, decodeError(t, rec).Error)
}

func TestRateLimitDisabledByDefault(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.GET("/open", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 20; i++ {
		utils.AssertEquals(t, http.StatusOK, serve(e, http.MethodGet, "/open", "").Code)
	}
}

func canonical(t *testing.T, raw []byte) string {
	t.Helper()
	var v any
	utils.AssertNil(t, json.Unmarshal(raw, &v))
	out, err := json.Marshal(v)
	utils.AssertNil(t, err)
	return string(out)
}
