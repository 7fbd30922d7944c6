// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes,
// mapping specific paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/corylsmithjr/medal-api/internal/handler"
	"github.com/corylsmithjr/medal-api/internal/middleware"
	"github.com/corylsmithjr/medal-api/internal/server"
	"github.com/labstack/echo/v4"
)

// ProcessMedalPath is the path of the medal processing endpoint.
const ProcessMedalPath = "/api/processMedal"

// NewRouter builds the echo instance shared by the HTTP server and the
// Lambda adapter.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id must exist before the context logger is
	// built, and the logger before anything that logs.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.BodyLimit(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, s, h)

	// Registered for every method so non-POST requests get the JSON 405
	// instead of echo's default.
	router.Any(ProcessMedalPath, h.Medal.ProcessMedal(),
		middlewares.Global.RestrictMethods(ProcessMedalPath, http.MethodPost))

	return router
}
