package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/corylsmithjr/medal-api/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RequireMethod rejects requests whose method is not one of methods with a
// 405 and an Allow header, before the body is read.
//
// It is meant for routes registered with e.Any, where echo's router would
// otherwise accept every method.
func RequireMethod(methods ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !slices.Contains(methods, c.Request().Method) {
				return methodNotAllowed(c, methods)
			}
			return next(c)
		}
	}
}

// RestrictMethods is RequireMethod for path, and also makes the global error
// handler answer the same 405 for methods echo's router does not dispatch
// to the route (extension methods such as PURGE).
//
// It must be called while the router is built, before serving.
func (global *GlobalMiddlewares) RestrictMethods(path string, methods ...string) echo.MiddlewareFunc {
	global.methodRules[path] = methods
	return RequireMethod(methods...)
}

// routerMethodNotAllowed converts echo's own 405 on a restricted path.
func (global *GlobalMiddlewares) routerMethodNotAllowed(err error, c echo.Context) (*errs.HTTPError, bool) {
	var echoErr *echo.HTTPError
	if !errors.As(err, &echoErr) || echoErr.Code != http.StatusMethodNotAllowed {
		return nil, false
	}

	methods, ok := global.methodRules[c.Request().URL.Path]
	if !ok {
		return nil, false
	}
	return methodNotAllowed(c, methods).WithCause(err), true
}

func methodNotAllowed(c echo.Context, methods []string) *errs.HTTPError {
	c.Response().Header().Set(echo.HeaderAllow, strings.Join(methods, ", "))
	return errs.NewMethodNotAllowedError(fmt.Sprintf("Method not allowed. Use %s.", strings.Join(methods, " or ")))
}

// isPreflight reports whether r is a CORS preflight request.
func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions &&
		r.Header.Get(echo.HeaderOrigin) != "" &&
		r.Header.Get(echo.HeaderAccessControlRequestMethod) != ""
}
