// Package lambda serves the echo router from API Gateway and Lambda function
// URL events, so the Lambda host answers exactly like the long-running server.
package lambda

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Event formats accepted by Handler.
const (
	FormatV1 = "v1"
	FormatV2 = "v2"
)

// Adapter proxies Lambda events onto an echo instance.
type Adapter struct {
	v1 *echoadapter.EchoLambda
	v2 *echoadapter.EchoLambdaV2
}

// New returns an Adapter serving e.
func New(e *echo.Echo) *Adapter {
	return &Adapter{
		v1: echoadapter.New(e),
		v2: echoadapter.NewV2(e),
	}
}

// ProxyV1 serves an API Gateway REST API (payload format 1.0) event.
func (a *Adapter) ProxyV1(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp, err := a.v1.ProxyWithContext(ctx, event)
	return resp, errors.Wrap(err, "lambda: proxy v1 event")
}

// ProxyV2 serves an HTTP API or Lambda function URL (payload format 2.0) event.
func (a *Adapter) ProxyV2(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := a.v2.ProxyWithContext(ctx, event)
	return resp, errors.Wrap(err, "lambda: proxy v2 event")
}

// Handler returns the proxy function for format, ready for lambda.Start.
// An empty format selects v2.
func (a *Adapter) Handler(format string) (any, error) {
	switch format {
	case FormatV1:
		return a.ProxyV1, nil
	case FormatV2, "":
		return a.ProxyV2, nil
	default:
		return nil, errors.Errorf("lambda: unknown event format %q", format)
	}
}
