package main

import (
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/corylsmithjr/medal-api/internal/app"
	"github.com/corylsmithjr/medal-api/internal/lambda"
)

func main() {
	a, err := app.New()
	if err != nil {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}

	handler, err := newHandler(a)
	if err != nil {
		a.Logger.Fatal().Err(err).Msg("failed to build lambda handler")
	}

	a.Logger.Info().Str("event_format", a.Server.Config.Lambda.EventFormat).Msg("starting lambda handler")
	awslambda.Start(handler)
}

// newHandler picks the proxy matching the configured event format.
func newHandler(a *app.App) (any, error) {
	handler, err := lambda.New(a.Router).Handler(a.Server.Config.Lambda.EventFormat)
	if err != nil {
		return nil, errors.Wrap(err, "invalid lambda config")
	}
	return handler, nil
}
