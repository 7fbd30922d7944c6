// Package service contains the business logic.
//
// It sits between the handler layer and the outbound clients. It receives
// validated data from the handler, performs the business operation and
// returns either a result or an *errs.HTTPError describing the failure.
package service

import (
	"github.com/corylsmithjr/medal-api/internal/lib/openai"
	"github.com/corylsmithjr/medal-api/internal/server"
)

type Services struct {
	Medal *MedalService
}

// NewServices wires every service from the shared application container.
//
// The OpenAI credential is read from the loaded config here, once, and
// injected into the client and the medal service.
func NewServices(s *server.Server) *Services {
	client := openai.NewClient(openai.Options{
		BaseURL:    s.Config.OpenAI.BaseURL,
		APIKey:     s.Config.OpenAI.APIKey,
		HTTPClient: s.HTTPClient,
	})

	return &Services{
		Medal: NewMedalService(s.Config.OpenAI, client, s.Logger, s.Metrics),
	}
}
