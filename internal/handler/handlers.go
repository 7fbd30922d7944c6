package handler

import (
	"github.com/corylsmithjr/medal-api/internal/server"
	"github.com/corylsmithjr/medal-api/internal/service"
)

// Handlers groups all HTTP handlers so router setup passes one object around.
type Handlers struct {
	Medal   *MedalHandler   // Medal serves the image processing endpoint.
	Health  *HealthHandler  // Health serves the status endpoint.
	OpenAPI *OpenAPIHandler // OpenAPI serves the API documentation.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Medal:   NewMedalHandler(s, services.Medal),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
