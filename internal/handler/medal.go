package handler

import (
	"context"
	"net/http"

	"github.com/corylsmithjr/medal-api/internal/server"
	"github.com/corylsmithjr/medal-api/internal/service"
	"github.com/corylsmithjr/medal-api/internal/validation"
	"github.com/labstack/echo/v4"
)

// MsgMissingImageURL is returned when imageUrl is absent, null or empty.
const MsgMissingImageURL = "Missing imageUrl in request body."

// ProcessMedalRequest is the body of POST /api/processMedal.
//
// Only presence is checked. The URL is forwarded verbatim and the remote
// API decides whether it can fetch it.
type ProcessMedalRequest struct {
	ImageURL string `json:"imageUrl" validate:"required"`
}

func (r *ProcessMedalRequest) Validate() error {
	return validation.Struct(r)
}

// ValidationMessage answers an absent, null or empty imageUrl with MsgMissingImageURL.
func (r *ProcessMedalRequest) ValidationMessage(field, tag string) (string, bool) {
	if field == "imageUrl" && tag == "required" {
		return MsgMissingImageURL, true
	}
	return "", false
}

// ProcessMedalResponse is the success body of POST /api/processMedal.
type ProcessMedalResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

// MedalProcessor is the business operation behind the medal endpoint.
type MedalProcessor interface {
	ProcessMedal(ctx context.Context, imageURL string) (string, error)
}

type MedalHandler struct {
	Handler
	medal MedalProcessor
}

func NewMedalHandler(s *server.Server, medal MedalProcessor) *MedalHandler {
	return &MedalHandler{
		Handler: NewHandler(s),
		medal:   medal,
	}
}

// ProcessMedal returns the echo handler for POST /api/processMedal.
func (h *MedalHandler) ProcessMedal() echo.HandlerFunc {
	return Handle(h.Handler, h.processMedal, http.StatusOK, func() *ProcessMedalRequest {
		return &ProcessMedalRequest{}
	})
}

func (h *MedalHandler) processMedal(c echo.Context, req *ProcessMedalRequest) (*ProcessMedalResponse, error) {
	finalURL, err := h.medal.ProcessMedal(c.Request().Context(), req.ImageURL)
	if err != nil {
		return nil, err
	}

	return &ProcessMedalResponse{
		Success:  true,
		Message:  service.MsgMedalProcessed,
		ImageURL: finalURL,
	}, nil
}
