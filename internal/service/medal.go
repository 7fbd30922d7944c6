package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/corylsmithjr/medal-api/internal/config"
	"github.com/corylsmithjr/medal-api/internal/errs"
	"github.com/corylsmithjr/medal-api/internal/lib/openai"
	"github.com/corylsmithjr/medal-api/internal/metrics"
	"github.com/rs/zerolog"
)

// Caller-facing messages of the medal pipeline.
const (
	MsgMissingAPIKey  = "Missing OpenAI API key on server."
	MsgAPICallFailed  = "OpenAI API call failed."
	MsgAPICallTimeout = "OpenAI API call timed out."
	MsgNoImageURL     = "No image URL returned from OpenAI."
	MsgMedalProcessed = "Medal processed successfully!"
)

// ImageEditor is the remote image-edit collaborator.
type ImageEditor interface {
	EditImage(ctx context.Context, req openai.EditRequest) (*openai.EditResponse, error)
}

// MedalService turns a medal photo URL into a background-free image URL by
// delegating to an ImageEditor. It keeps no state between calls.
type MedalService struct {
	cfg     config.OpenAIConfig
	editor  ImageEditor
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

// NewMedalService creates a MedalService. m may be nil.
func NewMedalService(cfg config.OpenAIConfig, editor ImageEditor, logger *zerolog.Logger, m *metrics.Metrics) *MedalService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &MedalService{
		cfg:     cfg,
		editor:  editor,
		logger:  logger,
		metrics: m,
	}
}

// ProcessMedal sends imageURL to the image-edit API and returns the URL of
// the processed image.
//
// Exactly one remote call is made, or none when the credential is missing.
// Every failure is an *errs.HTTPError.
func (s *MedalService) ProcessMedal(ctx context.Context, imageURL string) (string, error) {
	log := s.loggerFrom(ctx)

	if !s.cfg.HasOpenAIKey() {
		log.Error().Msg("OpenAI API key is not configured")
		s.metrics.RecordOutcome(metrics.OutcomeMissingKey)
		return "", errs.NewInternalServerError(MsgMissingAPIKey, nil)
	}

	log.Info().Str("image_url", imageURL).Msg("processing image")

	callCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.editor.EditImage(callCtx, openai.EditRequest{
		Model:  s.cfg.Model,
		Image:  imageURL,
		Prompt: s.cfg.Prompt,
		Size:   s.cfg.Size,
	})
	elapsed := time.Since(start)

	if err != nil {
		return "", s.mapEditError(log, callCtx, err, elapsed)
	}
	s.metrics.ObserveUpstream("2xx", elapsed)

	finalURL := resp.FirstURL()
	if finalURL == "" {
		log.Error().Dur("upstream_duration", elapsed).Msg("no image URL in OpenAI response")
		s.metrics.RecordOutcome(metrics.OutcomeNoImageURL)
		return "", errs.NewInternalServerError(MsgNoImageURL, nil)
	}

	log.Info().
		Str("image_url", imageURL).
		Str("final_image_url", finalURL).
		Dur("upstream_duration", elapsed).
		Msg("medal processed successfully")
	s.metrics.RecordOutcome(metrics.OutcomeSuccess)

	return finalURL, nil
}

// mapEditError classifies an EditImage failure.
func (s *MedalService) mapEditError(log *zerolog.Logger, callCtx context.Context, err error, elapsed time.Duration) error {
	var apiErr *openai.APIError
	var urlErr *url.Error

	switch {
	case errors.As(err, &apiErr):
		s.metrics.ObserveUpstream(statusClass(apiErr.StatusCode), elapsed)
		s.metrics.RecordOutcome(metrics.OutcomeUpstreamError)
		log.Error().
			Int("upstream_status", apiErr.StatusCode).
			RawJSON("upstream_body", jsonOrQuoted(apiErr.Body)).
			Msg("OpenAI API error")
		return errs.NewInternalServerError(MsgAPICallFailed, apiErr.Details()).WithCause(err)

	case errors.Is(err, context.DeadlineExceeded) && errors.Is(callCtx.Err(), context.DeadlineExceeded):
		s.metrics.ObserveUpstream("error", elapsed)
		s.metrics.RecordOutcome(metrics.OutcomeUpstreamTimeout)
		log.Error().Err(err).Dur("timeout", s.cfg.Timeout).Msg("OpenAI API call timed out")
		return errs.NewGatewayTimeoutError(MsgAPICallTimeout).WithCause(err)

	case errors.Is(err, openai.ErrMissingAPIKey):
		s.metrics.RecordOutcome(metrics.OutcomeMissingKey)
		return errs.NewInternalServerError(MsgMissingAPIKey, nil).WithCause(err)

	case errors.As(err, &urlErr):
		s.metrics.ObserveUpstream("error", elapsed)
		s.metrics.RecordOutcome(metrics.OutcomeUpstreamError)
		log.Error().Err(err).Msg("OpenAI API call failed")
		return errs.NewInternalServerError(MsgAPICallFailed, urlErr.Err.Error()).WithCause(err)

	default:
		s.metrics.RecordOutcome(metrics.OutcomeServerError)
		log.Error().Err(err).Msg("unexpected OpenAI client error")
		return errs.ServerError(err)
	}
}

// loggerFrom returns the request-scoped logger stored in ctx, falling back
// to the service logger.
func (s *MedalService) loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

// jsonOrQuoted makes an arbitrary body safe for RawJSON.
func jsonOrQuoted(body []byte) []byte {
	if len(body) > 0 && json.Valid(body) {
		return body
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
