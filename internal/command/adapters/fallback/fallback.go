// Package fallback guards a remote language service with a circuit breaker
// and answers from a local one while the remote is failing.
package fallback

import (
	"context"
	"errors"
	"log/slog"

	"lifedash/internal/command/models"
	"lifedash/internal/command/ports"
	"lifedash/pkg/platform/circuit"
)

type Service struct {
	primary  ports.LanguageService
	fallback ports.LanguageService
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func New(primary, fallback ports.LanguageService, breaker *circuit.Breaker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

// ExtractEntities tries the primary unless the breaker is open. A primary
// failure is answered by the fallback; a cancelled caller is not a failure.
func (s *Service) ExtractEntities(ctx context.Context, text string, hint models.Intent) ([]models.CandidateEntity, error) {
	if !s.breaker.Allow() {
		return s.fallback.ExtractEntities(ctx, text, hint)
	}

	out, err := s.primary.ExtractEntities(ctx, text, hint)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "language circuit closed", "breaker", s.breaker.Name())
		}
		return out, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	_, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "language circuit opened", "breaker", s.breaker.Name(), "error", err)
	} else {
		s.logger.WarnContext(ctx, "primary language service failed", "breaker", s.breaker.Name(), "error", err)
	}
	if ctx.Err() != nil {
		return nil, err
	}
	return s.fallback.ExtractEntities(ctx, text, hint)
}
