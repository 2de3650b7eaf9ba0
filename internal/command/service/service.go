package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"lifedash/internal/catalog"
	"lifedash/internal/command/compose"
	"lifedash/internal/command/extract"
	"lifedash/internal/command/intent"
	"lifedash/internal/command/metrics"
	"lifedash/internal/command/models"
	"lifedash/internal/command/ports"
	"lifedash/internal/command/resolve"
	"lifedash/internal/command/routing"
	"lifedash/internal/command/sanitize"
	"lifedash/internal/command/validation"
	"lifedash/pkg/platform/audit"
	"lifedash/pkg/requestcontext"
)

var tracer = otel.Tracer("lifedash/internal/command/service")

const defaultValidationWorkers = 4

// Pipeline holds the stage components. All of them are stateless and safe
// for concurrent use.
type Pipeline struct {
	Sanitizer  *sanitize.Sanitizer
	Classifier *intent.Classifier
	Extractor  *extract.Extractor
	Router     *routing.Router
	Validator  *validation.Validator
}

// PipelineConfig tunes the stages built by NewPipeline. Zero values select
// each stage's default.
type PipelineConfig struct {
	MaxInputRunes  int
	MaxEntities    int
	MinConfidence  float64
	ExtractTimeout time.Duration
}

// NewPipeline builds every stage from one catalog and language service.
func NewPipeline(cat *catalog.Catalog, language ports.LanguageService, cfg PipelineConfig) Pipeline {
	return Pipeline{
		Sanitizer:  sanitize.New(cfg.MaxInputRunes),
		Classifier: intent.NewClassifier(intent.DefaultTable(cat), nil),
		Extractor: extract.New(language, cat,
			extract.WithMaxEntities(cfg.MaxEntities),
			extract.WithTimeout(cfg.ExtractTimeout),
		),
		Router:    routing.New(cat),
		Validator: validation.New(cat, validation.WithMinConfidence(cfg.MinConfidence)),
	}
}

// Service runs one utterance through sanitize, classify, extract, route,
// validate, resolve and compose, then persists the valid results.
type Service struct {
	pipeline Pipeline
	entries  ports.EntryRepository
	audit    ports.AuditPort
	logger   *slog.Logger
	metrics  *metrics.Metrics
	workers  int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPort) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithValidationWorkers bounds the validation fan-out.
func WithValidationWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func New(pipeline Pipeline, entries ports.EntryRepository, opts ...Option) (*Service, error) {
	switch {
	case pipeline.Sanitizer == nil, pipeline.Classifier == nil, pipeline.Extractor == nil,
		pipeline.Router == nil, pipeline.Validator == nil:
		return nil, errors.New("every pipeline stage is required")
	case entries == nil:
		return nil, errors.New("entry repository is required")
	}
	s := &Service{
		pipeline: pipeline,
		entries:  entries,
		logger:   slog.Default(),
		workers:  defaultValidationWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Interpret never returns an error: every failure mode is a typed outcome on
// the response.
func (s *Service) Interpret(ctx context.Context, req models.Request) *models.Response {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "command.interpret")
	defer span.End()

	if req.UserID == "" {
		req.UserID = requestcontext.UserID(ctx)
	}

	clean, flags := s.pipeline.Sanitizer.Sanitize(req.Message)
	s.recordFlags(ctx, req, flags)

	var resp models.Response
	var in models.Intent
	if clean == "" {
		resp = compose.NoCommand()
	} else {
		in = s.pipeline.Classifier.Classify(clean, req.UserTime)
		resp = s.process(ctx, req, clean, in)
		resp.Intent = &in
	}
	if flags.Flagged() || flags.WasTruncated {
		resp.SecurityChecks = &flags
	}

	s.finish(ctx, req, &resp, in, time.Since(start))
	span.SetAttributes(
		attribute.String("command.outcome", string(resp.Outcome)),
		attribute.String("command.intent", string(in.Category)),
		attribute.Int("command.results", len(resp.Results)),
	)
	return &resp
}

func (s *Service) process(ctx context.Context, req models.Request, clean string, in models.Intent) models.Response {
	candidates, err := s.extract(ctx, clean, in)
	if err != nil {
		s.logger.WarnContext(ctx, "language service unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return compose.Unavailable()
	}
	if len(candidates) == 0 {
		return compose.Compose(nil)
	}

	routed := s.pipeline.Router.Route(candidates)
	for _, r := range routed {
		s.metrics.IncrementRoutingReason(string(r.Reason))
	}

	outcomes := s.validateAll(ctx, routed, validation.Options{Confirmed: req.Confirmed, Units: req.Units()})
	results := resolve.Resolve(outcomes)
	s.persist(ctx, req, results)
	s.reportBlocked(ctx, req, results)

	return compose.Compose(results)
}

func (s *Service) extract(ctx context.Context, clean string, in models.Intent) ([]models.CandidateEntity, error) {
	ctx, span := tracer.Start(ctx, "command.extract")
	defer span.End()

	start := time.Now()
	candidates, err := s.pipeline.Extractor.Extract(ctx, clean, in)
	if err != nil {
		s.metrics.ObserveExtractLatency("error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "extractor unavailable")
		return nil, err
	}
	s.metrics.ObserveExtractLatency("ok", time.Since(start))
	span.SetAttributes(attribute.Int("command.candidates", len(candidates)))
	return candidates, nil
}

// validateAll fans validation out over a bounded group. Outcomes keep the
// input order.
func (s *Service) validateAll(ctx context.Context, routed []models.RoutedEntity, opts validation.Options) []models.ValidationOutcome {
	_, span := tracer.Start(ctx, "command.validate")
	defer span.End()

	outcomes := make([]models.ValidationOutcome, len(routed))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, entity := range routed {
		g.Go(func() error {
			outcomes[i] = s.pipeline.Validator.Validate(entity, opts)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// persist saves valid results one at a time in source order, so a later
// command sees the effect of an earlier one. A dry run leaves them valid.
func (s *Service) persist(ctx context.Context, req models.Request, results []models.CommandResult) {
	if req.DryRun {
		return
	}
	ctx, span := tracer.Start(ctx, "command.persist")
	defer span.End()

	for i := range results {
		r := &results[i]
		if r.Status != models.ResultValid {
			continue
		}
		data := r.Data.Clone()
		if data == nil {
			data = models.Fields{}
		}
		if req.UserTime != nil && req.UserTime.LocalHour != nil {
			data["loggedLocalHour"] = float64(*req.UserTime.LocalHour)
		}
		r.Data = data

		id, err := s.entries.Save(ctx, req.UserID, r.Domain, data)
		if err != nil {
			r.Status = models.ResultFailed
			r.Failure = models.FailurePersistence
			r.Issues = append(r.Issues, "could not save entry")
			s.metrics.IncrementPersistenceFailure(string(r.Domain))
			span.RecordError(err)
			s.logger.ErrorContext(ctx, "failed to save entry",
				"request_id", requestcontext.RequestID(ctx),
				"domain", r.Domain,
				"result_id", r.ID,
				"error", err,
			)
			s.emit(ctx, req, audit.Event{
				Action:  string(audit.EventEntrySaveFailed),
				Subject: r.ID,
				Domain:  string(r.Domain),
				Outcome: string(models.ResultFailed),
				Reason:  err.Error(),
			})
			continue
		}
		r.Status = models.ResultSaved
		r.EntryID = id
		s.emit(ctx, req, audit.Event{
			Action:  string(audit.EventEntrySaved),
			Subject: id,
			Domain:  string(r.Domain),
			Outcome: string(models.ResultSaved),
		})
	}
}

func (s *Service) reportBlocked(ctx context.Context, req models.Request, results []models.CommandResult) {
	for _, r := range results {
		if !r.Destructive || r.Status != models.ResultNeedsClarification {
			continue
		}
		s.emit(ctx, req, audit.Event{
			Action:  string(audit.EventDestructiveBlocked),
			Subject: r.Fragment,
			Domain:  string(r.Domain),
			Outcome: string(r.Status),
			Reason:  "confirmation required",
		})
	}
}

func (s *Service) recordFlags(ctx context.Context, req models.Request, flags models.SecurityFlags) {
	names := flags.Names()
	for _, name := range names {
		s.metrics.IncrementSecurityFlag(name)
	}
	if !flags.Flagged() {
		return
	}
	s.logger.WarnContext(ctx, "input sanitized",
		"request_id", requestcontext.RequestID(ctx),
		"flags", names,
		"original_length", flags.OriginalLength,
	)
	s.emit(ctx, req, audit.Event{
		Action:  string(audit.EventInputSanitized),
		Subject: fmt.Sprintf("%d runes", flags.OriginalLength),
		Outcome: string(models.FailureSecurityFlagged),
		Reason:  fmt.Sprint(names),
	})
}

func (s *Service) finish(ctx context.Context, req models.Request, resp *models.Response, in models.Intent, elapsed time.Duration) {
	s.metrics.IncrementCommand(string(resp.Outcome))
	for _, r := range resp.Results {
		s.metrics.IncrementEntity(string(r.Domain), string(r.Status))
	}
	s.metrics.ObserveInterpretLatency(elapsed)

	s.logger.InfoContext(ctx, "command interpreted",
		"request_id", requestcontext.RequestID(ctx),
		"outcome", resp.Outcome,
		"intent", in.Category,
		"results", len(resp.Results),
		"dry_run", req.DryRun,
		"duration_ms", elapsed.Milliseconds(),
	)
	s.emit(ctx, req, audit.Event{
		Action:  string(audit.EventCommandInterpreted),
		Outcome: string(resp.Outcome),
		Reason:  string(in.Category),
	})
}

// emit never fails the request; the publisher is non-blocking and a full
// buffer only costs the event.
func (s *Service) emit(ctx context.Context, req models.Request, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.UserID = req.UserID
	event.RequestID = requestcontext.RequestID(ctx)
	event.Device = requestcontext.DeviceName(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", event.RequestID,
			"action", event.Action,
			"error", err,
		)
	}
}
