// Package gemini extracts entities with a Gemini model constrained to a JSON
// response schema.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
	"lifedash/pkg/platform/sentinel"
)

const DefaultModel = "gemini-2.5-flash"

// Generator is the slice of the genai client this adapter uses.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Service struct {
	generator Generator
	catalog   *catalog.Catalog
	model     string
	limiter   *rate.Limiter
	system    string
}

type Option func(*Service)

func WithModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// WithRateLimit paces calls to the model. Waiting honors the caller's
// deadline, so a saturated limiter surfaces as a timeout.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Service) {
		if perSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewClient connects to the Gemini API with an API key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return client, nil
}

// New builds the adapter. Pass client.Models as the generator.
func New(generator Generator, cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		catalog:   cat,
		model:     DefaultModel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.system = systemPrompt(cat)
	return s
}

// ExtractEntities sends one request and parses the schema-shaped reply.
func (s *Service) ExtractEntities(ctx context.Context, text string, hint models.Intent) ([]models.CandidateEntity, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("gemini rate limit: %w", err)
		}
	}

	temperature := float32(0)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(s.system, genai.RoleUser),
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema,
	}
	contents := []*genai.Content{genai.NewContentFromText(userPrompt(text, hint), genai.RoleUser)}

	resp, err := s.generator.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("gemini generate content: %w", ctxErr)
		}
		return nil, fmt.Errorf("gemini generate content: %w: %w", sentinel.ErrUnavailable, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("gemini returned no response: %w", sentinel.ErrUnavailable)
	}
	return parse(resp.Text())
}

type reply struct {
	Entities []replyEntity `json:"entities"`
}

type replyEntity struct {
	RawFragment  string       `json:"rawFragment"`
	DomainHint   string       `json:"domainHint"`
	Alternatives []string     `json:"alternatives"`
	Confidence   float64      `json:"confidence"`
	Title        string       `json:"title"`
	Fields       []replyField `json:"fields"`
	Start        int          `json:"start"`
	End          int          `json:"end"`
}

type replyField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// parse maps the reply onto candidates. Field values arrive as strings; the
// extractor coerces numbers and booleans.
func parse(raw string) ([]models.CandidateEntity, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "```"), "```")
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("gemini returned empty text: %w", sentinel.ErrMalformed)
	}

	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, errors.Join(sentinel.ErrMalformed, fmt.Errorf("decode gemini reply: %w", err))
	}

	out := make([]models.CandidateEntity, 0, len(r.Entities))
	for _, e := range r.Entities {
		data := make(models.Fields, len(e.Fields))
		for _, f := range e.Fields {
			name := strings.TrimSpace(f.Name)
			if name == "" {
				continue
			}
			data[name] = f.Value
		}
		alts := make([]catalog.Domain, 0, len(e.Alternatives))
		for _, a := range e.Alternatives {
			alts = append(alts, catalog.Domain(a))
		}
		out = append(out, models.CandidateEntity{
			RawFragment:  e.RawFragment,
			DomainHint:   catalog.Domain(e.DomainHint),
			Alternatives: alts,
			Confidence:   e.Confidence,
			Title:        e.Title,
			Data:         data,
			Offset:       models.Span{Start: e.Start, End: e.End},
		})
	}
	return out, nil
}
