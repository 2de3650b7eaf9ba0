// Package extract turns sanitized text into ordered candidate entities. The
// language service does the decomposition; this package enforces the
// contract on whatever the service returns.
package extract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
	"lifedash/internal/command/ports"
	textutil "lifedash/pkg/platform/strings"
)

const (
	DefaultMaxEntities = 20
	DefaultTimeout     = 8 * time.Second

	titleRunes = 60
)

// ErrExtractorUnavailable is returned for every language service failure,
// including timeouts. Callers branch on it with errors.Is.
var ErrExtractorUnavailable = errors.New("extractor unavailable")

// Cause narrows down why the service could not answer.
type Cause string

const (
	CauseTimeout  Cause = "timeout"
	CauseOutage   Cause = "outage"
	CauseCanceled Cause = "canceled"
)

// UnavailableError wraps the service failure with its cause.
type UnavailableError struct {
	Cause Cause
	Err   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("extractor unavailable [%s]: %v", e.Cause, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrExtractorUnavailable }

type Extractor struct {
	service     ports.LanguageService
	catalog     *catalog.Catalog
	maxEntities int
	timeout     time.Duration
}

type Option func(*Extractor)

func WithMaxEntities(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxEntities = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func New(service ports.LanguageService, cat *catalog.Catalog, opts ...Option) *Extractor {
	e := &Extractor{
		service:     service,
		catalog:     cat,
		maxEntities: DefaultMaxEntities,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract calls the language service once, with no retry. The intent is
// passed as a hint only. An empty result is not an error.
func (e *Extractor) Extract(ctx context.Context, clean string, hint models.Intent) ([]models.CandidateEntity, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.service.ExtractEntities(ctx, clean, hint)
	if err != nil {
		return nil, &UnavailableError{Cause: causeOf(ctx, err), Err: err}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &UnavailableError{Cause: causeOf(ctx, ctxErr), Err: ctxErr}
	}

	out := make([]models.CandidateEntity, 0, len(raw))
	searchFrom := 0
	for _, c := range raw {
		if strings.TrimSpace(c.RawFragment) == "" && len(c.Data) == 0 {
			continue
		}
		c = e.normalize(clean, c, searchFrom)
		if c.Offset.End > searchFrom {
			searchFrom = c.Offset.End
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Offset.Start < out[j].Offset.Start
	})
	if len(out) > e.maxEntities {
		out = out[:e.maxEntities]
	}
	return out, nil
}

func causeOf(ctx context.Context, err error) Cause {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return CauseTimeout
	case errors.Is(err, context.Canceled):
		return CauseCanceled
	default:
		return CauseOutage
	}
}

func (e *Extractor) normalize(clean string, c models.CandidateEntity, searchFrom int) models.CandidateEntity {
	c.RawFragment = textutil.CollapseSpace(c.RawFragment)
	c.Confidence = clamp(c.Confidence)
	c.Data = coerce(c.Data)
	c.DomainHint = e.normalizeDomain(c.DomainHint)
	c.Alternatives = e.normalizeAlternatives(c.Alternatives)
	c.Offset = locate(clean, c.RawFragment, c.Offset, searchFrom)

	if strings.TrimSpace(c.Title) == "" {
		c.Title = deriveTitle(c.RawFragment, c.Data)
	} else {
		c.Title = textutil.CollapseSpace(c.Title)
	}
	return c
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func (e *Extractor) normalizeDomain(d catalog.Domain) catalog.Domain {
	if d == "" {
		return catalog.Ambiguous
	}
	norm, _ := e.catalog.Normalize(string(d))
	return norm
}

func (e *Extractor) normalizeAlternatives(alts []catalog.Domain) []catalog.Domain {
	if len(alts) == 0 {
		return nil
	}
	out := make([]catalog.Domain, 0, len(alts))
	seen := make(map[catalog.Domain]bool, len(alts))
	for _, a := range alts {
		d, ok := e.catalog.Normalize(string(a))
		if !ok || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// coerce turns loosely typed service output into float64, bool or string.
func coerce(data models.Fields) models.Fields {
	out := make(models.Fields, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case nil:
			continue
		case float64, bool:
			out[k] = val
		case float32:
			out[k] = float64(val)
		case int:
			out[k] = float64(val)
		case int64:
			out[k] = float64(val)
		case string:
			out[k] = coerceString(val)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

func coerceString(s string) any {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	numeric := strings.ReplaceAll(strings.TrimPrefix(trimmed, "$"), ",", "")
	if f, err := strconv.ParseFloat(numeric, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return trimmed
}

// locate keeps a reported span when it really covers the fragment and
// otherwise finds the fragment in the text, preferring matches at or after
// the end of the previous candidate. Spans are rune indexes.
func locate(clean, fragment string, reported models.Span, searchFrom int) models.Span {
	runes := []rune(clean)
	n := utf8.RuneCountInString(fragment)
	if reported.Start >= 0 && reported.End <= len(runes) && reported.End-reported.Start == n && n > 0 &&
		strings.EqualFold(string(runes[reported.Start:reported.End]), fragment) {
		return reported
	}
	if n == 0 {
		return models.Span{Start: len(runes), End: len(runes)}
	}

	lower := strings.ToLower(clean)
	needle := strings.ToLower(fragment)
	lowerRunes := []rune(lower)
	if searchFrom > len(lowerRunes) {
		searchFrom = len(lowerRunes)
	}
	byteFrom := len(string(lowerRunes[:searchFrom]))
	if i := strings.Index(lower[byteFrom:], needle); i >= 0 {
		start := searchFrom + utf8.RuneCountInString(lower[byteFrom:byteFrom+i])
		return models.Span{Start: start, End: start + n}
	}
	if i := strings.Index(lower, needle); i >= 0 {
		start := utf8.RuneCountInString(lower[:i])
		return models.Span{Start: start, End: start + n}
	}
	// Paraphrased fragments sort after everything that can be placed.
	return models.Span{Start: len(runes), End: len(runes)}
}

func deriveTitle(fragment string, data models.Fields) string {
	if fragment == "" {
		if t, ok := data.String(models.FieldType); ok {
			return textutil.CapitalizeFirst(strings.ReplaceAll(t, "_", " "))
		}
		return "Entry"
	}
	return textutil.CapitalizeFirst(textutil.Ellipsize(fragment, titleRunes))
}
