// Package rules is a deterministic language service. It splits an utterance
// on list separators and recognizes each piece with a fixed pattern table.
// It backs local development, tests, and the "rules" language backend.
package rules

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
	"lifedash/internal/command/ports"
)

// genericConfidence marks a piece that only mentioned a life area.
const genericConfidence = 0.3

var separator = regexp.MustCompile(`(?i),\s+|;\s*|\s+(?:and then|and also|and|then|also|plus)\s+`)

type Service struct {
	catalog *catalog.Catalog
	rules   []rule
}

var _ ports.LanguageService = (*Service)(nil)

func New(cat *catalog.Catalog) *Service {
	return &Service{catalog: cat, rules: defaultRules()}
}

type piece struct {
	start, end int // byte offsets into the text
}

// ExtractEntities decomposes text left to right. A piece nothing recognizes
// is joined to the next piece when that one is not recognizable on its own
// either; otherwise it becomes a low-confidence entity if it names a life
// area, or is dropped.
func (s *Service) ExtractEntities(ctx context.Context, text string, _ models.Intent) ([]models.CandidateEntity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pieces := split(text)
	out := make([]models.CandidateEntity, 0, len(pieces))
	for i := 0; i < len(pieces); i++ {
		p := pieces[i]
		fragment := text[p.start:p.end]
		if c, ok := s.recognize(fragment); ok {
			out = append(out, s.place(text, p, c))
			continue
		}
		if i+1 < len(pieces) {
			next := pieces[i+1]
			if _, ok := s.recognize(text[next.start:next.end]); !ok {
				pieces[i+1] = piece{start: p.start, end: next.end}
				continue
			}
		}
		if c, ok := s.generic(fragment); ok {
			out = append(out, s.place(text, p, c))
		}
	}
	return out, nil
}

func split(text string) []piece {
	var out []piece
	start := 0
	add := func(from, to int) {
		for from < to && text[from] == ' ' {
			from++
		}
		for to > from && text[to-1] == ' ' {
			to--
		}
		if to > from {
			out = append(out, piece{start: from, end: to})
		}
	}
	for _, loc := range separator.FindAllStringIndex(text, -1) {
		add(start, loc[0])
		start = loc[1]
	}
	add(start, len(text))
	return out
}

func (s *Service) place(text string, p piece, c models.CandidateEntity) models.CandidateEntity {
	c.RawFragment = text[p.start:p.end]
	c.Offset = models.Span{
		Start: utf8.RuneCountInString(text[:p.start]),
		End:   utf8.RuneCountInString(text[:p.end]),
	}
	return c
}

func (s *Service) recognize(fragment string) (models.CandidateEntity, bool) {
	for _, r := range s.rules {
		data, ok := r.capture(fragment)
		if !ok {
			continue
		}
		domain := r.domain
		if r.domainOf != nil {
			domain = r.domainOf(s.catalog, data, fragment)
		}
		c := models.CandidateEntity{
			DomainHint: domain,
			Confidence: r.confidence,
			Data:       data,
		}
		if title, ok := data.String("title"); ok {
			c.Title = title
		}
		if domain != catalog.Ambiguous {
			if alts := s.rivals(domain, fragment, r.open); len(alts) > 1 {
				c.DomainHint = catalog.Ambiguous
				c.Alternatives = alts
			}
		}
		return c, true
	}
	return models.CandidateEntity{}, false
}

// rivals lists the domain plus every other domain the fragment mentions that
// is routinely confused with it. An open rule competes with every mention.
func (s *Service) rivals(domain catalog.Domain, fragment string, open bool) []catalog.Domain {
	alts := []catalog.Domain{domain}
	for _, m := range s.catalog.Match(fragment) {
		if m.Domain == domain {
			continue
		}
		if _, paired := s.catalog.Policy(domain, m.Domain); paired || open {
			alts = append(alts, m.Domain)
		}
	}
	return alts
}

func (s *Service) generic(fragment string) (models.CandidateEntity, bool) {
	matches := s.catalog.Match(fragment)
	if len(matches) == 0 {
		return models.CandidateEntity{}, false
	}
	domain := matches[0].Domain
	data := models.Fields{"note": strings.TrimSpace(fragment)}
	if spec, ok := s.catalog.Spec(domain); ok && spec.DefaultType != "" {
		data[models.FieldType] = spec.DefaultType
	}
	return models.CandidateEntity{
		DomainHint: domain,
		Confidence: genericConfidence,
		Data:       data,
	}, true
}
