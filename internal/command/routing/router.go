// Package routing assigns every candidate entity to exactly one catalog
// domain using the catalog's keyword table and ambiguity policies.
package routing

import (
	"regexp"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
)

var moneyShaped = regexp.MustCompile(`(?i)\$\s*\d|\b\d[\d,]*(?:\.\d+)?\s*(?:dollars|bucks|usd)\b`)

type Router struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Router {
	return &Router{catalog: cat}
}

// Route never fails and returns one routed entity per candidate, in order.
func (r *Router) Route(candidates []models.CandidateEntity) []models.RoutedEntity {
	out := make([]models.RoutedEntity, len(candidates))
	for i, c := range candidates {
		out[i] = r.route(c)
	}
	return out
}

func (r *Router) route(c models.CandidateEntity) models.RoutedEntity {
	routed := models.RoutedEntity{CandidateEntity: c}

	if c.DomainHint != catalog.Ambiguous && r.catalog.Has(c.DomainHint) {
		routed.Domain = c.DomainHint
		routed.Reason = models.ReasonDirectMatch
		return routed
	}

	text := c.RawFragment + " " + c.Title
	alts := r.validAlternatives(c.Alternatives)

	if len(alts) == 2 {
		if policy, ok := r.catalog.Policy(alts[0], alts[1]); ok {
			return applyPolicy(routed, policy, text)
		}
	}

	matches := restrict(r.catalog.Match(text), alts)
	if len(matches) > 0 {
		top := matches[0]
		for _, m := range matches[1:] {
			if policy, ok := r.catalog.Policy(top.Domain, m.Domain); ok {
				return applyPolicy(routed, policy, text)
			}
		}
		routed.Domain = top.Domain
		routed.Reason = models.ReasonKeywordOverride
		return routed
	}

	routed.Reason = models.ReasonDefaultFallback
	if isMoney(c) {
		routed.Domain = catalog.Financial
	} else {
		routed.Domain = catalog.Tasks
	}
	return routed
}

func applyPolicy(routed models.RoutedEntity, policy *catalog.AmbiguityPolicy, text string) models.RoutedEntity {
	domain, asked := policy.Decide(text)
	routed.Domain = domain
	routed.Reason = models.ReasonAmbiguityPolicy
	routed.Confirm = asked
	routed.Alternative = policy.Other(domain)
	return routed
}

func (r *Router) validAlternatives(alts []catalog.Domain) []catalog.Domain {
	var out []catalog.Domain
	for _, a := range alts {
		if r.catalog.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// restrict keeps matches inside alts. An empty restriction, or one that
// would discard every match, leaves the matches unchanged.
func restrict(matches []catalog.KeywordMatch, alts []catalog.Domain) []catalog.KeywordMatch {
	if len(alts) == 0 {
		return matches
	}
	allowed := make(map[catalog.Domain]bool, len(alts))
	for _, a := range alts {
		allowed[a] = true
	}
	var kept []catalog.KeywordMatch
	for _, m := range matches {
		if allowed[m.Domain] {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return matches
	}
	return kept
}

func isMoney(c models.CandidateEntity) bool {
	if _, ok := c.Data.Number(models.FieldAmount); ok {
		return true
	}
	return moneyShaped.MatchString(c.RawFragment)
}
