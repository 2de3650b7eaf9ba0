// Package resolve collapses duplicate outcomes and links commands that act on
// the same record, producing the external results in source order.
package resolve

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"lifedash/internal/command/models"
)

// namespace scopes result IDs so they never collide with other UUIDv5 users.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://lifedash.app/command-results"))

var repetition = regexp.MustCompile(`(?i)\b(?:again|another|second|twice|one more)\b`)

// Resolve keeps source order. Valid outcomes with the same domain and equal
// normalized data are one event restated: the later statement wins unless it
// carries a repetition marker. Results for the same record key link back to
// the previous one.
func Resolve(outcomes []models.ValidationOutcome) []models.CommandResult {
	keep := make([]bool, len(outcomes))
	for i := range outcomes {
		keep[i] = true
	}

	lastByContent := make(map[string]int)
	for i, o := range outcomes {
		if o.Status != models.StatusValid {
			continue
		}
		key := contentKey(o)
		if prev, seen := lastByContent[key]; seen && !repetition.MatchString(o.Entity.RawFragment) {
			keep[prev] = false
		}
		lastByContent[key] = i
	}

	results := make([]models.CommandResult, 0, len(outcomes))
	lastByRecord := make(map[string]string)
	for i, o := range outcomes {
		if !keep[i] {
			continue
		}
		r := toResult(o)
		if key := recordKey(o); key != "" {
			if prev, ok := lastByRecord[key]; ok {
				r.PreviousID = prev
			}
			lastByRecord[key] = r.ID
		}
		results = append(results, r)
	}
	return results
}

// ResultID is a UUIDv5 over the domain, the source span and the fragment.
func ResultID(o models.ValidationOutcome) string {
	name := fmt.Sprintf("%s|%d|%d|%s", o.Entity.Domain, o.Entity.Offset.Start, o.Entity.Offset.End, o.Entity.RawFragment)
	return uuid.NewSHA1(namespace, []byte(name)).String()
}

func toResult(o models.ValidationOutcome) models.CommandResult {
	issues := o.Issues
	if len(issues) == 0 {
		issues = nil
	}
	return models.CommandResult{
		ID:            ResultID(o),
		Domain:        o.Entity.Domain,
		Title:         o.Entity.Title,
		Fragment:      o.Entity.RawFragment,
		Data:          o.Normalized,
		Status:        statusOf(o.Status),
		Issues:        issues,
		Question:      o.Question,
		Failure:       o.Failure,
		RoutingReason: o.Entity.Reason,
		Confidence:    o.Entity.Confidence,
		Offset:        o.Entity.Offset,
		Destructive:   o.Destructive,
	}
}

func statusOf(s models.ValidationStatus) models.ResultStatus {
	switch s {
	case models.StatusValid:
		return models.ResultValid
	case models.StatusRejected:
		return models.ResultRejected
	default:
		return models.ResultNeedsClarification
	}
}

// contentKey compares normalized data field by field. encoding/json sorts
// map keys, which makes the encoding canonical.
func contentKey(o models.ValidationOutcome) string {
	encoded, err := json.Marshal(o.Normalized)
	if err != nil {
		encoded = []byte(fmt.Sprint(o.Normalized))
	}
	return string(o.Entity.Domain) + "|" + string(encoded)
}

// recordKey names the logical record a command acts on, if any.
func recordKey(o models.ValidationOutcome) string {
	for _, field := range []string{models.FieldName, models.FieldTarget, "title"} {
		if v, ok := o.Normalized.String(field); ok && strings.TrimSpace(v) != "" {
			return string(o.Entity.Domain) + "|" + strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}
