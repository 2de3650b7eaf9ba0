// Package intent assigns a coarse intent to sanitized text. It is purely
// pattern driven and makes no external calls.
package intent

import (
	"lifedash/internal/command/models"
)

// approvalCategories may trigger an external side effect and need
// affirmative confirmation before execution.
var approvalCategories = map[models.Category]bool{
	models.CategoryOrder:       true,
	models.CategoryAppointment: true,
}

// LateHour is the local hour from which same-day deadlines count as urgent.
const LateHour = 20

type Classifier struct {
	table   Table
	urgency []UrgencyRule
}

// NewClassifier takes the match table and urgency rules explicitly so tests
// can substitute smaller ones. A nil urgency uses DefaultUrgency.
func NewClassifier(table Table, urgency []UrgencyRule) *Classifier {
	if urgency == nil {
		urgency = DefaultUrgency
	}
	return &Classifier{table: table, urgency: urgency}
}

// Classify returns the intent for clean text. The first table row with a
// matching pattern wins; ties are impossible because rows are ordered.
func (c *Classifier) Classify(clean string, userTime *models.UserTime) models.Intent {
	rule := c.match(clean)

	return models.Intent{
		Category:          rule.Category,
		Confidence:        rule.Confidence,
		Urgency:           c.urgencyOf(clean, userTime),
		RequiredInfo:      missingSlots(rule.Slots, clean),
		NeedsUserApproval: approvalCategories[rule.Category],
	}
}

func (c *Classifier) match(clean string) Rule {
	var fallback Rule
	for _, rule := range c.table {
		if len(rule.Patterns) == 0 {
			fallback = rule
			continue
		}
		if rule.Matches(clean) {
			return rule
		}
	}
	if fallback.Category == "" {
		return Rule{Category: models.CategoryInquiry}
	}
	return fallback
}

func (c *Classifier) urgencyOf(clean string, userTime *models.UserTime) models.Urgency {
	for _, u := range c.urgency {
		if !u.Pattern.MatchString(clean) {
			continue
		}
		if u.Level == models.UrgencyMedium && lateInDay(userTime) && sameDay.MatchString(clean) {
			return models.UrgencyHigh
		}
		return u.Level
	}
	return models.UrgencyLow
}

func lateInDay(ut *models.UserTime) bool {
	return ut != nil && ut.LocalHour != nil && *ut.LocalHour >= LateHour
}

func missingSlots(slots []string, clean string) []string {
	missing := make([]string, 0, len(slots))
	for _, slot := range slots {
		if det, ok := slotDetectors[slot]; ok && det.MatchString(clean) {
			continue
		}
		missing = append(missing, slot)
	}
	return missing
}
