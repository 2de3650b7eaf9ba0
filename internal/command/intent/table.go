package intent

import (
	"regexp"
	"sort"
	"strings"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
)

// Rule is one row of the tagged-match table.
type Rule struct {
	Category   models.Category
	Confidence float64
	Patterns   []*regexp.Regexp
	// Ignore lists phrases blanked out before this row's patterns run, so
	// idioms like "in order to" never count as the row's verb.
	Ignore []*regexp.Regexp
	// Slots are the details the category needs before it can be acted on.
	Slots []string
}

// Matches reports whether any pattern matches clean once Ignore phrases
// are removed.
func (r Rule) Matches(clean string) bool {
	for _, ig := range r.Ignore {
		clean = ig.ReplaceAllString(clean, " ")
	}
	for _, p := range r.Patterns {
		if p.MatchString(clean) {
			return true
		}
	}
	return false
}

// Table is evaluated in order; the first row with any matching pattern wins.
// A row without patterns is the fallback and must be last.
type Table []Rule

// UrgencyRule maps keywords to an urgency level. Evaluated in order.
type UrgencyRule struct {
	Level   models.Urgency
	Pattern *regexp.Regexp
}

func re(expr string) *regexp.Regexp { return regexp.MustCompile(`(?i)` + expr) }

// Precedence lists the categories from strongest to weakest signal.
var Precedence = []models.Category{
	models.CategoryAppointment,
	models.CategorySchedule,
	models.CategoryOrder,
	models.CategoryPriceCheck,
	models.CategoryComparison,
	models.CategoryNavigate,
	models.CategoryUpdate,
	models.CategoryAdd,
	models.CategoryQuery,
	models.CategoryLog,
	models.CategoryInquiry,
}

// clauseStart anchors a verb to the start of a request: the start of the
// text or of a clause, optionally after a polite or desire phrase. It keeps
// incidental verbs inside statements ("spent $20 to buy a gift") out.
const clauseStart = `(?:^|[,;.!?]\s*|\b(?:and|then|also)\s+)(?:please\s+|(?:can|could|would|will) you\s+(?:please\s+)?|i(?:'d| would) like to\s+|i want to\s+|i need to\s+|go ahead and\s+)?`

// DefaultTable builds the production table in Precedence order. The
// catalog's routing keywords extend the log row: a quantity next to a domain
// word ("blood pressure 120/80", "10000 steps") is a log even without a
// logging verb.
func DefaultTable(cat *catalog.Catalog) Table {
	rows := defaultRows(cat)
	table := make(Table, 0, len(Precedence))
	for _, category := range Precedence {
		if row, ok := rows[category]; ok {
			table = append(table, row)
		}
	}
	return table
}

func defaultRows(cat *catalog.Catalog) map[models.Category]Rule {
	log := []*regexp.Regexp{
		re(`\b(?:log|logged|record|recorded|track|tracked|spent|paid|weigh|weighed|ate|drank|walked|ran|slept|meditated|earned|received|filled up)\b`),
	}
	if vocab := vocabulary(cat); vocab != "" {
		log = append(log,
			re(`\d[\d.,/]*\s*(?:\w+\s+){0,2}?(?:`+vocab+`)\b`),
			re(`\b(?:`+vocab+`)\b\D{0,20}\d`),
		)
	}

	return map[models.Category]Rule{
		models.CategoryAppointment: {
			Category:   models.CategoryAppointment,
			Confidence: 0.9,
			Patterns: []*regexp.Regexp{
				re(`\b(?:book|make|set up|get)\b.{0,40}\b(?:appointment|appt|consultation|check-?up|cleaning)\b`),
				re(`\b(?:appointment|appt)\s+(?:with|at|for)\b`),
				re(`\b(?:see|visit)\s+(?:the\s+|my\s+|a\s+)?(?:doctor|dentist|vet|veterinarian|mechanic|dermatologist|therapist|optometrist)\b`),
			},
			Slots: []string{"provider", "date", "time"},
		},
		models.CategorySchedule: {
			Category:   models.CategorySchedule,
			Confidence: 0.85,
			Patterns: []*regexp.Regexp{
				re(`\b(?:schedule|reschedule|remind me|calendar)\b`),
				re(`\bset\s+(?:a|an)\s+(?:reminder|alarm)\b`),
			},
			Slots: []string{"date", "time"},
		},
		models.CategoryOrder: {
			Category:   models.CategoryOrder,
			Confidence: 0.9,
			Patterns: []*regexp.Regexp{
				re(clauseStart + `(?:order|reorder|buy|purchase)\s+(?:some|a|an|more|the|me)?\b`),
			},
			Ignore: []*regexp.Regexp{re(`\bin order (?:to|for)\b`)},
			Slots:  []string{"item", "vendor"},
		},
		models.CategoryPriceCheck: {
			Category:   models.CategoryPriceCheck,
			Confidence: 0.85,
			Patterns: []*regexp.Regexp{
				re(`\bhow much (?:is|are|does|do|would|will)\b`),
				re(`\b(?:price|prices|cost) (?:of|for)\b`),
				re(`\b(?:cheapest|price check)\b`),
			},
			Slots: []string{"item", "location"},
		},
		models.CategoryComparison: {
			Category:   models.CategoryComparison,
			Confidence: 0.8,
			Patterns: []*regexp.Regexp{
				re(`\b(?:compare|comparison|versus|vs\.?|better than|difference between)\b`),
			},
			Slots: []string{"options"},
		},
		models.CategoryNavigate: {
			Category:   models.CategoryNavigate,
			Confidence: 0.85,
			Patterns: []*regexp.Regexp{
				re(`^(?:please\s+)?(?:go to|open|show me|take me to|navigate to|switch to)\b`),
			},
		},
		models.CategoryUpdate: {
			Category:   models.CategoryUpdate,
			Confidence: 0.8,
			Patterns: []*regexp.Regexp{
				re(`\b(?:update|change|edit|modify|mark|rename|cancel|delete|remove|clear|reset|wipe|erase|purge)\b`),
			},
		},
		models.CategoryAdd: {
			Category:   models.CategoryAdd,
			Confidence: 0.8,
			Patterns: []*regexp.Regexp{
				re(`\b(?:add|create|new|save|put)\b`),
			},
		},
		models.CategoryQuery: {
			Category:   models.CategoryQuery,
			Confidence: 0.75,
			Patterns: []*regexp.Regexp{
				re(`^(?:what|when|where|which|who|how many|how much|did i|have i|show|list)\b`),
				re(`\?\s*$`),
			},
		},
		models.CategoryLog: {
			Category:   models.CategoryLog,
			Confidence: 0.8,
			Patterns:   log,
		},
		models.CategoryInquiry: {
			Category:   models.CategoryInquiry,
			Confidence: 0.5,
		},
	}
}

// DefaultUrgency is the keyword set for urgency, strongest first.
var DefaultUrgency = []UrgencyRule{
	{Level: models.UrgencyHigh, Pattern: re(`\b(?:urgent|urgently|asap|emergency|immediately|right away|right now)\b`)},
	{Level: models.UrgencyMedium, Pattern: re(`\b(?:soon|today|tonight|this week|tomorrow)\b`)},
}

// sameDay matches phrases whose deadline is the rest of the current day.
var sameDay = re(`\b(?:today|tonight)\b`)

// slotDetectors report whether a slot is already present in the text.
var slotDetectors = map[string]*regexp.Regexp{
	"provider": re(`\b(?:dr\.?|doctor|dentist|vet|veterinarian|mechanic|clinic|hospital|salon|groomer|therapist|optometrist|dermatologist)\b|\bwith\s+[a-z]+`),
	"date":     re(`\b(?:today|tomorrow|tonight|monday|tuesday|wednesday|thursday|friday|saturday|sunday|next (?:week|month)|this (?:week|weekend)|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2})\b|\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`),
	"time":     re(`\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b|\b\d{1,2}:\d{2}\b|\b(?:noon|midnight|morning|afternoon|evening)\b`),
	"item":     re(`\b(?:order|reorder|buy|purchase|price of|cost of|prices? for|how much (?:is|are|does|do))\s+(?:some\s+|a\s+|an\s+|more\s+|the\s+)?[a-z]{2,}`),
	"vendor":   re(`\b(?:from|at|on)\s+[a-z][\w'&]+`),
	"location": re(`\b(?:at|in|near|from)\s+[a-z][\w'&]+`),
	"options":  re(`\b(?:vs\.?|versus|or)\b|\bbetween\b.+\band\b`),
}

func vocabulary(cat *catalog.Catalog) string {
	if cat == nil {
		return ""
	}
	words := cat.Keywords()
	sort.SliceStable(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })
	quoted := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if seen[w] {
			continue
		}
		seen[w] = true
		quoted = append(quoted, strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`))
	}
	return strings.Join(quoted, "|")
}
