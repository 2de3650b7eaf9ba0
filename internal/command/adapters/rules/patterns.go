package rules

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
)

// rule is one shape of entity the adapter recognizes. Named capture groups
// become structured fields; numeric groups are parsed as float64 and
// "...Unit" groups are canonicalized.
type rule struct {
	kind       string
	domain     catalog.Domain
	confidence float64
	pattern    *regexp.Regexp
	// reject vetoes the rule when it also matches the piece.
	reject *regexp.Regexp
	// anyOf lists fields of which at least one must be captured.
	anyOf []string
	// open lets every other domain the catalog matches compete in routing,
	// not only the declared confusable pairs.
	open     bool
	enrich   func(piece string, f models.Fields)
	domainOf func(c *catalog.Catalog, f models.Fields, piece string) catalog.Domain
}

func re(expr string) *regexp.Regexp { return regexp.MustCompile(`(?i)` + expr) }

const (
	num   = `-?\d+(?:\.\d+)?`
	money = `-?\d[\d,]*(?:\.\d{1,2})?`

	massUnit     = `lbs?|pounds?|kgs?|kilos?|kilograms?`
	distanceUnit = `miles?|mi|km|kilometers?|kilometres?|k`
	durationUnit = `minutes?|mins?|hours?|hrs?|h`
	volumeUnit   = `fl\s*oz|oz|ounces?|ml|milliliters?|liters?|litres?|l|cups?|glasses?`
)

var numericFields = map[string]bool{
	"systolic": true, "diastolic": true, "heartRate": true, "glucose": true,
	"temperature": true, "weight": true, "hours": true, "gallons": true,
	"cost": true, "amount": true, "steps": true, "distance": true,
	"duration": true, "volume": true, "calories": true,
}

var (
	merchantRe = regexp.MustCompile(`\b(?:at|from)\s+(?:(?i:the|a|an|my|our)\s+)?([A-Za-z][\w'&.-]*(?:\s+[A-Z][\w'&.-]*)*)`)
	categoryRe = re(`\bon\s+(?:a\s+|an\s+|the\s+|some\s+)?([a-z][a-z ]{1,30}?)(?:\s+(?:at|from|for)\b|$)`)
	dateRe     = re(`\b(today|tomorrow|tonight|monday|tuesday|wednesday|thursday|friday|saturday|sunday|next (?:week|month)|this (?:week|weekend)|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2}|\d{1,2}/\d{1,2}(?:/\d{2,4})?)\b`)
	timeRe     = re(`\b(\d{1,2}(?::\d{2})?\s*(?:am|pm)|\d{1,2}:\d{2}|noon|midnight)\b`)
)

func enrichMoney(piece string, f models.Fields) {
	if m := merchantRe.FindStringSubmatch(piece); m != nil {
		f["merchant"] = m[1]
	}
	if m := categoryRe.FindStringSubmatch(piece); m != nil {
		f["category"] = strings.ToLower(strings.TrimSpace(m[1]))
	}
}

var (
	gallonsRe = re(`\b(` + num + `)\s*(gallons?|gal|liters?|litres?)\b`)
	costRe    = re(`\$\s*(` + money + `)`)
)

func enrichFuel(piece string, f models.Fields) {
	if m := gallonsRe.FindStringSubmatchIndex(piece); m != nil {
		f["gallons"] = typed("gallons", signed(piece, m[2], m[3]))
		f["gallonsUnit"] = typed("gallonsUnit", piece[m[4]:m[5]])
	}
	if m := costRe.FindStringSubmatchIndex(piece); m != nil {
		f["cost"] = typed("cost", signed(piece, m[2], m[3]))
	}
	if m := merchantRe.FindStringSubmatch(piece); m != nil {
		f["station"] = m[1]
	}
}

func enrichSchedule(piece string, f models.Fields) {
	if m := dateRe.FindStringSubmatch(piece); m != nil {
		f["date"] = strings.ToLower(m[1])
	}
	if m := timeRe.FindStringSubmatch(piece); m != nil {
		f["time"] = strings.ToLower(m[1])
	}
}

// payeeStopwords are words the payee group can swallow when the bill is
// named after a verb ("add bill electric", "pay the bill").
var payeeStopwords = map[string]bool{
	"add": true, "log": true, "record": true, "new": true, "pay": true, "paid": true,
	"a": true, "an": true, "the": true, "my": true, "our": true, "this": true, "that": true,
	"was": true, "is": true, "of": true, "due": true,
}

// enrichBill names the bill after its payee so later commands about the same
// bill refer to the same record.
func enrichBill(_ string, f models.Fields) {
	payee, _ := f.String("payee")
	if payee == "" || payeeStopwords[payee] {
		delete(f, "payee")
		return
	}
	f[models.FieldName] = payee + " bill"
	if status, ok := f.String("status"); ok {
		f["status"] = strings.ToLower(status)
		f[models.FieldAction] = "update"
	}
}

// targetDomain resolves the section a command talks about from its target
// words, trying the whole phrase, then each word from the right.
func targetDomain(c *catalog.Catalog, f models.Fields, piece string) catalog.Domain {
	target, _ := f.String(models.FieldTarget)
	if d, ok := c.Normalize(target); ok {
		return d
	}
	words := strings.Fields(target)
	for i := len(words) - 1; i >= 0; i-- {
		if d, ok := c.Normalize(words[i]); ok {
			return d
		}
	}
	if matches := c.Match(piece); len(matches) > 0 {
		return matches[0].Domain
	}
	return catalog.Ambiguous
}

// navigationTarget stores the resolved section as the target.
func navigationTarget(c *catalog.Catalog, f models.Fields, piece string) catalog.Domain {
	if d := targetDomain(c, f, piece); d != catalog.Ambiguous {
		f[models.FieldTarget] = string(d)
	}
	return catalog.Navigation
}

// defaultRules is ordered: the first rule that matches a piece wins.
func defaultRules() []rule {
	return []rule{
		{
			kind: "delete", confidence: 0.9, domainOf: targetDomain,
			pattern: re(`\b(?P<action>delete|remove|clear|erase|wipe|purge|reset)\s+(?P<scope>all\s+|every\s+|everything\s+)?(?:(?:of|in)\s+)?(?:my\s+|the\s+)?(?P<target>[a-z][a-z -]{1,40})$`),
		},
		{
			kind: "navigate", confidence: 0.9, domainOf: navigationTarget,
			pattern: re(`^(?:please\s+)?(?:go to|open|show me|take me to|navigate to|switch to)\s+(?:the\s+|my\s+)?(?P<target>[a-z][a-z -]{1,30})$`),
		},
		{
			kind: "task", domain: catalog.Tasks, confidence: 0.85, enrich: enrichSchedule,
			pattern: re(`\b(?:remind me to|remember to|i need to|need to|todo:?|to-do:?|add (?:a )?task:?)\s+(?P<title>.+)$`),
		},
		{
			kind: "blood_pressure", domain: catalog.Health, confidence: 0.95,
			pattern: re(`\b(?:blood pressure|bp)\s*(?:of|was|is|at|:)?\s*(?P<systolic>\d{1,3})\s*/\s*(?P<diastolic>\d{1,3})\b`),
		},
		{
			kind: "heart_rate", domain: catalog.Health, confidence: 0.9,
			pattern: re(`\b(?:heart rate|pulse|resting hr)\s*(?:of|was|is|at|:)?\s*(?P<heartRate>\d{1,3})(?:\s*bpm)?\b`),
		},
		{
			kind: "glucose", domain: catalog.Health, confidence: 0.9,
			pattern: re(`\b(?:glucose|blood sugar)\s*(?:level\s*)?(?:of|was|is|at|:)?\s*(?P<glucose>` + num + `)\s*(?P<glucoseUnit>mg/dl|mmol/l)?`),
		},
		{
			kind: "temperature", domain: catalog.Health, confidence: 0.85,
			pattern: re(`\b(?:temperature|temp|fever)\s*(?:of|was|is|at|:)?\s*(?P<temperature>` + num + `)\s*°?\s*(?P<temperatureUnit>fahrenheit|celsius|f|c)?\b`),
		},
		{
			kind: "sleep", domain: catalog.Health, confidence: 0.85,
			pattern: re(`\bslept\s+(?:for\s+)?(?P<hours>` + num + `)\s*(?:hours?|hrs?|h)\b|\b(?P<sleepHours>` + num + `)\s*(?:hours?|hrs?)\s+of\s+sleep\b`),
			anyOf:   []string{"hours", "sleepHours"},
		},
		{
			kind: "weight", domain: catalog.Health, confidence: 0.9,
			pattern: re(`\b(?:weigh(?:ed|s)?|weight(?:\s+(?:is|was|of))?:?)\s*(?P<weight>` + num + `)\s*(?P<weightUnit>` + massUnit + `)?\b`),
		},
		{
			kind: "fuel", domain: catalog.Vehicles, confidence: 0.85, enrich: enrichFuel,
			pattern: re(`\b(?:filled up|fill up|fuel|gas|tank)\b`),
			reject:  re(`\bgas\s+bill\b`),
			anyOf:   []string{"gallons", "cost"},
		},
		{
			kind: "income", domain: catalog.Financial, confidence: 0.85, enrich: enrichMoney,
			pattern: re(`\b(?:earned|received|got paid|income|salary|paycheck|refund)\b\D{0,30}?\$?\s*(?P<amount>` + money + `)`),
		},
		{
			kind: "bill_status", domain: catalog.Financial, confidence: 0.85, open: true, enrich: enrichBill,
			pattern: re(`\b(?:mark|set|flag)\s+(?:the\s+|my\s+|our\s+)?(?:(?P<payee>[a-z]+)\s+bill|bill\s+(?:for\s+)?(?P<billPayee>[a-z]+))\s+(?:as\s+)?(?P<status>paid|unpaid|overdue)\b`),
			anyOf:   []string{"payee"},
		},
		{
			kind: "bill", domain: catalog.Financial, confidence: 0.85, open: true, enrich: enrichBill,
			pattern: re(`\bbill\s+(?:for\s+)?(?:the\s+|my\s+)?(?P<namedPayee>[a-z]+)\D{0,20}?\$\s*(?P<namedAmount>` + money + `)|(?:\bthe\s+|\bmy\s+|\bour\s+)?\b(?P<payee>[a-z]+)\s+bill\b\D{0,20}?\$\s*(?P<amount>` + money + `)|\$\s*(?P<billAmount>` + money + `)\s+(?:for\s+(?:the\s+|my\s+)?)?(?P<billPayee>[a-z]+)\s+bill\b`),
			anyOf:   []string{"amount"},
		},
		{
			kind: "expense", domain: catalog.Financial, confidence: 0.85, enrich: enrichMoney,
			pattern: re(`\$\s*(?P<amount>` + money + `)`),
		},
		{
			kind: "expense", domain: catalog.Financial, confidence: 0.8, enrich: enrichMoney,
			pattern: re(`\b(?:spent|paid|cost|costs)\s+(?P<amount>` + money + `)\s*(?:dollars|bucks|usd)?\b|\b(?P<amountWords>` + money + `)\s*(?:dollars|bucks|usd)\b`),
			anyOf:   []string{"amount", "amountWords"},
		},
		{
			kind: "steps", domain: catalog.Fitness, confidence: 0.9,
			pattern: re(`\b(?P<steps>\d[\d,]*)\s*steps\b`),
		},
		{
			kind: "workout", domain: catalog.Fitness, confidence: 0.85,
			pattern: re(`\b(?P<activity>ran|run|jogged|jog|walked|biked|cycled|swam|hiked|rowed)\b(?:\s+for)?(?:\s*(?P<distance>` + num + `)\s*(?P<distanceUnit>` + distanceUnit + `)\b)?(?:\s*(?:in|for)?\s*(?P<duration>` + num + `)\s*(?P<durationUnit>` + durationUnit + `)\b)?`),
			anyOf:   []string{"distance", "duration"},
		},
		{
			kind: "workout", domain: catalog.Fitness, confidence: 0.8,
			pattern: re(`\b(?P<activity>workout|yoga|gym|lifted|weights|pilates|swim|cycling|hike)\b\D{0,15}?(?P<duration>` + num + `)\s*(?P<durationUnit>` + durationUnit + `)\b|\b(?P<minutes>` + num + `)\s*(?P<minutesUnit>` + durationUnit + `)\s+(?:of\s+)?(?P<activityAfter>yoga|pilates|cardio|lifting|workout|swimming|cycling|walking|running)\b`),
			anyOf:   []string{"duration", "minutes"},
		},
		{
			kind: "water", domain: catalog.Nutrition, confidence: 0.85,
			pattern: re(`\b(?P<volume>` + num + `)\s*(?P<volumeUnit>` + volumeUnit + `)\s+(?:of\s+)?water\b|\bwater\s*(?:intake)?\s*:?\s*(?P<waterVolume>` + num + `)\s*(?P<waterVolumeUnit>` + volumeUnit + `)\b`),
			anyOf:   []string{"volume", "waterVolume"},
		},
		{
			kind: "meal", domain: catalog.Nutrition, confidence: 0.75,
			pattern: re(`\b(?:ate|eaten)\s+(?P<food>[a-z0-9][\w' -]*?)(?:\s+for\s+(?P<meal>breakfast|lunch|dinner|a snack|snack))?(?:\s*,?\s*\(?(?P<calories>\d+)\s*(?:calories|cals?|kcal)\)?)?\s*$`),
		},
		{
			kind: "weight", domain: catalog.Health, confidence: 0.7,
			pattern: re(`\b(?P<weight>` + num + `)\s*(?P<weightUnit>` + massUnit + `)\b`),
		},
		{
			kind: "meditation", domain: catalog.Mindfulness, confidence: 0.85,
			pattern: re(`\bmeditat(?:ed|ion|e)\b\D{0,10}?(?P<duration>` + num + `)\s*(?P<durationUnit>` + durationUnit + `)\b|\b(?P<minutes>` + num + `)\s*(?P<minutesUnit>` + durationUnit + `)\s+(?:of\s+)?meditation\b`),
			anyOf:   []string{"duration", "minutes"},
		},
		{
			kind: "mood", domain: catalog.Mindfulness, confidence: 0.7,
			pattern: re(`\b(?:feeling|felt|mood(?:\s+is|\s+was)?:?)\s+(?:very\s+|really\s+|pretty\s+|a bit\s+)?(?P<mood>[a-z]{3,})\b`),
		},
		{
			kind: "event", domain: catalog.Calendar, confidence: 0.8, enrich: enrichSchedule,
			pattern: re(`\b(?:appointment|appt|meeting|event|check-?up)\b(?:\s+with\s+(?P<with>[a-z][\w.]*(?:\s+[a-z][\w]*)?))?`),
		},
	}
}

// aliasFields folds alternative capture groups onto the canonical field.
var aliasFields = map[string]string{
	"sleepHours":      "hours",
	"billAmount":      "amount",
	"billPayee":       "payee",
	"namedAmount":     "amount",
	"namedPayee":      "payee",
	"amountWords":     "amount",
	"minutes":         "duration",
	"minutesUnit":     "durationUnit",
	"activityAfter":   "activity",
	"waterVolume":     "volume",
	"waterVolumeUnit": "volumeUnit",
}

// capture runs r against piece and returns the typed fields.
func (r rule) capture(piece string) (models.Fields, bool) {
	if r.reject != nil && r.reject.MatchString(piece) {
		return nil, false
	}
	m := r.pattern.FindStringSubmatchIndex(piece)
	if m == nil {
		return nil, false
	}
	f := models.Fields{models.FieldType: r.kind}
	for i, name := range r.pattern.SubexpNames() {
		if name == "" || m[2*i] < 0 {
			continue
		}
		value := strings.TrimSpace(piece[m[2*i]:m[2*i+1]])
		if value == "" {
			continue
		}
		if canonical, ok := aliasFields[name]; ok {
			name = canonical
		}
		if numericFields[name] {
			value = signed(piece, m[2*i], m[2*i+1])
		}
		f[name] = typed(name, value)
	}
	if r.enrich != nil {
		r.enrich(piece, f)
	}
	if len(r.anyOf) > 0 {
		found := false
		for _, name := range r.anyOf {
			found = found || f.Has(name)
		}
		if !found {
			return nil, false
		}
	}
	if action, ok := f.String(models.FieldAction); ok && r.kind == "delete" {
		f["verb"] = strings.ToLower(action)
		f[models.FieldAction] = "delete"
		if _, all := f["scope"]; all {
			f["scope"] = "all"
		}
	}
	return f, true
}

// signed returns the number at piece[start:end] with its sign. A minus may
// sit before a currency symbol ("-$20"); a hyphen right after a word or a
// number ("3-4 hours") is a range or compound, not a sign.
func signed(piece string, start, end int) string {
	value := strings.TrimSpace(piece[start:end])
	digits := strings.TrimSpace(strings.TrimPrefix(value, "-"))

	dash := -1
	if strings.HasPrefix(value, "-") {
		dash = start
	} else {
		i := start
		for i > 0 && (piece[i-1] == ' ' || piece[i-1] == '$') {
			i--
		}
		if i > 0 && piece[i-1] == '-' {
			dash = i - 1
		}
	}
	if dash < 0 {
		return digits
	}
	if dash > 0 {
		if prev := rune(piece[dash-1]); unicode.IsLetter(prev) || unicode.IsDigit(prev) {
			return digits
		}
	}
	return "-" + digits
}

func typed(name, value string) any {
	switch {
	case numericFields[name]:
		if v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64); err == nil {
			return v
		}
		return value
	case strings.HasSuffix(name, "Unit"):
		return models.CanonicalUnit(value)
	case name == "activity", name == "mood", name == "meal", name == "payee", name == models.FieldTarget:
		return strings.ToLower(value)
	default:
		return value
	}
}
