// Package validation checks routed entities against per-type rules. It is
// pure: no I/O, no shared state, safe to call from many goroutines.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
)

const DefaultMinConfidence = 0.35

// Options carry per-request facts the rules depend on.
type Options struct {
	Confirmed bool
	// Units decides the unit of a measurement given without one.
	Units models.UnitSystem
}

type Validator struct {
	catalog       *catalog.Catalog
	minConfidence float64
}

type Option func(*Validator)

func WithMinConfidence(v float64) Option {
	return func(val *Validator) {
		if v > 0 {
			val.minConfidence = v
		}
	}
}

func New(cat *catalog.Catalog, opts ...Option) *Validator {
	v := &Validator{catalog: cat, minConfidence: DefaultMinConfidence}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// verdict accumulates the reasons an entity cannot be saved as is.
type verdict struct {
	rejected []string
	clarify  []string
	question string
	failure  models.FailureKind
}

func (v *verdict) ask(issue, question string, kind models.FailureKind) {
	v.clarify = append(v.clarify, issue)
	if v.question == "" {
		v.question = question
		v.failure = kind
	}
}

// Validate normalizes units first so every bound sees canonical values.
// Impossible values reject; missing, implausible or ambiguous ones ask.
func (val *Validator) Validate(e models.RoutedEntity, opts Options) models.ValidationOutcome {
	data := e.Data.Clone()
	if data == nil {
		data = models.Fields{}
	}
	kind := val.typeOf(e.Domain, data)
	if kind != "" {
		data[models.FieldType] = kind
	}

	var v verdict
	normalizeUnits(data, opts.Units, &v)
	checkHard(data, &v)

	destructive := isDestructive(e, data)
	if destructive && !opts.Confirmed {
		v.ask("destructive action requires confirmation", destructiveQuestion(data), models.FailureValidationFailed)
	}
	checkRequired(kind, data, &v)
	val.checkNavigation(kind, data, &v)
	checkSoft(data, &v)

	if e.Confirm && e.Alternative != "" {
		v.ask(
			fmt.Sprintf("domain guessed between %s and %s", e.Domain, e.Alternative),
			fmt.Sprintf("Should I file this under %s or %s?", val.label(e.Domain), val.label(e.Alternative)),
			models.FailureAmbiguousIntent,
		)
	}
	if e.Confidence < val.minConfidence {
		v.ask(
			"low confidence",
			fmt.Sprintf("I'm not sure what you meant by %q. Could you rephrase it?", e.RawFragment),
			models.FailureAmbiguousIntent,
		)
	}

	out := models.ValidationOutcome{
		Entity:      e,
		Normalized:  data,
		Destructive: destructive,
	}
	switch {
	case len(v.rejected) > 0:
		out.Status = models.StatusRejected
		out.Issues = append(v.rejected, v.clarify...)
		out.Failure = models.FailureValidationFailed
	case len(v.clarify) > 0:
		out.Status = models.StatusNeedsClarification
		out.Issues = v.clarify
		out.Question = v.question
		out.Failure = v.failure
	default:
		out.Status = models.StatusValid
	}
	return out
}

func (val *Validator) typeOf(domain catalog.Domain, data models.Fields) string {
	if t, ok := data.String(models.FieldType); ok && t != "" {
		return strings.ToLower(t)
	}
	if spec, ok := val.catalog.Spec(domain); ok {
		return spec.DefaultType
	}
	return ""
}

func (val *Validator) label(d catalog.Domain) string {
	if spec, ok := val.catalog.Spec(d); ok && spec.Label != "" {
		return spec.Label
	}
	return string(d)
}

func normalizeUnits(data models.Fields, units models.UnitSystem, v *verdict) {
	inferTemperatureUnit(data, units)
	if t, ok := data.Number("temperature"); ok {
		unit, _ := data.String("temperatureUnit")
		switch models.CanonicalUnit(unit) {
		case "", "F":
		case "C":
			data["temperature"] = round2(t*9/5 + 32)
		default:
			v.ask(fmt.Sprintf("unrecognized temperature unit %q", unit), "Was that in Fahrenheit or Celsius?", models.FailureValidationFailed)
			return
		}
		data["temperatureUnit"] = "F"
	}

	for _, f := range families {
		value, ok := data.Number(f.field)
		if !ok {
			continue
		}
		unitKey := f.field + "Unit"
		raw, _ := data.String(unitKey)
		unit, known := f.unitOf(raw, units)
		if !known {
			v.ask(fmt.Sprintf("unrecognized %s unit %q", f.field, raw), fmt.Sprintf("What unit is the %s in?", f.field), models.FailureValidationFailed)
			continue
		}
		data[f.field] = round2(value * f.factors[unit])
		data[unitKey] = f.canonical
	}
}

// unitOf resolves the spelling an extractor used to one of the family's
// units. The exact spelling wins over the alias so "mg/dL" and "oz" keep
// their meaning for the field.
func (f family) unitOf(raw string, units models.UnitSystem) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		if units == models.UnitsMetric && f.metric != "" {
			return f.metric, true
		}
		return f.canonical, true
	}
	if _, ok := f.factors[raw]; ok {
		return raw, true
	}
	unit := models.CanonicalUnit(raw)
	_, ok := f.factors[unit]
	return unit, ok
}

// inferTemperatureUnit reads a unitless body temperature between 30 and 45
// as Celsius, or any unitless temperature when the caller prefers metric.
func inferTemperatureUnit(data models.Fields, units models.UnitSystem) {
	t, ok := data.Number("temperature")
	if !ok || data.Has("temperatureUnit") {
		return
	}
	if units == models.UnitsMetric || t >= 30 && t <= 45 {
		data["temperatureUnit"] = "C"
	}
}

func checkHard(data models.Fields, v *verdict) {
	for _, b := range hardBounds {
		value, ok := data.Number(b.field)
		if !ok || b.contains(value) {
			continue
		}
		v.rejected = append(v.rejected, fmt.Sprintf("%s %s out of range %s", b.field, format(value), describe(b)))
	}
	sys, okS := data.Number("systolic")
	dia, okD := data.Number("diastolic")
	if okS && okD && sys <= dia {
		v.rejected = append(v.rejected, fmt.Sprintf("systolic %s must be greater than diastolic %s", format(sys), format(dia)))
	}
}

func checkSoft(data models.Fields, v *verdict) {
	for _, b := range softBounds {
		value, ok := data.Number(b.field)
		if !ok || b.contains(value) {
			continue
		}
		unit, _ := data.String(b.field + "Unit")
		shown := strings.TrimSpace(format(value) + " " + unit)
		v.ask(
			fmt.Sprintf("%s %s looks unusual", b.field, shown),
			fmt.Sprintf("Is %s %s correct?", b.field, shown),
			models.FailureValidationFailed,
		)
	}
}

func checkRequired(kind string, data models.Fields, v *verdict) {
	for _, req := range required[kind] {
		if satisfied(req, data) {
			continue
		}
		q, ok := questions[req[0]]
		if !ok {
			q = fmt.Sprintf("What is the %s?", req[0])
		}
		v.ask("missing "+strings.Join(req, " or "), q, models.FailureValidationFailed)
	}
}

func satisfied(req requirement, data models.Fields) bool {
	for _, field := range req {
		if data.Has(field) {
			return true
		}
	}
	return false
}

func (val *Validator) checkNavigation(kind string, data models.Fields, v *verdict) {
	if kind != "navigate" {
		return
	}
	target, ok := data.String(models.FieldTarget)
	if !ok || target == "" {
		return
	}
	d, known := val.catalog.Normalize(target)
	if !known {
		v.ask(fmt.Sprintf("unknown section %q", target), "Which section should I open?", models.FailureValidationFailed)
		return
	}
	data[models.FieldTarget] = string(d)
}

func isDestructive(e models.RoutedEntity, data models.Fields) bool {
	if action, ok := data.String(models.FieldAction); ok && destructivePhrase.MatchString(action) {
		return true
	}
	return destructivePhrase.MatchString(e.RawFragment)
}

func destructiveQuestion(data models.Fields) string {
	target, _ := data.String(models.FieldTarget)
	if target == "" {
		return "This would remove data. Please confirm to proceed."
	}
	if scope, _ := data.String("scope"); scope == "all" {
		target = "all " + target
	}
	return fmt.Sprintf("This would delete %s. Please confirm to proceed.", target)
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func describe(b rng) string {
	switch {
	case b.max > 1e300 && b.openMin:
		return fmt.Sprintf("(above %s)", format(b.min))
	case b.max > 1e300:
		return fmt.Sprintf("(at least %s)", format(b.min))
	case b.openMin:
		return fmt.Sprintf("(above %s up to %s)", format(b.min), format(b.max))
	default:
		return fmt.Sprintf("(%s to %s)", format(b.min), format(b.max))
	}
}
