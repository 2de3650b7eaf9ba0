package validation

import (
	"math"
	"regexp"
)

// family converts one measured field to its canonical unit. Factors map a
// unit to the multiplier that yields the canonical unit. Metric is the unit
// assumed for a unitless value when the caller prefers metric.
type family struct {
	field     string
	canonical string
	metric    string
	factors   map[string]float64
}

var families = []family{
	{field: "weight", canonical: "lb", metric: "kg", factors: map[string]float64{"lb": 1, "kg": 2.20462262, "g": 0.00220462262, "oz": 0.0625}},
	{field: "distance", canonical: "mi", metric: "km", factors: map[string]float64{"mi": 1, "km": 0.621371192, "m": 0.000621371192}},
	{field: "volume", canonical: "fl oz", metric: "ml", factors: map[string]float64{"fl oz": 1, "oz": 1, "ml": 0.0338140227, "l": 33.8140227, "cup": 8}},
	{field: "glucose", canonical: "mg/dL", factors: map[string]float64{"mg/dL": 1, "mmol/L": 18.0182}},
	{field: "height", canonical: "in", metric: "cm", factors: map[string]float64{"in": 1, "cm": 0.393700787, "m": 39.3700787, "ft": 12}},
	{field: "gallons", canonical: "gal", metric: "l", factors: map[string]float64{"gal": 1, "l": 0.264172052}},
	{field: "duration", canonical: "minutes", factors: map[string]float64{"minutes": 1, "hours": 60, "seconds": 1.0 / 60}},
}

// rng is a closed interval unless an end is marked open.
type rng struct {
	field   string
	min     float64
	max     float64
	openMin bool
}

func (r rng) contains(v float64) bool {
	if r.openMin && v <= r.min || v < r.min {
		return false
	}
	return v <= r.max
}

// hardBounds are physically impossible values. Values are canonical units.
var hardBounds = []rng{
	{field: "weight", min: 0, max: 1500, openMin: true},
	{field: "systolic", min: 40, max: 300},
	{field: "diastolic", min: 20, max: 200},
	{field: "heartRate", min: 20, max: 300},
	{field: "temperature", min: 80, max: 115},
	{field: "glucose", min: 10, max: 1000},
	{field: "amount", min: 0, max: math.Inf(1)},
	{field: "cost", min: 0, max: math.Inf(1)},
	{field: "steps", min: 0, max: 200000},
	{field: "hours", min: 0, max: 24, openMin: true},
	{field: "distance", min: 0, max: 1000, openMin: true},
	{field: "duration", min: 0, max: 1440, openMin: true},
	{field: "volume", min: 0, max: 1000, openMin: true},
	{field: "gallons", min: 0, max: 200, openMin: true},
	{field: "calories", min: 0, max: 20000},
	{field: "height", min: 10, max: 120},
}

// softBounds are possible but unlikely values worth a question.
var softBounds = []rng{
	{field: "weight", min: 50, max: 700},
	{field: "heartRate", min: 35, max: 220},
	{field: "temperature", min: 94, max: 106},
	{field: "glucose", min: 40, max: 600},
	{field: "steps", min: 0, max: 100000},
	{field: "amount", min: 0, max: 1000000, openMin: true},
	{field: "distance", min: 0, max: 100},
	{field: "calories", min: 0, max: 5000},
	{field: "hours", min: 1, max: 16},
	{field: "gallons", min: 0, max: 50},
}

// requirement is satisfied when any of its fields is present.
type requirement []string

var required = map[string][]requirement{
	"weight":         {{"weight"}},
	"blood_pressure": {{"systolic"}, {"diastolic"}},
	"heart_rate":     {{"heartRate"}},
	"temperature":    {{"temperature"}},
	"glucose":        {{"glucose"}},
	"sleep":          {{"hours"}},
	"steps":          {{"steps"}},
	"workout":        {{"distance", "duration"}},
	"water":          {{"volume"}},
	"meal":           {{"food"}},
	"expense":        {{"amount"}},
	"income":         {{"amount"}},
	"bill":           {{"amount"}},
	"fuel":           {{"gallons", "cost"}},
	"event":          {{"date"}},
	"appointment":    {{"date"}},
	"task":           {{"title"}},
	"meditation":     {{"duration"}},
	"mood":           {{"mood"}},
	"delete":         {{"target"}},
	"navigate":       {{"target"}},
}

var questions = map[string]string{
	"weight":      "What was the weight?",
	"systolic":    "What were the systolic and diastolic readings?",
	"diastolic":   "What were the systolic and diastolic readings?",
	"heartRate":   "What was the heart rate?",
	"temperature": "What was the temperature?",
	"glucose":     "What was the glucose reading?",
	"hours":       "How many hours did you sleep?",
	"steps":       "How many steps?",
	"distance":    "How far or how long was the workout?",
	"volume":      "How much did you drink?",
	"food":        "What did you eat?",
	"amount":      "How much was it?",
	"gallons":     "How many gallons, or how much did it cost?",
	"date":        "What date is it on?",
	"title":       "What should the task say?",
	"duration":    "How long was it?",
	"mood":        "How are you feeling?",
	"target":      "Which records do you mean?",
}

var destructivePhrase = regexp.MustCompile(`(?i)\b(?:delete|remove|clear|reset|wipe|erase|purge)\b`)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
