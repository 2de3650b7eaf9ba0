package models

import "strings"

// unitAliases maps folded unit spellings to the unit names validation
// converts from. Mass and fluid ounces share "oz"; the field decides.
var unitAliases = map[string]string{
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"kg": "kg", "kgs": "kg", "kilo": "kg", "kilos": "kg", "kilogram": "kg", "kilograms": "kg",
	"g": "g", "gram": "g", "grams": "g",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"fl oz": "fl oz", "floz": "fl oz", "fluid ounce": "fl oz", "fluid ounces": "fl oz",
	"mi": "mi", "mile": "mi", "miles": "mi",
	"km": "km", "k": "km", "kilometer": "km", "kilometers": "km", "kilometre": "km", "kilometres": "km",
	"m": "m", "meter": "m", "meters": "m", "metre": "m", "metres": "m",
	"cm": "cm", "centimeter": "cm", "centimeters": "cm", "centimetre": "cm", "centimetres": "cm",
	"in": "in", "inch": "in", "inches": "in",
	"ft": "ft", "foot": "ft", "feet": "ft",
	"f": "F", "°f": "F", "fahrenheit": "F", "c": "C", "°c": "C", "celsius": "C",
	"ml": "ml", "milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml",
	"l": "l", "liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"cup": "cup", "cups": "cup", "glass": "cup", "glasses": "cup",
	"mg/dl": "mg/dL", "mmol/l": "mmol/L",
	"gal": "gal", "gallon": "gal", "gallons": "gal",
	"second": "seconds", "seconds": "seconds", "sec": "seconds", "secs": "seconds", "s": "seconds",
	"minute": "minutes", "minutes": "minutes", "min": "minutes", "mins": "minutes",
	"hour": "hours", "hours": "hours", "hr": "hours", "hrs": "hours", "h": "hours",
}

// CanonicalUnit folds case and whitespace and resolves known aliases. An
// unknown unit comes back folded so callers can still report it.
func CanonicalUnit(raw string) string {
	key := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	key = strings.TrimSuffix(key, ".")
	if canonical, ok := unitAliases[key]; ok {
		return canonical
	}
	return key
}

// UnitSystem is the caller's preferred measurement system.
type UnitSystem string

const (
	UnitsImperial UnitSystem = "imperial"
	UnitsMetric   UnitSystem = "metric"
)

// PreferenceUnits is the preferences key naming the caller's unit system.
const PreferenceUnits = "units"

// Units reads the unit-system preference. Anything other than metric is
// imperial.
func (r Request) Units() UnitSystem {
	if strings.EqualFold(strings.TrimSpace(r.Preferences[PreferenceUnits]), string(UnitsMetric)) {
		return UnitsMetric
	}
	return UnitsImperial
}
