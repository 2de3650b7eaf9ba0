// Package sanitize screens raw utterances for injection-shaped input before
// any semantic processing.
package sanitize

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"lifedash/internal/command/models"
	textutil "lifedash/pkg/platform/strings"
)

// DefaultMaxRunes is the input ceiling applied before classification.
const DefaultMaxRunes = 2000

type flagSetter func(*models.SecurityFlags)

type screen struct {
	pattern *regexp.Regexp
	set     flagSetter
}

// Every pattern matches at least two runes, so each replacement shrinks the
// text and the fixpoint loop terminates.
var screens = []screen{
	{regexp.MustCompile(`(?is)<\s*script\b[^>]*>.*?<\s*/\s*script\s*>`), setScript},
	{regexp.MustCompile(`(?i)<\s*/?\s*script\b[^>]*>?`), setScript},
	{regexp.MustCompile(`(?i)</?[a-z!][^<>]*>`), setScript},
	{regexp.MustCompile(`(?i)\bon[a-z]{3,}\s*=`), setScript},

	{regexp.MustCompile(`(?i);\s*(?:drop|truncate|alter|delete\s+from|insert\s+into|exec)\b`), setSQL},
	{regexp.MustCompile(`(?i)\bunion\s+(?:all\s+)?select\b`), setSQL},
	{regexp.MustCompile(`(?i)\bdrop\s+(?:table|database)\b`), setSQL},
	{regexp.MustCompile(`(?i)'\s*or\s+'?\w+'?\s*=\s*'?\w+`), setSQL},
	{regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`), setSQL},
	{regexp.MustCompile(`'\s*--`), setSQL},
	{regexp.MustCompile(`(?s)/\*.*?\*/`), setSQL},

	{regexp.MustCompile(`(?i)__proto__`), setProto},
	{regexp.MustCompile(`(?i)\bconstructor\s*(?:\.|\[)\s*['"]?\s*(?:constructor|prototype)`), setProto},

	{regexp.MustCompile(`\$\{[^}]*\}?`), setEnv},
	{regexp.MustCompile(`\$\([^)]*\)?`), setEnv},
	{regexp.MustCompile(`(?i)\bprocess\s*\.\s*env\b(?:\.\w+)?`), setEnv},
	{regexp.MustCompile(`\$[A-Z][A-Z0-9_]+\b`), setEnv},
	{regexp.MustCompile(`%[A-Za-z_][A-Za-z0-9_]*%`), setEnv},

	{regexp.MustCompile(`\.\.[\\/]`), setTraversal},
	{regexp.MustCompile(`(?i)%2e%2e(?:%2f|%5c)`), setTraversal},

	{regexp.MustCompile(`(?i)\b(?:javascript|vbscript)\s*:`), setExecURL},
	{regexp.MustCompile(`(?i)\bdata\s*:\s*text/html\S*`), setExecURL},
}

func setScript(f *models.SecurityFlags) { f.HasScript = true }
func setSQL(f *models.SecurityFlags) { f.HasSQLInjection = true }
func setProto(f *models.SecurityFlags) { f.HasPrototypePollution = true }
func setEnv(f *models.SecurityFlags) { f.HasEnvInterpolation = true }
func setTraversal(f *models.SecurityFlags) { f.HasPathTraversal = true }
func setExecURL(f *models.SecurityFlags) { f.HasExecutableURL = true }

// Sanitizer is stateless apart from its length ceiling.
type Sanitizer struct {
	maxRunes int
}

func New(maxRunes int) *Sanitizer {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxRunes
	}
	return &Sanitizer{maxRunes: maxRunes}
}

// Sanitize returns the cleaned text and the flags raised on the way. It never
// fails: flagged substrings are replaced by a space and the rest survives.
// The result is a fixpoint, so sanitizing it again changes nothing.
func (s *Sanitizer) Sanitize(raw string) (string, models.SecurityFlags) {
	flags := models.SecurityFlags{OriginalLength: utf8.RuneCountInString(raw)}

	text := norm.NFKC.String(raw)
	text, flags.WasTruncated = textutil.TruncateRunes(text, s.maxRunes)

	for {
		next := screenOnce(text, &flags)
		if next == text {
			break
		}
		text = next
	}
	flags.WasSanitized = flags.Flagged()
	return text, flags
}

func screenOnce(text string, flags *models.SecurityFlags) string {
	text = norm.NFKC.String(stripControl(text))
	for _, sc := range screens {
		if sc.pattern.MatchString(text) {
			sc.set(flags)
			text = sc.pattern.ReplaceAllString(text, " ")
		}
	}
	return textutil.CollapseSpace(text)
}

// stripControl turns control characters into spaces and drops invisible
// format characters (zero-width joiners, BOM) used to split keywords.
func stripControl(s string) string {
	clean := true
	for _, r := range s {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Cf, r):
		case unicode.IsControl(r):
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
