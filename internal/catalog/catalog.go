// Package catalog holds the fixed set of life-area domains and the data used
// to route text to them. A Catalog is immutable after Load and safe for
// concurrent use.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Domain is one life area. Ambiguous is only valid as an extractor hint.
type Domain string

const Ambiguous Domain = "ambiguous"

// Domains referenced by code paths (fallback routing, validation rules).
const (
	Health      Domain = "health"
	Fitness     Domain = "fitness"
	Nutrition   Domain = "nutrition"
	Financial   Domain = "financial"
	Vehicles    Domain = "vehicles"
	Pets        Domain = "pets"
	Mindfulness Domain = "mindfulness"
	Tasks       Domain = "tasks"
	Calendar    Domain = "calendar"
	Navigation  Domain = "navigation"
)

//go:embed catalog.yaml
var embedded []byte

// DomainSpec describes one catalog domain.
type DomainSpec struct {
	Name        Domain   `yaml:"name" json:"name"`
	Label       string   `yaml:"label" json:"label"`
	Description string   `yaml:"description" json:"description"`
	Aliases     []string `yaml:"aliases" json:"aliases,omitempty"`
	DefaultType string   `yaml:"defaultType" json:"defaultType"`
}

// KeywordRule maps keywords to a domain at a priority.
type KeywordRule struct {
	Domain   Domain   `yaml:"domain"`
	Priority int      `yaml:"priority"`
	Keywords []string `yaml:"keywords"`

	order   int
	pattern *regexp.Regexp
}

// PolicyOverride routes to Domain when any keyword is present.
type PolicyOverride struct {
	Domain   Domain   `yaml:"domain"`
	Keywords []string `yaml:"keywords"`

	pattern *regexp.Regexp
}

// AmbiguityPolicy settles one pair of domains that are routinely confused.
// Overrides are checked in order; otherwise Prefer wins. Ask marks the
// routing as a guess the user should confirm.
type AmbiguityPolicy struct {
	Between   [2]Domain        `yaml:"between"`
	Prefer    Domain           `yaml:"prefer"`
	Ask       bool             `yaml:"ask"`
	Overrides []PolicyOverride `yaml:"overrides"`
}

// Decide picks a domain for text. asked reports that no override matched and
// the policy wants the user to confirm the preferred domain.
func (p *AmbiguityPolicy) Decide(text string) (d Domain, asked bool) {
	for _, o := range p.Overrides {
		if o.pattern.MatchString(text) {
			return o.Domain, false
		}
	}
	return p.Prefer, p.Ask
}

// Other returns the member of the pair that is not d.
func (p *AmbiguityPolicy) Other(d Domain) Domain {
	if p.Between[0] == d {
		return p.Between[1]
	}
	return p.Between[0]
}

// KeywordMatch is one rule that fired for a piece of text.
type KeywordMatch struct {
	Domain   Domain
	Priority int
	Keyword  string
}

type file struct {
	Domains  []DomainSpec      `yaml:"domains"`
	Rules    []KeywordRule     `yaml:"keywordRules"`
	Policies []AmbiguityPolicy `yaml:"ambiguityPolicies"`
}

type pairKey struct{ a, b Domain }

func keyOf(a, b Domain) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

type Catalog struct {
	domains  []DomainSpec
	byName   map[Domain]int
	aliases  map[string]Domain
	rules    []KeywordRule
	policies map[pairKey]*AmbiguityPolicy
}

// Default loads the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(embedded)
}

// MustDefault is Default for tests and package init paths.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile loads a catalog from path, or the embedded one when path is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(data)
}

// Load parses and validates catalog YAML.
func Load(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Domains) == 0 {
		return nil, fmt.Errorf("catalog has no domains")
	}

	c := &Catalog{
		domains:  f.Domains,
		byName:   make(map[Domain]int, len(f.Domains)),
		aliases:  make(map[string]Domain),
		policies: make(map[pairKey]*AmbiguityPolicy, len(f.Policies)),
	}
	for i, d := range f.Domains {
		if d.Name == "" || d.Name == Ambiguous {
			return nil, fmt.Errorf("domain %d: invalid name %q", i, d.Name)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate domain %q", d.Name)
		}
		c.byName[d.Name] = i
	}
	for _, d := range f.Domains {
		for _, alias := range d.Aliases {
			key := normalizeKey(alias)
			if owner, taken := c.aliases[key]; taken && owner != d.Name {
				return nil, fmt.Errorf("alias %q claimed by %q and %q", alias, owner, d.Name)
			}
			c.aliases[key] = d.Name
		}
	}

	for i, r := range f.Rules {
		if !c.Has(r.Domain) {
			return nil, fmt.Errorf("keyword rule %d: unknown domain %q", i, r.Domain)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("keyword rule %d: no keywords", i)
		}
		r.order = i
		r.pattern = compileKeywords(r.Keywords)
		c.rules = append(c.rules, r)
	}
	sort.SliceStable(c.rules, func(i, j int) bool {
		return c.rules[i].Priority > c.rules[j].Priority
	})

	for i := range f.Policies {
		p := f.Policies[i]
		a, b := p.Between[0], p.Between[1]
		if !c.Has(a) || !c.Has(b) || a == b {
			return nil, fmt.Errorf("ambiguity policy %d: invalid pair %q/%q", i, a, b)
		}
		if p.Prefer != a && p.Prefer != b {
			return nil, fmt.Errorf("ambiguity policy %s/%s: prefer %q is not in the pair", a, b, p.Prefer)
		}
		for j := range p.Overrides {
			o := &p.Overrides[j]
			if o.Domain != a && o.Domain != b {
				return nil, fmt.Errorf("ambiguity policy %s/%s: override domain %q is not in the pair", a, b, o.Domain)
			}
			o.pattern = compileKeywords(o.Keywords)
		}
		k := keyOf(a, b)
		if _, dup := c.policies[k]; dup {
			return nil, fmt.Errorf("duplicate ambiguity policy %s/%s", a, b)
		}
		c.policies[k] = &p
	}
	return c, nil
}

// Domains returns the catalog in declaration order.
func (c *Catalog) Domains() []DomainSpec {
	return append([]DomainSpec(nil), c.domains...)
}

// Has reports whether d is a concrete catalog domain.
func (c *Catalog) Has(d Domain) bool {
	_, ok := c.byName[d]
	return ok
}

// Spec returns the definition of d.
func (c *Catalog) Spec(d Domain) (DomainSpec, bool) {
	i, ok := c.byName[d]
	if !ok {
		return DomainSpec{}, false
	}
	return c.domains[i], true
}

// Normalize resolves a free-form domain name or alias. Unknown names and
// "ambiguous" resolve to Ambiguous with ok=false.
func (c *Catalog) Normalize(name string) (Domain, bool) {
	key := normalizeKey(name)
	if d := Domain(key); c.Has(d) {
		return d, true
	}
	if d, ok := c.aliases[key]; ok {
		return d, true
	}
	return Ambiguous, false
}

// Match returns every rule that fires for text, strongest first. Each domain
// appears at most once.
func (c *Catalog) Match(text string) []KeywordMatch {
	var out []KeywordMatch
	seen := make(map[Domain]bool)
	for _, r := range c.rules {
		if seen[r.Domain] {
			continue
		}
		if kw := r.pattern.FindString(text); kw != "" {
			seen[r.Domain] = true
			out = append(out, KeywordMatch{Domain: r.Domain, Priority: r.Priority, Keyword: strings.ToLower(kw)})
		}
	}
	return out
}

// Policy returns the ambiguity policy for an unordered pair.
func (c *Catalog) Policy(a, b Domain) (*AmbiguityPolicy, bool) {
	p, ok := c.policies[keyOf(a, b)]
	return p, ok
}

// Keywords lists every routing keyword, used as vocabulary by the classifier.
func (c *Catalog) Keywords() []string {
	var out []string
	for _, r := range c.rules {
		out = append(out, r.Keywords...)
	}
	return out
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}

// compileKeywords builds one case-insensitive, word-bounded alternation.
// Longer keywords go first so "blood pressure" wins over "blood".
func compileKeywords(keywords []string) *regexp.Regexp {
	sorted := append([]string(nil), keywords...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, kw := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(strings.ToLower(kw)), `\ `, `\s+`)
		quoted[i] = strings.ReplaceAll(quoted[i], " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
