package models

import (
	"lifedash/internal/catalog"
)

// Category is the coarse action class of an utterance.
type Category string

const (
	CategoryPriceCheck  Category = "price_check"
	CategoryOrder       Category = "order"
	CategoryAppointment Category = "appointment"
	CategoryInquiry     Category = "inquiry"
	CategoryComparison  Category = "comparison"
	CategoryLog         Category = "log"
	CategoryAdd         Category = "add"
	CategoryUpdate      Category = "update"
	CategoryQuery       Category = "query"
	CategoryNavigate    Category = "navigate"
	CategorySchedule    Category = "schedule"
)

// Urgency is derived independently of Category.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Intent is created once per utterance and never modified.
type Intent struct {
	Category          Category `json:"category"`
	Confidence        float64  `json:"confidence"`
	Urgency           Urgency  `json:"urgency"`
	RequiredInfo      []string `json:"requiredInfo"`
	NeedsUserApproval bool     `json:"needsUserApproval"`
}

// Span is a half-open rune range [Start, End) in the sanitized text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Fields is structured entity data. Values are float64, string or bool.
type Fields map[string]any

// Clone returns a shallow copy; values are scalars so this is a full copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Number returns a numeric field.
func (f Fields) Number(key string) (float64, bool) {
	v, ok := f[key].(float64)
	return v, ok
}

// String returns a string field.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key].(string)
	return v, ok
}

// Bool returns a boolean field.
func (f Fields) Bool(key string) (bool, bool) {
	v, ok := f[key].(bool)
	return v, ok
}

// Has reports whether key is present with a non-empty value.
func (f Fields) Has(key string) bool {
	switch v := f[key].(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}

// Common field keys shared by the extractor, validator and resolver.
const (
	FieldType   = "type"
	FieldAction = "action"
	FieldName   = "name"
	FieldTarget = "target"
	FieldAmount = "amount"
)

// CandidateEntity is one structured fact proposed by the extractor. It lives
// only for the request that produced it.
type CandidateEntity struct {
	RawFragment  string           `json:"rawFragment"`
	DomainHint   catalog.Domain   `json:"domainHint"`
	Alternatives []catalog.Domain `json:"alternatives,omitempty"`
	Confidence   float64          `json:"confidence"`
	Title        string           `json:"title"`
	Data         Fields           `json:"structuredData"`
	Offset       Span             `json:"sourceOffset"`
}

// RoutingReason records how the router chose a domain.
type RoutingReason string

const (
	ReasonDirectMatch     RoutingReason = "direct_match"
	ReasonKeywordOverride RoutingReason = "keyword_override"
	ReasonAmbiguityPolicy RoutingReason = "ambiguity_policy"
	ReasonDefaultFallback RoutingReason = "default_fallback"
)

// RoutedEntity is a candidate with an authoritative catalog domain.
type RoutedEntity struct {
	CandidateEntity
	Domain catalog.Domain `json:"domain"`
	Reason RoutingReason  `json:"routingReason"`
	// Confirm is set when an ambiguity policy guessed and wants the user to
	// confirm; Alternative is the other domain of the pair.
	Confirm     bool           `json:"confirm,omitempty"`
	Alternative catalog.Domain `json:"alternative,omitempty"`
}

// ValidationStatus is the per-entity verdict.
type ValidationStatus string

const (
	StatusValid              ValidationStatus = "valid"
	StatusNeedsClarification ValidationStatus = "needs_clarification"
	StatusRejected           ValidationStatus = "rejected"
)

// ValidationOutcome carries the verdict and the unit-normalized data.
type ValidationOutcome struct {
	Entity      RoutedEntity
	Status      ValidationStatus
	Issues      []string
	Question    string
	Normalized  Fields
	Failure     FailureKind
	Destructive bool
}

// ResultStatus is the external status of a CommandResult.
type ResultStatus string

const (
	ResultSaved              ResultStatus = "saved"
	ResultValid              ResultStatus = "valid"
	ResultNeedsClarification ResultStatus = "needs_clarification"
	ResultRejected           ResultStatus = "rejected"
	ResultFailed             ResultStatus = "failed"
)

// CommandResult is the external unit, one per entity surviving deduplication.
type CommandResult struct {
	ID            string         `json:"id"`
	Domain        catalog.Domain `json:"domain"`
	Title         string         `json:"title"`
	Fragment      string         `json:"fragment"`
	Data          Fields         `json:"structuredData"`
	Status        ResultStatus   `json:"status"`
	Issues        []string       `json:"issues,omitempty"`
	Question      string         `json:"clarificationQuestion,omitempty"`
	Failure       FailureKind    `json:"failure,omitempty"`
	RoutingReason RoutingReason  `json:"routingReason"`
	Confidence    float64        `json:"confidence"`
	PreviousID    string         `json:"previousId,omitempty"`
	EntryID       string         `json:"entryId,omitempty"`
	Offset        Span           `json:"sourceOffset"`
	Destructive   bool           `json:"destructive,omitempty"`
}

// SecurityFlags are independent; several may be set for one input.
type SecurityFlags struct {
	HasScript             bool `json:"hasScript"`
	HasSQLInjection       bool `json:"hasSqlInjection"`
	HasPrototypePollution bool `json:"hasPrototypePollution"`
	HasEnvInterpolation   bool `json:"hasEnvInterpolation"`
	HasPathTraversal      bool `json:"hasPathTraversal"`
	HasExecutableURL      bool `json:"hasExecutableUrl"`
	WasSanitized          bool `json:"wasSanitized"`
	WasTruncated          bool `json:"wasTruncated"`
	OriginalLength        int  `json:"originalLength"`
}

// Flagged reports whether any injection-shaped pattern was found.
func (f SecurityFlags) Flagged() bool {
	return f.HasScript || f.HasSQLInjection || f.HasPrototypePollution ||
		f.HasEnvInterpolation || f.HasPathTraversal || f.HasExecutableURL
}

// Names lists the set flags, for logs and audit reasons.
func (f SecurityFlags) Names() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(f.HasScript, "script")
	add(f.HasSQLInjection, "sql_injection")
	add(f.HasPrototypePollution, "prototype_pollution")
	add(f.HasEnvInterpolation, "env_interpolation")
	add(f.HasPathTraversal, "path_traversal")
	add(f.HasExecutableURL, "executable_url")
	add(f.WasTruncated, "truncated")
	return out
}
