package models

// FailureKind is the error taxonomy surfaced in responses. None of these is
// returned as a Go error from the pipeline.
type FailureKind string

const (
	FailureInputRejected        FailureKind = "input_rejected"
	FailureSecurityFlagged      FailureKind = "security_flagged"
	FailureAmbiguousIntent      FailureKind = "ambiguous_intent"
	FailureValidationFailed     FailureKind = "validation_failed"
	FailureExtractorUnavailable FailureKind = "extractor_unavailable"
	FailurePersistence          FailureKind = "persistence_failed"
)

// Outcome summarizes what happened to the whole request.
type Outcome string

const (
	OutcomeProcessed            Outcome = "processed"
	OutcomeNoCommand            Outcome = "no_command"
	OutcomeNoEntities           Outcome = "no_entities"
	OutcomeExtractorUnavailable Outcome = "extractor_unavailable"
)

// UserTime is the caller's local clock, when known.
type UserTime struct {
	LocalHour *int
	Timezone  string
}

// Request is one utterance to interpret.
type Request struct {
	Message     string
	UserID      string
	Preferences map[string]string
	UserTime    *UserTime
	// Confirmed is the explicit confirmation required for destructive commands.
	Confirmed bool
	// DryRun runs the whole pipeline without persisting anything.
	DryRun bool
}

// Response is the composed result of one request.
type Response struct {
	Success        bool
	Outcome        Outcome
	Failure        FailureKind
	Intent         *Intent
	Results        []CommandResult
	Message        string
	SecurityChecks *SecurityFlags
}
