// Package compose renders pipeline results as the user-facing response.
package compose

import (
	"fmt"
	"strings"

	"lifedash/internal/command/models"
)

const (
	MsgNoCommand   = "No command detected."
	MsgNoEntities  = "I couldn't find anything to log in that. Could you rephrase with what you'd like to record?"
	MsgUnavailable = "Sorry, I couldn't understand that right now. Please try rephrasing."
)

// lineClasses fixes the order of the message lines. Each status renders
// only in its own line.
var lineClasses = []struct {
	status models.ResultStatus
	prefix string
}{
	{models.ResultSaved, "Saved"},
	{models.ResultValid, "Ready"},
	{models.ResultNeedsClarification, "Needs clarification"},
	{models.ResultRejected, "Rejected"},
	{models.ResultFailed, "Could not save"},
}

// Compose builds the response for a processed utterance.
func Compose(results []models.CommandResult) models.Response {
	if len(results) == 0 {
		return models.Response{
			Outcome: models.OutcomeNoEntities,
			Results: []models.CommandResult{},
			Message: MsgNoEntities,
		}
	}
	return models.Response{
		Success: !anyFailed(results),
		Outcome: models.OutcomeProcessed,
		Results: results,
		Message: Message(results),
	}
}

// NoCommand is the response for input that was empty after sanitizing.
func NoCommand() models.Response {
	return models.Response{
		Outcome: models.OutcomeNoCommand,
		Failure: models.FailureInputRejected,
		Results: []models.CommandResult{},
		Message: MsgNoCommand,
	}
}

// Unavailable is the response when the language service could not answer.
func Unavailable() models.Response {
	return models.Response{
		Outcome: models.OutcomeExtractorUnavailable,
		Failure: models.FailureExtractorUnavailable,
		Results: []models.CommandResult{},
		Message: MsgUnavailable,
	}
}

// Message renders one line per status class present, in a fixed order.
func Message(results []models.CommandResult) string {
	lines := make([]string, 0, len(lineClasses))
	for _, class := range lineClasses {
		var items []string
		for _, r := range results {
			if r.Status == class.status {
				items = append(items, describe(r))
			}
		}
		if len(items) > 0 {
			lines = append(lines, class.prefix+": "+terminate(strings.Join(items, "; ")))
		}
	}
	return strings.Join(lines, "\n")
}

func describe(r models.CommandResult) string {
	label := r.Title
	if label == "" {
		label = r.Fragment
	}
	label = fmt.Sprintf("%s (%s)", strings.TrimRight(label, ". "), r.Domain)

	switch r.Status {
	case models.ResultNeedsClarification:
		if r.Question != "" {
			return label + ": " + r.Question
		}
	case models.ResultRejected:
		if len(r.Issues) > 0 {
			return label + ": " + strings.Join(r.Issues, ", ")
		}
	}
	return label
}

func terminate(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + "."
}

func anyFailed(results []models.CommandResult) bool {
	for _, r := range results {
		if r.Status == models.ResultFailed {
			return true
		}
	}
	return false
}
