package handler

import (
	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
)

// CommandResponse is the HTTP response for POST /commands.
type CommandResponse struct {
	Success        bool                   `json:"success"`
	Outcome        string                 `json:"outcome"`
	Failure        string                 `json:"failure,omitempty"`
	Intent         *models.Intent         `json:"intent,omitempty"`
	Results        []models.CommandResult `json:"results"`
	Message        string                 `json:"message"`
	SecurityChecks *models.SecurityFlags  `json:"securityChecks,omitempty"`
}

// FromResponse converts a pipeline response to the HTTP shape.
func FromResponse(resp *models.Response) *CommandResponse {
	results := resp.Results
	if results == nil {
		results = []models.CommandResult{}
	}
	return &CommandResponse{
		Success:        resp.Success,
		Outcome:        string(resp.Outcome),
		Failure:        string(resp.Failure),
		Intent:         resp.Intent,
		Results:        results,
		Message:        resp.Message,
		SecurityChecks: resp.SecurityChecks,
	}
}

// DomainsResponse is the HTTP response for GET /domains.
type DomainsResponse struct {
	Domains []catalog.DomainSpec `json:"domains"`
}
