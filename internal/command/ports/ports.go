//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

package ports

import (
	"context"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
	"lifedash/pkg/platform/audit"
)

// LanguageService is the external language-understanding collaborator. It
// decomposes sanitized text into candidates; the intent is a hint only.
// Implementations may return loosely typed data; the extractor normalizes it.
type LanguageService interface {
	ExtractEntities(ctx context.Context, text string, hint models.Intent) ([]models.CandidateEntity, error)
}

// EntryRepository persists one structured entry and returns its ID.
type EntryRepository interface {
	Save(ctx context.Context, userID string, domain catalog.Domain, data map[string]any) (string, error)
}

// AuditPort emits audit events. Defined here to keep the command module
// independent of the publisher implementation.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
