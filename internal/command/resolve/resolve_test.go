package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
)

func outcome(domain catalog.Domain, fragment string, start int, status models.ValidationStatus, data models.Fields) models.ValidationOutcome {
	return models.ValidationOutcome{
		Entity: models.RoutedEntity{
			CandidateEntity: models.CandidateEntity{
				RawFragment: fragment,
				Title:       fragment,
				Confidence:  0.9,
				Offset:      models.Span{Start: start, End: start + len(fragment)},
			},
			Domain: domain,
			Reason: models.ReasonDirectMatch,
		},
		Status:     status,
		Normalized: data,
	}
}

func weight(v float64) models.Fields {
	return models.Fields{"type": "weight", "weight": v, "weightUnit": "lb"}
}

func TestResolve_RestatementKeepsLater(t *testing.T) {
	got := Resolve([]models.ValidationOutcome{
		outcome(catalog.Health, "weighed 80 kg", 0, models.StatusValid, weight(176.37)),
		outcome(catalog.Health, "I mean 176.37 lb", 15, models.StatusValid, weight(176.37)),
	})
	require.Len(t, got, 1)
	assert.Equal(t, "I mean 176.37 lb", got[0].Fragment)
}

func TestResolve_RepetitionMarkerKeepsBoth(t *testing.T) {
	water := models.Fields{"type": "water", "volume": 8.0, "volumeUnit": "fl oz"}
	for _, marker := range []string{"again", "another", "second", "twice", "one more"} {
		t.Run(marker, func(t *testing.T) {
			got := Resolve([]models.ValidationOutcome{
				outcome(catalog.Nutrition, "drank 8 oz water", 0, models.StatusValid, water),
				outcome(catalog.Nutrition, "8 oz water "+marker, 20, models.StatusValid, water),
			})
			assert.Len(t, got, 2)
		})
	}
}

func TestResolve_OnlyValidOutcomesCollapse(t *testing.T) {
	data := models.Fields{"type": "expense", "amount": 0.0}
	got := Resolve([]models.ValidationOutcome{
		outcome(catalog.Financial, "spent $0", 0, models.StatusNeedsClarification, data),
		outcome(catalog.Financial, "spent $0", 10, models.StatusNeedsClarification, data),
	})
	assert.Len(t, got, 2)
}

func TestResolve_DifferentDomainsDoNotCollapse(t *testing.T) {
	data := models.Fields{"note": "x"}
	got := Resolve([]models.ValidationOutcome{
		outcome(catalog.Pets, "x", 0, models.StatusValid, data),
		outcome(catalog.Tasks, "x", 2, models.StatusValid, data),
	})
	assert.Len(t, got, 2)
}

func TestResolve_NeverGrows(t *testing.T) {
	in := []models.ValidationOutcome{
		outcome(catalog.Health, "a", 0, models.StatusValid, weight(150)),
		outcome(catalog.Health, "b", 2, models.StatusRejected, weight(0)),
		outcome(catalog.Health, "c", 4, models.StatusValid, weight(150)),
	}
	assert.LessOrEqual(t, len(Resolve(in)), len(in))
}

func TestResolve_LinksSameRecord(t *testing.T) {
	got := Resolve([]models.ValidationOutcome{
		outcome(catalog.Tasks, "add task buy milk", 0, models.StatusValid, models.Fields{"type": "task", "title": "Buy milk"}),
		outcome(catalog.Financial, "spent $4", 20, models.StatusValid, models.Fields{"type": "expense", "amount": 4.0}),
		outcome(catalog.Tasks, "mark buy milk done", 30, models.StatusValid, models.Fields{"type": "task", "title": "buy milk", "done": true}),
	})
	require.Len(t, got, 3)
	assert.Empty(t, got[0].PreviousID)
	assert.Empty(t, got[1].PreviousID)
	assert.Equal(t, got[0].ID, got[2].PreviousID)
}

func TestResolve_DeterministicIDs(t *testing.T) {
	in := []models.ValidationOutcome{
		outcome(catalog.Health, "weigh 175 pounds", 0, models.StatusValid, weight(175)),
		outcome(catalog.Financial, "spent $5", 20, models.StatusValid, models.Fields{"type": "expense", "amount": 5.0}),
	}
	first := Resolve(in)
	second := Resolve(in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("resolve is not deterministic (-first +second):\n%s", diff)
	}

	id, err := uuid.Parse(first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), id.Version())
	assert.NotEqual(t, first[0].ID, first[1].ID)
}

func TestResolve_MapsStatusAndCarriesFields(t *testing.T) {
	o := outcome(catalog.Health, "blood pressure 500/20", 0, models.StatusRejected,
		models.Fields{"type": "blood_pressure", "systolic": 500.0, "diastolic": 20.0})
	o.Issues = []string{"systolic 500 out of range (40 to 300)"}
	o.Failure = models.FailureValidationFailed

	got := Resolve([]models.ValidationOutcome{o})
	require.Len(t, got, 1)
	assert.Equal(t, models.ResultRejected, got[0].Status)
	assert.Equal(t, o.Issues, got[0].Issues)
	assert.Equal(t, models.FailureValidationFailed, got[0].Failure)
	assert.Equal(t, models.ReasonDirectMatch, got[0].RoutingReason)
	assert.Equal(t, catalog.Health, got[0].Domain)
}
