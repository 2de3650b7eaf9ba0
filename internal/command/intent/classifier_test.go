package intent

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
	"lifedash/pkg/testutil"
)

func newDefault() *Classifier {
	return NewClassifier(DefaultTable(catalog.MustDefault()), nil)
}

func TestClassify_Categories(t *testing.T) {
	c := newDefault()

	tests := []struct {
		input    string
		category models.Category
		required []string
	}{
		{"book an appointment with dr smith tomorrow at 3pm", models.CategoryAppointment, []string{}},
		{"I need to see the dentist", models.CategoryAppointment, []string{"date", "time"}},
		{"schedule oil change next week", models.CategorySchedule, []string{"time"}},
		{"order more dog food from chewy", models.CategoryOrder, []string{}},
		{"buy milk", models.CategoryOrder, []string{"vendor"}},
		{"how much is a gallon of milk at costco", models.CategoryPriceCheck, []string{}},
		{"compare netflix vs hulu", models.CategoryComparison, []string{}},
		{"go to finances", models.CategoryNavigate, []string{}},
		{"delete all my expenses", models.CategoryUpdate, []string{}},
		{"add milk to the shopping list", models.CategoryAdd, []string{}},
		{"what did I spend last week?", models.CategoryQuery, []string{}},
		{"weigh 175 pounds", models.CategoryLog, []string{}},
		{"log 10000 steps and spent $50 on groceries", models.CategoryLog, []string{}},
		{"blood pressure 500/20", models.CategoryLog, []string{}},
		{"hello there", models.CategoryInquiry, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := c.Classify(tt.input, nil)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.required, got.RequiredInfo)
		})
	}
}

func TestClassify_PrecedenceNotLongestMatch(t *testing.T) {
	c := newDefault()

	// Matches both order and appointment; appointment is earlier.
	got := c.Classify("buy a gift and book a checkup with the vet", nil)
	assert.Equal(t, models.CategoryAppointment, got.Category)

	// Matches update and log; update is earlier even though log words dominate.
	got = c.Classify("change my weight log: weighed 170, ran 3 miles, slept 8 hours", nil)
	assert.Equal(t, models.CategoryUpdate, got.Category)
}

func TestClassify_ApprovalOnlyForSideEffects(t *testing.T) {
	c := newDefault()
	for input, want := range map[string]bool{
		"order a pizza from dominos":        true,
		"make an appointment for a checkup": true,
		"schedule a call tomorrow":          false,
		"spent $12 on lunch":                false,
		"how much does a haircut cost":      false,
	} {
		assert.Equal(t, want, c.Classify(input, nil).NeedsUserApproval, input)
	}
}

func TestClassify_OrderNeedsImperativePhrasing(t *testing.T) {
	c := newDefault()

	tests := []struct {
		input    string
		category models.Category
		approval bool
	}{
		{"walked 3 miles in order to train", models.CategoryLog, false},
		{"spent $20 to buy a gift", models.CategoryLog, false},
		{"ate lunch before I could buy anything", models.CategoryLog, false},
		{"buy milk", models.CategoryOrder, true},
		{"please order more dog food from chewy", models.CategoryOrder, true},
		{"can you reorder my contact lenses", models.CategoryOrder, true},
		{"I want to buy a new blender", models.CategoryOrder, true},
		{"log 5000 steps and buy some milk", models.CategoryOrder, true},
		{"order a pizza in order to celebrate", models.CategoryOrder, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := c.Classify(tt.input, nil)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.approval, got.NeedsUserApproval)
		})
	}
}

func TestDefaultTable_FollowsPrecedenceSlice(t *testing.T) {
	saved := Precedence
	t.Cleanup(func() { Precedence = saved })

	Precedence = []models.Category{models.CategoryLog, models.CategoryOrder, models.CategoryInquiry}
	table := DefaultTable(catalog.MustDefault())
	require.Len(t, table, 3)

	// Log now outranks order for a message that matches both.
	got := NewClassifier(table, nil).Classify("buy milk and log 5000 steps", nil)
	assert.Equal(t, models.CategoryLog, got.Category)
}

func TestClassify_FixedConfidence(t *testing.T) {
	table := DefaultTable(catalog.MustDefault())
	var inquiry float64
	seen := map[models.Category]bool{}
	for _, row := range table {
		seen[row.Category] = true
		assert.GreaterOrEqual(t, row.Confidence, 0.0)
		assert.LessOrEqual(t, row.Confidence, 1.0)
		if row.Category == models.CategoryInquiry {
			inquiry = row.Confidence
		}
	}
	for _, row := range table {
		if row.Category != models.CategoryInquiry {
			assert.Greater(t, row.Confidence, inquiry, "inquiry must carry the lowest confidence")
		}
	}
	for _, cat := range Precedence {
		assert.True(t, seen[cat], "table is missing %s", cat)
	}

	c := NewClassifier(table, nil)
	a := c.Classify("weigh 175 pounds", nil)
	b := c.Classify("ate 2 eggs", nil)
	assert.Equal(t, a.Confidence, b.Confidence)
}

func TestClassify_TableOrderMatchesPrecedence(t *testing.T) {
	table := DefaultTable(catalog.MustDefault())
	require.Len(t, table, len(Precedence))
	for i, row := range table {
		assert.Equal(t, Precedence[i], row.Category)
	}
}

func TestClassify_Urgency(t *testing.T) {
	c := newDefault()
	hour := func(h int) *models.UserTime { return &models.UserTime{LocalHour: &h, Timezone: "Europe/Berlin"} }

	tests := []struct {
		name     string
		input    string
		userTime *models.UserTime
		want     models.Urgency
	}{
		{"high keyword", "urgent: pay the electric bill", nil, models.UrgencyHigh},
		{"asap", "call the plumber asap", nil, models.UrgencyHigh},
		{"medium keyword", "pay rent today", nil, models.UrgencyMedium},
		{"this week", "renew passport this week", nil, models.UrgencyMedium},
		{"none", "pay rent", nil, models.UrgencyLow},
		{"today late in the evening", "pay rent today", hour(21), models.UrgencyHigh},
		{"today in the morning", "pay rent today", hour(9), models.UrgencyMedium},
		{"this week late stays medium", "renew passport this week", hour(22), models.UrgencyMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.input, tt.userTime).Urgency)
		})
	}
}

func TestClassify_SubstitutedTable(t *testing.T) {
	table := Table{
		{Category: models.CategoryLog, Confidence: 0.7, Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)\bsteps\b`)}},
		{Category: models.CategoryInquiry, Confidence: 0.1},
	}
	c := NewClassifier(table, []UrgencyRule{})

	got := c.Classify("10000 steps asap", nil)
	assert.Equal(t, models.CategoryLog, got.Category)
	assert.Equal(t, 0.7, got.Confidence)
	assert.Equal(t, models.UrgencyLow, got.Urgency, "empty urgency table never escalates")

	got = c.Classify("book a dentist appointment", nil)
	assert.Equal(t, models.CategoryInquiry, got.Category)
	assert.Equal(t, 0.1, got.Confidence)
}

func TestClassify_SameDayDeadlineScenario(t *testing.T) {
	c := newDefault()
	const utterance = "pay the water bill tonight"

	testutil.Given(t, "a same-day deadline without an urgency keyword", func(t *testing.T) {
		testutil.When(t, "the user's local clock is unknown", func(t *testing.T) {
			got := c.Classify(utterance, nil)
			testutil.Then(t, "urgency stays medium", func(t *testing.T) {
				assert.Equal(t, models.UrgencyMedium, got.Urgency)
			})
		})

		testutil.When(t, "it is already late evening for the user", func(t *testing.T) {
			h := LateHour
			got := c.Classify(utterance, &models.UserTime{LocalHour: &h})
			testutil.Then(t, "urgency escalates to high", func(t *testing.T) {
				assert.Equal(t, models.UrgencyHigh, got.Urgency)
			})
		})

		testutil.When(t, "it is just before the late cutoff", func(t *testing.T) {
			h := LateHour - 1
			got := c.Classify(utterance, &models.UserTime{LocalHour: &h})
			testutil.Then(t, "urgency stays medium", func(t *testing.T) {
				assert.Equal(t, models.UrgencyMedium, got.Urgency)
			})
		})
	})
}
