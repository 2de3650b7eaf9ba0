package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
	"lifedash/pkg/platform/sentinel"
)

type fakeGenerator struct {
	text   string
	err    error
	model  string
	config *genai.GenerateContentConfig
	prompt string
	calls  int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model, f.config = model, cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

const twoEntities = `{"entities":[
  {"rawFragment":"spent $30 at Starbucks","domainHint":"financial","confidence":0.92,"title":"Starbucks",
   "fields":[{"name":"type","value":"expense"},{"name":"amount","value":"30"},{"name":"merchant","value":"Starbucks"}],
   "start":0,"end":22},
  {"rawFragment":"vet bill $80","domainHint":"ambiguous","alternatives":["financial","pets"],"confidence":0.6,
   "fields":[{"name":"amount","value":"80"},{"name":"","value":"dropped"}],"start":27,"end":39}
]}`

func TestExtractEntities(t *testing.T) {
	gen := &fakeGenerator{text: twoEntities}
	svc := New(gen, catalog.MustDefault(), WithModel("gemini-test"))

	got, err := svc.ExtractEntities(context.Background(), "spent $30 at Starbucks and vet bill $80",
		models.Intent{Category: models.CategoryLog})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "gemini-test", gen.model)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	assert.NotNil(t, gen.config.ResponseSchema)
	assert.Contains(t, gen.prompt, "Intent hint: log")
	assert.Contains(t, gen.config.SystemInstruction.Parts[0].Text, "- health:")

	assert.Equal(t, catalog.Financial, got[0].DomainHint)
	assert.Equal(t, models.Fields{"type": "expense", "amount": "30", "merchant": "Starbucks"}, got[0].Data)
	assert.Equal(t, models.Span{Start: 0, End: 22}, got[0].Offset)

	assert.Equal(t, catalog.Ambiguous, got[1].DomainHint)
	assert.Equal(t, []catalog.Domain{catalog.Financial, catalog.Pets}, got[1].Alternatives)
	assert.Equal(t, models.Fields{"amount": "80"}, got[1].Data)
}

func TestExtractEntities_Failures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		want error
	}{
		{"transport", &fakeGenerator{err: errors.New("503")}, sentinel.ErrUnavailable},
		{"not json", &fakeGenerator{text: "sorry, I can't"}, sentinel.ErrMalformed},
		{"empty", &fakeGenerator{text: "  "}, sentinel.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.gen, catalog.MustDefault()).ExtractEntities(context.Background(), "x", models.Intent{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_FencedReply(t *testing.T) {
	got, err := parse("```json\n{\"entities\":[]}\n```")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRateLimitHonorsDeadline(t *testing.T) {
	gen := &fakeGenerator{text: `{"entities":[]}`}
	svc := New(gen, catalog.MustDefault(), WithRateLimit(0.001, 1))

	_, err := svc.ExtractEntities(context.Background(), "x", models.Intent{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.ExtractEntities(ctx, "x", models.Intent{})
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls, "second call waits on the limiter and never reaches the model")
}
