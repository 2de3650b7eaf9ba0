package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
	"lifedash/internal/command/ports/mocks"
)

// =============================================================================
// Extractor Test Suite
// =============================================================================
// Justification for unit tests: the extractor is the only place that repairs
// language service output (offsets, confidences, types, domain names), and
// the repairs must hold for any backend.

type ExtractorSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockLanguageService
	ex      *Extractor
}

func TestExtractorSuite(t *testing.T) {
	suite.Run(t, new(ExtractorSuite))
}

func (s *ExtractorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockLanguageService(s.ctrl)
	s.ex = New(s.service, catalog.MustDefault(), WithMaxEntities(3), WithTimeout(50*time.Millisecond))
}

func (s *ExtractorSuite) expect(text string, out []models.CandidateEntity, err error) *gomock.Call {
	return s.service.EXPECT().
		ExtractEntities(gomock.Any(), text, gomock.Any()).
		Return(out, err)
}

// =============================================================================
// Failure Mapping
// =============================================================================

func (s *ExtractorSuite) TestServiceFailures() {
	s.Run("service error maps to unavailable without retry", func() {
		s.expect("weigh 175", nil, errors.New("boom")).Times(1)

		_, err := s.ex.Extract(context.Background(), "weigh 175", models.Intent{})
		s.Require().Error(err)
		s.ErrorIs(err, ErrExtractorUnavailable)

		var ue *UnavailableError
		s.Require().ErrorAs(err, &ue)
		s.Equal(CauseOutage, ue.Cause)
	})

	s.Run("deadline maps to timeout", func() {
		s.service.EXPECT().
			ExtractEntities(gomock.Any(), "slow", gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ string, _ models.Intent) ([]models.CandidateEntity, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})

		_, err := s.ex.Extract(context.Background(), "slow", models.Intent{})
		var ue *UnavailableError
		s.Require().ErrorAs(err, &ue)
		s.Equal(CauseTimeout, ue.Cause)
		s.ErrorIs(err, ErrExtractorUnavailable)
	})

	s.Run("empty result is not an error", func() {
		s.expect("hello", nil, nil)

		got, err := s.ex.Extract(context.Background(), "hello", models.Intent{})
		s.NoError(err)
		s.Empty(got)
	})
}

// =============================================================================
// Contract Repair
// =============================================================================

func (s *ExtractorSuite) TestOrderingAndOffsets() {
	text := "spent $30 at Starbucks and $25 at Target"
	s.expect(text, []models.CandidateEntity{
		{RawFragment: "$25 at Target", DomainHint: "financial", Confidence: 0.9},
		{RawFragment: "spent $30 at Starbucks", DomainHint: "financial", Confidence: 0.9, Offset: models.Span{Start: 99, End: 120}},
	}, nil)

	got, err := s.ex.Extract(context.Background(), text, models.Intent{})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("spent $30 at Starbucks", got[0].RawFragment)
	s.Equal(models.Span{Start: 0, End: 22}, got[0].Offset)
	s.Equal(models.Span{Start: 27, End: 40}, got[1].Offset)
}

func (s *ExtractorSuite) TestRepeatedFragmentsGetDistinctOffsets() {
	text := "drank water and drank water"
	s.expect(text, []models.CandidateEntity{
		{RawFragment: "drank water", DomainHint: "nutrition"},
		{RawFragment: "drank water", DomainHint: "nutrition"},
	}, nil)

	got, err := s.ex.Extract(context.Background(), text, models.Intent{})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(0, got[0].Offset.Start)
	s.Equal(16, got[1].Offset.Start)
}

func (s *ExtractorSuite) TestNormalization() {
	text := "Weighed 80 kg"
	s.expect(text, []models.CandidateEntity{{
		RawFragment:  "Weighed 80 kg",
		DomainHint:   "Medical",
		Alternatives: []catalog.Domain{"vitals", "nonsense", "health"},
		Confidence:   1.7,
		Data:         models.Fields{"weight": "80", "weightUnit": "kg", "fasting": "TRUE", "count": 3},
	}}, nil)

	got, err := s.ex.Extract(context.Background(), text, models.Intent{})
	s.Require().NoError(err)
	s.Require().Len(got, 1)

	c := got[0]
	s.Equal(catalog.Health, c.DomainHint)
	s.Equal([]catalog.Domain{catalog.Health}, c.Alternatives)
	s.Equal(1.0, c.Confidence)
	s.Equal(80.0, c.Data["weight"])
	s.Equal("kg", c.Data["weightUnit"])
	s.Equal(true, c.Data["fasting"])
	s.Equal(3.0, c.Data["count"])
	s.Equal("Weighed 80 kg", c.Title)
}

func (s *ExtractorSuite) TestUnknownHintBecomesAmbiguous() {
	s.expect("vet bill $200", []models.CandidateEntity{
		{RawFragment: "vet bill $200", DomainHint: "spaceships", Confidence: -1},
	}, nil)

	got, err := s.ex.Extract(context.Background(), "vet bill $200", models.Intent{})
	s.Require().NoError(err)
	s.Equal(catalog.Ambiguous, got[0].DomainHint)
	s.Equal(0.0, got[0].Confidence)
}

func (s *ExtractorSuite) TestCapsEntityCount() {
	text := "a, b, c, d, e"
	var out []models.CandidateEntity
	for _, f := range []string{"e", "d", "c", "b", "a"} {
		out = append(out, models.CandidateEntity{RawFragment: f, DomainHint: "tasks"})
	}
	s.expect(text, out, nil)

	got, err := s.ex.Extract(context.Background(), text, models.Intent{})
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal([]string{"a", "b", "c"}, []string{got[0].RawFragment, got[1].RawFragment, got[2].RawFragment})
}

func (s *ExtractorSuite) TestDropsEmptyCandidates() {
	s.expect("log water", []models.CandidateEntity{
		{RawFragment: "   "},
		{RawFragment: "log water", DomainHint: "nutrition"},
	}, nil)

	got, err := s.ex.Extract(context.Background(), "log water", models.Intent{})
	s.Require().NoError(err)
	s.Len(got, 1)
}
