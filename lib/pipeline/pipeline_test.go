package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/extractor"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/relevance"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/simplifier"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/verification"
)

const (
	medicalText = "Patient prescribed 50mg Atenolol PO q.d. for hypertension. Monitor for bradycardia."
	recipeText  = "The recipe calls for flour, sugar and salt. Bake in the oven for thirty minutes."
)

var testEntities = []entity.Entity{
	{Text: "50mg", Category: entity.Dosage, Start: 19, End: 23, Confidence: 1},
	{Text: "Atenolol", Category: entity.Medication, Start: 24, End: 32, Confidence: 0.85},
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, text string) ([]entity.Entity, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Entity), args.Error(1)
}

type mockSimplifier struct {
	mock.Mock
}

func (m *mockSimplifier) Simplify(ctx context.Context, req simplifier.Request) simplifier.Outcome {
	args := m.Called(ctx, req)
	return args.Get(0).(simplifier.Outcome)
}

func successOutcome(text string) simplifier.Outcome {
	return simplifier.Outcome{
		SimplifiedText: text,
		Model:          "rule-based",
		Prompt:         "N/A",
		Success:        true,
	}
}

func newTestPipeline(t *testing.T, ext extractor.Client, simp simplifier.Client, opts Options) *Pipeline {
	gate, err := relevance.NewChecker(relevance.DefaultIndicators(), true)
	require.NoError(t, err)

	verifier, err := verification.NewVerifier(verification.StrictnessHigh, verification.DefaultEquivalences())
	require.NoError(t, err)

	return New(gate, ext, simp, verifier, opts)
}

func TestProcessSafeText(t *testing.T) {
	ext := &mockExtractor{}
	ext.On("Extract", mock.Anything, medicalText).Return(testEntities, nil)
	simp := &mockSimplifier{}
	simp.On("Simplify", mock.Anything, simplifier.Request{Text: medicalText, Entities: testEntities}).
		Return(successOutcome("You take 50mg Atenolol by mouth once a day. Watch for slow heart rate."))

	p := newTestPipeline(t, ext, simp, Options{Backend: "rule-based", MaxRetries: 2})
	result := p.Process(context.Background(), medicalText)

	assert.True(t, result.IsSafe)
	assert.True(t, result.IsRelevant)
	assert.Equal(t, relevance.StatusMedical, result.RelevanceStatus)
	assert.Equal(t, medicalText, result.OriginalText)
	assert.Equal(t, "You take 50mg Atenolol by mouth once a day. Watch for slow heart rate.", result.SimplifiedText)
	assert.Equal(t, testEntities, result.Entities)
	require.NotNil(t, result.Verification)
	assert.Equal(t, 1.0, result.Verification.Score)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "rule-based", result.ModelUsed)
	ext.AssertExpectations(t)
	simp.AssertExpectations(t)
}

func TestProcessRefusesUnrelatedText(t *testing.T) {
	ext := &mockExtractor{}
	simp := &mockSimplifier{}

	p := newTestPipeline(t, ext, simp, Options{Backend: "rule-based", MaxRetries: 2})
	result := p.Process(context.Background(), recipeText)

	assert.False(t, result.IsSafe)
	assert.False(t, result.IsRelevant)
	assert.Equal(t, relevance.StatusUnrelated, result.RelevanceStatus)
	assert.Empty(t, result.SimplifiedText)
	assert.Equal(t, []entity.Entity{}, result.Entities)
	assert.Nil(t, result.Verification)
	require.Len(t, result.Warnings, 4)
	assert.True(t, strings.HasPrefix(result.Warnings[0], "CRITICAL SAFETY ALERT:"))
	assert.Equal(t, "This text was NOT processed because it is unrelated to medical content.", result.Warnings[1])
	assert.Equal(t, "rule-based", result.ModelUsed)
	ext.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	simp.AssertNotCalled(t, "Simplify", mock.Anything, mock.Anything)
}

func TestProcessRetriesWithMissingTermsSpelledOut(t *testing.T) {
	ext := &mockExtractor{}
	ext.On("Extract", mock.Anything, medicalText).Return(testEntities, nil)

	simp := &mockSimplifier{}
	simp.On("Simplify", mock.Anything, simplifier.Request{Text: medicalText, Entities: testEntities}).
		Return(successOutcome("You take 50mg of the heart pill once a day.")).Once()
	simp.On("Simplify", mock.Anything, simplifier.Request{
		Text:        medicalText,
		Entities:    testEntities,
		Instruction: "CRITICAL: You MUST include these exact terms: 'Atenolol'",
	}).Return(successOutcome("You take 50mg Atenolol once a day.")).Once()

	p := newTestPipeline(t, ext, simp, Options{Backend: "rule-based", MaxRetries: 2})
	result := p.Process(context.Background(), medicalText)

	assert.True(t, result.IsSafe)
	assert.Equal(t, "You take 50mg Atenolol once a day.", result.SimplifiedText)
	simp.AssertExpectations(t)
	simp.AssertNumberOfCalls(t, "Simplify", 2)
}

func TestProcessGivesUpAfterMaxRetries(t *testing.T) {
	ext := &mockExtractor{}
	ext.On("Extract", mock.Anything, medicalText).Return(testEntities, nil)
	simp := &mockSimplifier{}
	simp.On("Simplify", mock.Anything, mock.AnythingOfType("simplifier.Request")).
		Return(successOutcome("You take the heart pill."))

	p := newTestPipeline(t, ext, simp, Options{Backend: "rule-based", MaxRetries: 2})
	result := p.Process(context.Background(), medicalText)

	assert.False(t, result.IsSafe)
	simp.AssertNumberOfCalls(t, "Simplify", 3)
	require.NotNil(t, result.Verification)
	assert.Equal(t, []string{"50mg", "Atenolol"}, result.Verification.MissingEntities)
	assert.Contains(t, result.Warnings, "SAFETY ALERT: Critical entity '50mg' not found in simplified text!")
}

func TestProcessExtractionFailure(t *testing.T) {
	ext := &mockExtractor{}
	ext.On("Extract", mock.Anything, medicalText).
		Return(nil, errors.New("ner service returned 503 Service Unavailable"))
	simp := &mockSimplifier{}

	p := newTestPipeline(t, ext, simp, Options{Backend: "rule-based", MaxRetries: 2})
	result := p.Process(context.Background(), medicalText)

	assert.False(t, result.IsSafe)
	assert.True(t, result.IsRelevant)
	assert.Nil(t, result.Verification)
	assert.Equal(t, []entity.Entity{}, result.Entities)
	assert.Equal(t, []string{"Extraction failed: ner service returned 503 Service Unavailable"}, result.Warnings)
	simp.AssertNotCalled(t, "Simplify", mock.Anything, mock.Anything)
}

func TestProcessSimplificationFailure(t *testing.T) {
	ext := &mockExtractor{}
	ext.On("Extract", mock.Anything, medicalText).Return(testEntities, nil)
	simp := &mockSimplifier{}
	simp.On("Simplify", mock.Anything, mock.AnythingOfType("simplifier.Request")).
		Return(simplifier.Outcome{
			Model:        "claude-haiku-4-5-20251001",
			ErrorMessage: "failed after 4 attempts: rate limited",
		})

	p := newTestPipeline(t, ext, simp, Options{Backend: "anthropic", MaxRetries: 2})
	result := p.Process(context.Background(), medicalText)

	assert.False(t, result.IsSafe)
	assert.Empty(t, result.SimplifiedText)
	assert.Equal(t, testEntities, result.Entities)
	assert.Equal(t, []string{"Simplification failed: failed after 4 attempts: rate limited"}, result.Warnings)
	assert.Equal(t, "anthropic", result.ModelUsed)
	assert.Nil(t, result.Verification)
}

func TestProcessNotesUncertainRelevance(t *testing.T) {
	text := "Take 50mg daily with water."
	entities := []entity.Entity{
		{Text: "50mg", Category: entity.Dosage, Start: 5, End: 9, Confidence: 1},
	}

	ext := &mockExtractor{}
	ext.On("Extract", mock.Anything, text).Return(entities, nil)
	simp := &mockSimplifier{}
	simp.On("Simplify", mock.Anything, simplifier.Request{Text: text, Entities: entities}).
		Return(successOutcome("You take 50mg every day with water."))

	p := newTestPipeline(t, ext, simp, Options{Backend: "rule-based", MaxRetries: 2})
	result := p.Process(context.Background(), text)

	assert.True(t, result.IsSafe)
	assert.Equal(t, relevance.StatusLikelyMedical, result.RelevanceStatus)
	require.NotEmpty(t, result.Warnings)
	assert.True(t, strings.HasPrefix(result.Warnings[0], "Relevance Note:"))
}

func TestBatchProcess(t *testing.T) {
	ext := &mockExtractor{}
	ext.On("Extract", mock.Anything, medicalText).Return(testEntities, nil)
	simp := &mockSimplifier{}
	simp.On("Simplify", mock.Anything, mock.AnythingOfType("simplifier.Request")).
		Return(successOutcome("You take 50mg Atenolol by mouth once a day."))

	p := newTestPipeline(t, ext, simp, Options{Backend: "rule-based", MaxRetries: 2})
	results := p.BatchProcess(context.Background(), []string{medicalText, recipeText})

	require.Len(t, results, 2)
	assert.Equal(t, medicalText, results[0].OriginalText)
	assert.True(t, results[0].IsSafe)
	assert.Equal(t, recipeText, results[1].OriginalText)
	assert.False(t, results[1].IsRelevant)

	stats := Summarize(results)
	assert.Equal(t, Statistics{
		TotalProcessed:           2,
		SafeSimplifications:      1,
		UnsafeSimplifications:    1,
		SafetyRate:               0.5,
		AverageVerificationScore: 0.5,
	}, stats)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Statistics{}, Summarize(nil))
}
