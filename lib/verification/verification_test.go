package verification

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib/entity"
)

type verificationSuite struct {
	suite.Suite
}

func TestVerificationSuite(t *testing.T) {
	suite.Run(t, new(verificationSuite))
}

func (s *verificationSuite) verifier(strictness Strictness) *Verifier {
	v, err := NewVerifier(strictness, DefaultEquivalences())
	s.Require().NoError(err)
	return v
}

func (s *verificationSuite) TestAllCriticalEntitiesPreserved() {
	entities := []entity.Entity{
		{Text: "50mg", Category: entity.Dosage},
		{Text: "Atenolol", Category: entity.Medication},
		{Text: "PO", Category: entity.Route},
		{Text: "q.d.", Category: entity.Frequency},
		{Text: "hypertension", Category: entity.Condition},
	}
	simplified := "You have been given 50mg of atenolol to take by mouth once a day " +
		"for high blood pressure. Watch out for slow heart rate."

	result := s.verifier(StrictnessHigh).Verify(entities, simplified)

	s.True(result.IsSafe)
	s.Equal(1.0, result.Score)
	s.Empty(result.MissingEntities)
	s.Equal([]string{
		"Entity 'PO' was transformed (acceptable for ROUTE)",
		"Entity 'q.d.' was transformed (acceptable for FREQUENCY)",
	}, result.Warnings)
}

func (s *verificationSuite) TestMissingDosageIsUnsafe() {
	entities := []entity.Entity{
		{Text: "500mg", Category: entity.Dosage},
		{Text: "Metformin", Category: entity.Medication},
	}

	result := s.verifier(StrictnessHigh).Verify(entities, "Take metformin twice a day.")

	s.False(result.IsSafe)
	s.Equal(0.5, result.Score)
	s.Equal([]string{"500mg"}, result.MissingEntities)
	s.Contains(result.Warnings, "SAFETY ALERT: Critical entity '500mg' not found in simplified text!")
}

func (s *verificationSuite) TestMissingDosageStaysUnsafeAtMediumStrictness() {
	// Medium allows one missing entity, but the score threshold still fails
	// when half the critical entities are gone.
	entities := []entity.Entity{
		{Text: "500mg", Category: entity.Dosage},
		{Text: "Metformin", Category: entity.Medication},
	}

	result := s.verifier(StrictnessMedium).Verify(entities, "Take metformin twice a day.")

	s.False(result.IsSafe)
}

func (s *verificationSuite) TestThresholdGrid() {
	// build total dosage entities, drop the last `missing` of them from the
	// candidate text
	makeCase := func(total, missing int) ([]entity.Entity, string) {
		entities := make([]entity.Entity, 0, total)
		var present []string
		for i := 0; i < total; i++ {
			text := fmt.Sprintf("%dmg", 10+i)
			entities = append(entities, entity.Entity{Text: text, Category: entity.Dosage})
			if i < total-missing {
				present = append(present, text)
			}
		}
		return entities, "Take " + strings.Join(present, " and ") + " daily."
	}

	for _, tt := range []struct {
		name       string
		strictness Strictness
		total      int
		missing    int
		wantSafe   bool
	}{
		{name: "high passes when nothing is missing", strictness: StrictnessHigh, total: 4, missing: 0, wantSafe: true},
		{name: "high fails on one missing even at score 0.95", strictness: StrictnessHigh, total: 20, missing: 1, wantSafe: false},
		{name: "medium tolerates one missing of ten", strictness: StrictnessMedium, total: 10, missing: 1, wantSafe: true},
		{name: "medium fails on two missing of ten", strictness: StrictnessMedium, total: 10, missing: 2, wantSafe: false},
		{name: "low tolerates two missing of eight", strictness: StrictnessLow, total: 8, missing: 2, wantSafe: true},
		{name: "low fails on three missing of twelve", strictness: StrictnessLow, total: 12, missing: 3, wantSafe: false},
	} {
		entities, simplified := makeCase(tt.total, tt.missing)
		result := s.verifier(tt.strictness).Verify(entities, simplified)
		s.Equal(tt.wantSafe, result.IsSafe, tt.name)
		s.Len(result.MissingEntities, tt.missing, tt.name)
	}
}

func (s *verificationSuite) TestNoCriticalEntitiesIsSafe() {
	entities := []entity.Entity{
		{Text: "PO", Category: entity.Route},
		{Text: "heart", Category: entity.Anatomy},
	}

	result := s.verifier(StrictnessHigh).Verify(entities, "Anything at all.")

	s.True(result.IsSafe)
	s.Equal(1.0, result.Score)
	s.Empty(result.MissingEntities)
}

func (s *verificationSuite) TestFrequencyTransformWarningOnly() {
	entities := []entity.Entity{
		{Text: "q.d.", Category: entity.Frequency},
	}

	result := s.verifier(StrictnessHigh).Verify(entities, "Take this medicine once a day.")

	s.True(result.IsSafe)
	s.Equal(1.0, result.Score)
	s.Empty(result.MissingEntities)
	s.Equal([]string{"Entity 'q.d.' was transformed (acceptable for FREQUENCY)"}, result.Warnings)
}

func (s *verificationSuite) TestNormalizedMatchToleratesSpacing() {
	entities := []entity.Entity{
		{Text: "120/80 mmHg", Category: entity.Vital},
	}

	result := s.verifier(StrictnessHigh).Verify(entities, "Your blood pressure was 120/80  mmHg today.")

	s.True(result.IsSafe)
	s.Empty(result.MissingEntities)
}

func (s *verificationSuite) TestDosageFuzzyMatch() {
	v := s.verifier(StrictnessHigh)

	spaced := v.Verify([]entity.Entity{{Text: "50mg", Category: entity.Dosage}}, "Take 50 mg every morning.")
	s.True(spaced.IsSafe)

	joined := v.Verify([]entity.Entity{{Text: "50 mg", Category: entity.Dosage}}, "Take 50mg every morning.")
	s.True(joined.IsSafe)

	wrongAmount := v.Verify([]entity.Entity{{Text: "50mg", Category: entity.Dosage}}, "Take 5 mg every morning.")
	s.False(wrongAmount.IsSafe)
}

func (s *verificationSuite) TestMedicationRootMatch() {
	v := s.verifier(StrictnessHigh)

	result := v.Verify(
		[]entity.Entity{{Text: "Atenolol tablets", Category: entity.Medication}},
		"Keep taking atenolol every day.",
	)
	s.True(result.IsSafe)

	// roots of three characters or fewer are too ambiguous to count
	short := v.Verify([]entity.Entity{{Text: "Ib mg", Category: entity.Medication}}, "Take ib today.")
	s.False(short.IsSafe)
}

func (s *verificationSuite) TestEquivalenceIsOneDirectional() {
	v := s.verifier(StrictnessHigh)

	abbreviated := v.Verify([]entity.Entity{{Text: "PO", Category: entity.Route}}, "Take by mouth.")
	s.Equal([]string{"Entity 'PO' was transformed (acceptable for ROUTE)"}, abbreviated.Warnings)

	expanded := v.Verify([]entity.Entity{{Text: "by mouth", Category: entity.Route}}, "Take PO.")
	s.Empty(expanded.Warnings)
}

func (s *verificationSuite) TestEmptyCandidateLosesEverything() {
	entities := []entity.Entity{
		{Text: "50mg", Category: entity.Dosage},
	}

	result := s.verifier(StrictnessLow).Verify(entities, "")

	s.False(result.IsSafe)
	s.Equal([]string{"50mg"}, result.MissingEntities)
	s.Equal(0.0, result.Score)
}

func (s *verificationSuite) TestVerifyIsPure() {
	v := s.verifier(StrictnessHigh)
	entities := []entity.Entity{
		{Text: "50mg", Category: entity.Dosage},
		{Text: "PO", Category: entity.Route},
	}
	simplified := "Take 50mg by mouth."

	first := v.Verify(entities, simplified)
	second := v.Verify(entities, simplified)

	s.Equal(first, second)
}

func (s *verificationSuite) TestParseStrictness() {
	for _, valid := range []string{"high", "Medium", " LOW "} {
		_, err := ParseStrictness(valid)
		s.NoError(err)
	}

	_, err := ParseStrictness("paranoid")
	s.Error(err)
}

func (s *verificationSuite) TestNewVerifierRejectsUnknownStrictness() {
	_, err := NewVerifier(Strictness("casual"), DefaultEquivalences())
	s.Error(err)
}

func (s *verificationSuite) TestExplain() {
	safe := Explain(Result{IsSafe: true, Score: 1.0})
	s.Contains(safe, "SAFE: Verification score: 100.0%")
	s.Contains(safe, "All critical medical entities are preserved.")

	unsafe := Explain(Result{
		IsSafe:          false,
		Score:           0.5,
		MissingEntities: []string{"500mg"},
		Warnings:        []string{"SAFETY ALERT: Critical entity '500mg' not found in simplified text!"},
	})
	s.Contains(unsafe, "UNSAFE: Verification score: 50.0%")
	s.Contains(unsafe, "Missing 1 critical entities:")
	s.Contains(unsafe, "  - 500mg")
	s.Contains(unsafe, "Warnings:")
}

func (s *verificationSuite) TestCompareEntitySets() {
	v := s.verifier(StrictnessMedium)

	original := []entity.Entity{
		{Text: "50mg", Category: entity.Dosage},
		{Text: "atenolol", Category: entity.Medication},
		{Text: "PO", Category: entity.Route},
	}
	simplified := []entity.Entity{
		{Text: "50mg", Category: entity.Dosage},
		{Text: "lisinopril", Category: entity.Medication},
	}

	result := v.CompareEntitySets(original, simplified)

	s.False(result.IsSafe)
	s.InDelta(1.0/3.0, result.Score, 1e-9)
	s.Equal([]string{"atenolol"}, result.MissingEntities)
	s.Equal([]string{
		"Missing entities: atenolol",
		"Extra entities (hallucinations?): lisinopril",
	}, result.Warnings)

	identical := v.CompareEntitySets(original, original)
	s.True(identical.IsSafe)
	s.Equal(1.0, identical.Score)
	s.Empty(identical.Warnings)
}
