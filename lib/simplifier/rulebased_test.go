package simplifier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleBasedSimplify(t *testing.T) {
	simplifier := NewRuleBased(nil)
	type args struct {
		text string
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "empty text",
			args: args{text: ""},
			want: "",
		},
		{
			name: "discharge instruction with dosage, route and frequency",
			args: args{text: "Patient prescribed 50mg Atenolol PO q.d. for hypertension. Monitor for bradycardia."},
			want: "You given 50mg Atenolol by mouth once a day. for high blood pressure. watch out for slow heart rate.",
		},
		{
			name: "intravenous twice daily",
			args: args{text: "Administer 10 units insulin IV b.i.d."},
			want: "give 10 units insulin into a vein twice a day.",
		},
		{
			name: "multi word term wins over its parts",
			args: args{text: "Watch for orthostatic hypotension."},
			want: "Watch for low blood pressure when standing.",
		},
		{
			name: "case insensitive matching",
			args: args{text: "HYPERTENSION with Edema"},
			want: "high blood pressure with swelling",
		},
		{
			name: "word boundaries protect longer words",
			args: args{text: "The patient should be monitored for seizures."},
			want: "You should monitored for convulsions.",
		},
		{
			name: "dotted frequency keeps sentence punctuation",
			args: args{text: "Take aspirin q.d."},
			want: "Take aspirin once a day.",
		},
		{
			name: "whitespace is collapsed",
			args: args{text: "Take  two   tablets\nafter meals."},
			want: "Take two tablets after meals.",
		},
		{
			name: "text without medical terms is unchanged",
			args: args{text: "Follow up in two weeks."},
			want: "Follow up in two weeks.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := simplifier.Simplify(context.Background(), Request{Text: tt.args.text})
			assert.True(t, got.Success)
			assert.Equal(t, tt.want, got.SimplifiedText)
			assert.Equal(t, "rule-based", got.Model)
			assert.Equal(t, "N/A", got.Prompt)
			assert.Empty(t, got.ErrorMessage)
		})
	}
}

func TestRuleBasedCustomReplacements(t *testing.T) {
	simplifier := NewRuleBased(Replacements{"cephalalgia": "headache"})

	got := simplifier.Simplify(context.Background(), Request{Text: "Cephalalgia reported on admission."})
	assert.Equal(t, "headache reported on admission.", got.SimplifiedText)

	// The built-in table is not consulted when a custom one is given.
	got = simplifier.Simplify(context.Background(), Request{Text: "hypertension"})
	assert.Equal(t, "hypertension", got.SimplifiedText)
}

func TestLoadReplacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replacements.yml")
	contents := []byte("pyrexia: fever\nemesis: vomiting\n")
	assert.NoError(t, os.WriteFile(path, contents, 0o600))

	replacements, err := LoadReplacements(path)

	assert.NoError(t, err)
	assert.Equal(t, Replacements{"pyrexia": "fever", "emesis": "vomiting"}, replacements)

	_, err = LoadReplacements(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
