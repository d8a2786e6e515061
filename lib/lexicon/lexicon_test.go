package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryTerms(t *testing.T) {
	type args struct {
		entry Entry
	}
	tests := []struct {
		name string
		args args
		want []string
	}{
		{
			name: "empty entry",
			args: args{entry: Entry{}},
			want: []string{},
		},
		{
			name: "name only",
			args: args{entry: Entry{Name: "Aspirin"}},
			want: []string{"aspirin"},
		},
		{
			name: "synonyms are normalized and deduplicated",
			args: args{entry: Entry{
				Name:     "Atenolol",
				Synonyms: []string{"Tenormin", "ATENOLOL", "atenolol "},
			}},
			want: []string{"atenolol", "tenormin"},
		},
		{
			name: "multi word synonyms keep single spacing",
			args: args{entry: Entry{
				Name:     "Insulin Glargine",
				Synonyms: []string{"insulin  glargine", "Lantus"},
			}},
			want: []string{"insulin glargine", "lantus"},
		},
		{
			name: "blank synonyms are dropped",
			args: args{entry: Entry{Name: "Metformin", Synonyms: []string{"", "  "}}},
			want: []string{"metformin"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.args.entry.Terms())
		})
	}
}

func TestRead(t *testing.T) {
	contents := `# known medications
{"name": "Atenolol", "synonyms": ["Tenormin"], "identifiers": {"ATC": "C07AB03"}}

{"name": "Aspirin", "metadata": {"class": "NSAID"}}
`
	var entries []Entry
	err := Read(strings.NewReader(contents), func(entry Entry) error {
		entries = append(entries, entry)
		return nil
	})

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "Atenolol", entries[0].Name)
	assert.Equal(t, []string{"Tenormin"}, entries[0].Synonyms)
	assert.Equal(t, map[string]string{"ATC": "C07AB03"}, entries[0].Identifiers)
	assert.Equal(t, "Aspirin", entries[1].Name)
	assert.Equal(t, map[string]string{"class": "NSAID"}, entries[1].Metadata)
}

func TestReadReportsBadLine(t *testing.T) {
	contents := "{\"name\": \"Aspirin\"}\n{not json}\n"

	err := Read(strings.NewReader(contents), func(Entry) error { return nil })

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadStopsOnCallbackError(t *testing.T) {
	contents := "{\"name\": \"Aspirin\"}\n{\"name\": \"Atenolol\"}\n"

	calls := 0
	err := Read(strings.NewReader(contents), func(Entry) error {
		calls++
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestReadFileMissing(t *testing.T) {
	err := ReadFile("this/path/does/not/exist.jsonl", func(Entry) error { return nil })
	assert.Error(t, err)
}
