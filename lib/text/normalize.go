package text

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TokenDelimiters are single byte characters stripped from the ends of
// tokens before dictionary lookup.
var TokenDelimiters = map[byte]struct{}{
	'(':  {},
	')':  {},
	'{':  {},
	'}':  {},
	'[':  {},
	']':  {},
	'"':  {},
	'\'': {},
	':':  {},
	';':  {},
	',':  {},
	'.':  {},
	'?':  {},
	'!':  {},
}

func IsTokenDelimiter(b byte) bool {
	_, ok := TokenDelimiters[b]
	return ok
}

/**
	NormalizeString strips a single enclosing delimiter from each end of
	token, folds the remainder to NFKC and lowercases it.

	sentenceEnd reports whether a trailing delimiter was removed. Callers
	building compound terms use it to stop a term crossing punctuation.

	offset is the number of leading bytes removed, so that span positions
	can stay aligned with the source text.
**/
func NormalizeString(token string) (normalized string, sentenceEnd bool, offset int) {
	if len(token) == 0 {
		return "", false, 0
	} else if len(token) == 1 {
		// single characters are never dictionary terms
		return "", IsTokenDelimiter(token[0]), 0
	}

	if IsTokenDelimiter(token[0]) {
		token = token[1:]
		offset = 1
	}

	if IsTokenDelimiter(token[len(token)-1]) {
		token = token[:len(token)-1]
		sentenceEnd = true
	}

	return strings.ToLower(norm.NFKC.String(token)), sentenceEnd, offset
}

// NormalizeTerm normalizes a multi word term the same way tokenized text is
// normalized, so that dictionary keys and compound tokens line up.
func NormalizeTerm(term string) string {
	var parts []string
	for _, field := range strings.Fields(term) {
		if normalized, _, _ := NormalizeString(field); normalized != "" {
			parts = append(parts, normalized)
		}
	}
	return strings.Join(parts, " ")
}
