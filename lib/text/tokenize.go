package text

import (
	"bytes"

	"github.com/blevesearch/segment"
)

const nonAlphaNumericChar = 0

// Token is one whitespace delimited token with its byte offset in the
// source text.
type Token struct {
	Text   string
	Offset int
}

/**
	Tokenize splits text into whitespace delimited tokens and calls onToken
	for each token found, with the token's byte offset in text.

	Punctuation stays attached to its token; NormalizeString deals with it.
	Splitting runs on the bleve word segmenter so that multi byte runes
	cannot be cut in half.
**/
func Tokenize(text string, onToken func(Token) error) error {
	segmenter := segment.NewWordSegmenterDirect([]byte(text))
	buffer := bytes.NewBuffer([]byte{})

	var position, tokenStart int

	flush := func() error {
		if buffer.Len() == 0 {
			return nil
		}
		err := onToken(Token{Text: buffer.String(), Offset: tokenStart})
		buffer.Reset()
		return err
	}

	for segmenter.Segment() {
		segmentBytes := segmenter.Bytes()

		if segmenter.Type() == nonAlphaNumericChar && isWhitespace(segmentBytes[0]) {
			if err := flush(); err != nil {
				return err
			}
		} else {
			if buffer.Len() == 0 {
				tokenStart = position
			}
			buffer.Write(segmentBytes)
		}

		position += len(segmentBytes)
	}
	if err := segmenter.Err(); err != nil {
		return err
	}

	return flush()
}

func isWhitespace(b byte) bool {
	whitespaceBoundary := byte(32)
	return b <= whitespaceBoundary
}
