package lib

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// disallowedNodes are elements whose text content never belongs in the
// extracted document text.
var disallowedNodes = map[string]struct{}{
	"audio":    {},
	"head":     {},
	"iframe":   {},
	"noscript": {},
	"object":   {},
	"script":   {},
	"style":    {},
	"textarea": {},
	"video":    {},
}

// nonBreakingNodes are inline elements. Closing one continues the current
// line instead of breaking it.
var nonBreakingNodes = map[string]struct{}{
	"a":      {},
	"abbr":   {},
	"b":      {},
	"big":    {},
	"code":   {},
	"del":    {},
	"em":     {},
	"i":      {},
	"ins":    {},
	"mark":   {},
	"q":      {},
	"s":      {},
	"small":  {},
	"span":   {},
	"strike": {},
	"strong": {},
	"sub":    {},
	"sup":    {},
	"u":      {},
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// HtmlToText walks sequential tokens from the x/net html tokenizer and
// collects the visible text. Lines break at non-inline end tags and at <br>.
// Text under disallowedNodes is skipped, including nested occurrences.
func HtmlToText(r io.Reader) (string, error) {
	htmlTokenizer := html.NewTokenizer(r)
	var sb strings.Builder
	var disallowedDepth int

	for {
		switch htmlTokenizer.Next() {
		case html.ErrorToken:
			if err := htmlTokenizer.Err(); err != io.EOF {
				return "", err
			}
			text := horizontalSpace.ReplaceAllString(sb.String(), " ")
			text = blankLines.ReplaceAllString(text, "\n\n")
			return strings.TrimSpace(text), nil
		case html.TextToken:
			if disallowedDepth == 0 {
				sb.Write(htmlTokenizer.Text())
			}
		case html.StartTagToken:
			tn, _ := htmlTokenizer.TagName()
			name := string(tn)
			if _, ok := disallowedNodes[name]; ok {
				disallowedDepth++
			} else if name == "br" && disallowedDepth == 0 {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			tn, _ := htmlTokenizer.TagName()
			name := string(tn)
			if _, ok := disallowedNodes[name]; ok {
				if disallowedDepth > 0 {
					disallowedDepth--
				}
			} else if _, inline := nonBreakingNodes[name]; !inline && disallowedDepth == 0 {
				sb.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			tn, _ := htmlTokenizer.TagName()
			if string(tn) == "br" && disallowedDepth == 0 {
				sb.WriteByte('\n')
			}
		}
	}
}
