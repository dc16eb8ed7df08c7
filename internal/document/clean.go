package document

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	pageNumberLine = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
	pageLabel      = regexp.MustCompile(`(?i)\bpage\s*\d+(\s*of\s*\d+)?`)
	trailingRefs   = regexp.MustCompile(`(?is)\n[ \t]*(references|bibliography|works cited)[ \t]*\n.*$`)
	hyphenBreak    = regexp.MustCompile(`(\p{L})-[ \t]*\n[ \t]*(\p{Ll})`)
	softBreak      = regexp.MustCompile(`\n[ \t]*(\p{Ll})`)
	bullets        = regexp.MustCompile(`[•▪●◦]`)
	blankRuns      = regexp.MustCompile(`\n{2,}`)
	spaceRuns      = regexp.MustCompile(`[ \t]{2,}`)

	punctuation = strings.NewReplacer(
		"–", "-", "—", "-",
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
)

// repeatedLineMin is how often a line must recur to count as a running
// header or footer.
const repeatedLineMin = 3

// Clean tidies extracted text: NFKC normalization, running header and
// footer removal, page numbers, a trailing references section, hyphenated
// and soft line breaks, bullets, typographic punctuation and whitespace.
func Clean(text string) string {
	text = norm.NFKC.String(strings.ReplaceAll(text, "\r\n", "\n"))
	text = dropRepeatedLines(text)
	text = trailingRefs.ReplaceAllString(text, "\n")
	text = pageNumberLine.ReplaceAllString(text, "")
	text = pageLabel.ReplaceAllString(text, "")
	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = softBreak.ReplaceAllString(text, " $1")
	text = bullets.ReplaceAllString(text, "")
	text = punctuation.Replace(text)

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(l, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// dropRepeatedLines removes lines of four or more characters that occur at
// least repeatedLineMin times.
func dropRepeatedLines(text string) string {
	lines := strings.Split(text, "\n")
	freq := make(map[string]int)
	for _, l := range lines {
		if t := strings.TrimSpace(l); len(t) >= 4 {
			freq[t]++
		}
	}
	kept := lines[:0]
	for _, l := range lines {
		if freq[strings.TrimSpace(l)] >= repeatedLineMin {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}
