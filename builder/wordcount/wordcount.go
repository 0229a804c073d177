// Package wordcount estimates prose word counts from rendered HTML.
//
// Code blocks, inline code, and math are stripped before counting so that
// source tokens and LaTeX never inflate the estimate. Segmentation follows
// UAX #29 word boundaries, which counts CJK ideographs per character and
// Latin/Cyrillic/Arabic/Hebrew text per word run.
package wordcount

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"
	"golang.org/x/text/language"

	"github.com/foliogen/folio/builder/utils"
)

const (
	// latinWordsPerMinute is the reading speed used for word-run scripts.
	latinWordsPerMinute = 200.0
	// cjkCharsPerMinute is the reading speed used when the site language is
	// a CJK language, where Count returns characters rather than words.
	cjkCharsPerMinute = 500.0
)

var (
	preBlockRe   = regexp.MustCompile(`(?is)<pre[^>]*>.*?</pre>`)
	codeSpanRe   = regexp.MustCompile(`(?is)<code[^>]*>.*?</code>`)
	scriptRe     = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	blockMathRe  = regexp.MustCompile(`(?s)\$\$.*?\$\$`)
	inlineMathRe = regexp.MustCompile(`\$[^$\n]+?\$`)
	parenMathRe  = regexp.MustCompile(`(?s)\\\(.*?\\\)`)
	brackMathRe  = regexp.MustCompile(`(?s)\\\[.*?\\\]`)
)

// Estimator computes word counts for a configured site language. The zero
// value is not usable; construct with New.
type Estimator struct {
	tag language.Tag
	cjk bool
}

// New returns an Estimator for the given BCP-47 language tag. Unparseable
// tags fall back to English.
func New(lang string) *Estimator {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	base, _ := tag.Base()
	b := base.String()
	return &Estimator{
		tag: tag,
		cjk: b == "zh" || b == "ja" || b == "ko",
	}
}

// Language returns the normalized language tag the estimator was built with.
func (e *Estimator) Language() language.Tag {
	return e.tag
}

// Count returns the number of prose words in rendered HTML content. Empty
// input yields 0. The function is deterministic and side-effect free.
func (e *Estimator) Count(htmlContent string) int {
	if htmlContent == "" {
		return 0
	}

	s := scriptRe.ReplaceAllString(htmlContent, " ")
	s = preBlockRe.ReplaceAllString(s, " ")
	s = codeSpanRe.ReplaceAllString(s, " ")
	s = stripMath(s)
	s = extractText(s)

	return countSegments(s)
}

// ReadingMinutes converts a word count into whole reading minutes, using a
// per-script reading speed. Zero words yields zero minutes.
func (e *Estimator) ReadingMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	speed := latinWordsPerMinute
	if e.cjk {
		speed = cjkCharsPerMinute
	}
	return int(math.Ceil(float64(words) / speed))
}

// stripMath removes $$...$$, $...$, \(...\) and \[...\] spans. Inline
// dollar spans that start with a digit are kept, since they are almost
// always prices rather than math.
func stripMath(s string) string {
	s = blockMathRe.ReplaceAllString(s, " ")
	s = brackMathRe.ReplaceAllString(s, " ")
	s = parenMathRe.ReplaceAllString(s, " ")
	s = inlineMathRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := strings.TrimPrefix(m, "$")
		if len(inner) > 0 && inner[0] >= '0' && inner[0] <= '9' {
			return m
		}
		return " "
	})
	return s
}

// extractText strips the remaining markup, keeping only text content. Text
// nodes are joined with spaces so that adjacent block elements do not fuse
// words together.
func extractText(s string) string {
	out := utils.SharedStringBuilderPool.Get()
	defer utils.SharedStringBuilderPool.Put(out)
	out.Grow(len(s))

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out.String()
		case html.TextToken:
			out.Write(z.Text())
			out.WriteByte(' ')
		}
	}
}

// countSegments walks UAX #29 word boundaries and counts every segment that
// contains at least one letter, mark, or number rune.
func countSegments(s string) int {
	count := 0
	state := -1
	var seg string
	for len(s) > 0 {
		seg, s, state = uniseg.FirstWordInString(s, state)
		if isWordLike(seg) {
			count++
		}
	}
	return count
}

func isWordLike(seg string) bool {
	for _, r := range seg {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
			return true
		}
	}
	return false
}
