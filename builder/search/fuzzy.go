package search

import "strings"

// maxEditDistance bounds fuzzy term expansion.
const maxEditDistance = 2

// LevenshteinDistance returns the edit distance between two strings,
// tracking only the previous row of the distance matrix.
func LevenshteinDistance(a, b string) int {
	aRunes := []rune(a)
	bRunes := []rune(b)

	if len(aRunes) == 0 {
		return len(bRunes)
	}
	if len(bRunes) == 0 {
		return len(aRunes)
	}

	prev := make([]int, len(bRunes)+1)
	curr := make([]int, len(bRunes)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(aRunes); i++ {
		curr[0] = i
		for j := 1; j <= len(bRunes); j++ {
			cost := 1
			if aRunes[i-1] == bRunes[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(bRunes)]
}

// FuzzyMatch reports whether two strings are within maxDist edits.
func FuzzyMatch(term, target string, maxDist int) bool {
	diff := len(term) - len(target)
	if diff < 0 {
		diff = -diff
	}
	// Length difference alone already exceeds the budget.
	if diff > maxDist {
		return false
	}
	return LevenshteinDistance(term, target) <= maxDist
}

// fuzzyExpand finds index terms within edit distance of the query term. The
// trigram index narrows candidates so the whole vocabulary is not scanned.
func (ix *Index) fuzzyExpand(term string) []string {
	trigrams := trigramsOf(term)
	shared := make(map[string]int)
	for _, tg := range trigrams {
		for _, cand := range ix.ngrams[tg] {
			shared[cand]++
		}
	}

	var out []string
	minShared := len(trigrams) / 2
	for cand, n := range shared {
		if n >= minShared && FuzzyMatch(term, cand, maxEditDistance) {
			out = append(out, cand)
		}
	}
	return out
}

// trigramsOf returns the 3-rune windows of a word; words shorter than three
// runes index under themselves.
func trigramsOf(word string) []string {
	runes := []rune(word)
	if len(runes) < 3 {
		return []string{word}
	}
	out := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}

func buildTrigramIndex(inverted map[string]map[int]int) map[string][]string {
	ngrams := make(map[string][]string)
	for term := range inverted {
		for _, tg := range trigramsOf(term) {
			ngrams[tg] = append(ngrams[tg], term)
		}
	}
	return ngrams
}

// ParsedQuery is a query split into analyzed terms and quoted phrases.
type ParsedQuery struct {
	Terms   []string
	Phrases []string
	Raw     string
}

// ParseQuery extracts quoted phrases, then analyzes the remainder into
// terms. Phrases are matched verbatim (lowercased), terms are stemmed.
func ParseQuery(query string) ParsedQuery {
	result := ParsedQuery{Raw: query}

	var phraseBuf strings.Builder
	inPhrase := false
	for _, r := range query {
		if r == '"' {
			if inPhrase {
				if phrase := strings.TrimSpace(phraseBuf.String()); phrase != "" {
					result.Phrases = append(result.Phrases, strings.ToLower(phrase))
				}
				phraseBuf.Reset()
			}
			inPhrase = !inPhrase
		} else if inPhrase {
			phraseBuf.WriteRune(r)
		}
	}

	cleaned := query
	for _, phrase := range result.Phrases {
		cleaned = strings.ReplaceAll(cleaned, `"`+phrase+`"`, " ")
	}
	result.Terms = DefaultAnalyzer.Analyze(cleaned)

	return result
}
