// Package search provides an in-memory full-text index over posts for the
// CLI search command. Scoring is BM25 with fuzzy fallback, quoted phrases,
// and tag filters.
package search

import (
	"math"
	"sort"
	"strings"
)

// BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Score boosts for match types beyond plain term frequency.
const (
	scorePhrase   = 15.0
	scoreTitle    = 10.0
	scoreTag      = 5.0
	fuzzyModifier = 0.7
)

// DefaultLimit caps result lists when the caller passes no limit.
const DefaultLimit = 10

// Document is one searchable post.
type Document struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	Body        string
}

// Result is a scored match.
type Result struct {
	ID          string
	Title       string
	Description string
	Snippet     string
	Score       float64
}

// Index is an inverted index over post documents. Build once, query many
// times; the index is read-only after NewIndex.
type Index struct {
	docs      []Document
	inverted  map[string]map[int]int // term -> doc ordinal -> frequency
	ngrams    map[string][]string    // trigram -> index terms, for fuzzy lookup
	docLens   []int
	avgDocLen float64

	normTitles []string
	normTags   [][]string
}

// NewIndex analyzes the documents and builds the inverted index.
func NewIndex(docs []Document) *Index {
	ix := &Index{
		docs:       docs,
		inverted:   make(map[string]map[int]int),
		docLens:    make([]int, len(docs)),
		normTitles: make([]string, len(docs)),
		normTags:   make([][]string, len(docs)),
	}

	total := 0
	for i, doc := range docs {
		terms := DefaultAnalyzer.Analyze(doc.Title + " " + doc.Description + " " + doc.Body)
		ix.docLens[i] = len(terms)
		total += len(terms)

		for _, term := range terms {
			freqs := ix.inverted[term]
			if freqs == nil {
				freqs = make(map[int]int)
				ix.inverted[term] = freqs
			}
			freqs[i]++
		}

		ix.normTitles[i] = strings.ToLower(doc.Title)
		tags := make([]string, len(doc.Tags))
		for j, tag := range doc.Tags {
			tags[j] = strings.ToLower(tag)
		}
		ix.normTags[i] = tags
	}
	if len(docs) > 0 {
		ix.avgDocLen = float64(total) / float64(len(docs))
	}
	ix.ngrams = buildTrigramIndex(ix.inverted)
	return ix
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Search scores documents against the query. Terms a document never
// contains are expanded to nearby index terms within edit distance 2, at a
// reduced score. A leading "tag:name" restricts matches to that tag; a bare
// tag query lists everything carrying the tag.
func (ix *Index) Search(query string, limit int) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	tagFilter := ""
	if strings.HasPrefix(query, "tag:") {
		parts := strings.SplitN(query, " ", 2)
		tagFilter = strings.TrimPrefix(parts[0], "tag:")
		if len(parts) > 1 {
			query = parts[1]
		} else {
			query = ""
		}
	}

	parsed := ParseQuery(query)
	scores := make(map[int]float64)

	for _, term := range parsed.Terms {
		if freqs, ok := ix.inverted[term]; ok {
			ix.scoreTerm(scores, freqs, tagFilter, 1)
			continue
		}
		for _, cand := range ix.fuzzyExpand(term) {
			ix.scoreTerm(scores, ix.inverted[cand], tagFilter, fuzzyModifier)
		}
	}

	for _, phrase := range parsed.Phrases {
		for i := range ix.docs {
			if !ix.tagMatch(i, tagFilter) {
				continue
			}
			if strings.Contains(ix.normTitles[i], phrase) {
				scores[i] += scorePhrase * 2
				continue
			}
			if strings.Contains(strings.ToLower(ix.docs[i].Body), phrase) {
				scores[i] += scorePhrase
			}
		}
	}

	if len(parsed.Terms) == 0 && len(parsed.Phrases) == 0 && tagFilter != "" {
		for i := range ix.docs {
			if ix.tagMatch(i, tagFilter) {
				scores[i] = 1.0
			}
		}
	}

	// Boost whole-query title and exact tag hits.
	for i := range scores {
		if query != "" && strings.Contains(ix.normTitles[i], query) {
			scores[i] += scoreTitle
		}
		for _, tag := range ix.normTags[i] {
			if tag == query || (tagFilter != "" && tag == tagFilter) {
				scores[i] += scoreTag
			}
		}
	}

	results := make([]Result, 0, len(scores))
	for i, score := range scores {
		doc := ix.docs[i]
		results = append(results, Result{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			Snippet:     extractSnippet(doc.Body, parsed.Terms),
			Score:       score,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (ix *Index) scoreTerm(scores map[int]float64, freqs map[int]int, tagFilter string, modifier float64) {
	df := len(freqs)
	if df == 0 {
		return
	}
	idf := math.Log(1 + (float64(len(ix.docs))-float64(df)+0.5)/(float64(df)+0.5))

	for i, freq := range freqs {
		if !ix.tagMatch(i, tagFilter) {
			continue
		}
		docLen := float64(ix.docLens[i])
		score := idf * (float64(freq) * (bm25K1 + 1)) / (float64(freq) + bm25K1*(1-bm25B+bm25B*(docLen/ix.avgDocLen)))
		scores[i] += score * modifier
	}
}

func (ix *Index) tagMatch(i int, tagFilter string) bool {
	if tagFilter == "" {
		return true
	}
	for _, t := range ix.normTags[i] {
		if t == tagFilter {
			return true
		}
	}
	return false
}

// Snippet extraction bounds.
const (
	maxSnippetScan  = 10000
	snippetLength   = 150
	snippetLeading  = 60
	snippetTrailing = 90
)

// extractSnippet pulls the body region around the first matched term. Terms
// are stemmed, so matching is substring-based; the stem is a prefix of the
// original word often enough for snippets.
func extractSnippet(body string, terms []string) string {
	if len(body) > maxSnippetScan {
		body = body[:maxSnippetScan]
	}
	if len(terms) == 0 {
		return truncate(body, snippetLength)
	}

	lower := strings.ToLower(body)
	first := -1
	for _, term := range terms {
		if pos := strings.Index(lower, term); pos != -1 && (first == -1 || pos < first) {
			first = pos
		}
	}
	if first == -1 {
		return truncate(body, snippetLength)
	}

	start := first - snippetLeading
	if start < 0 {
		start = 0
	}
	end := first + snippetTrailing
	if end > len(body) {
		end = len(body)
	}

	var b strings.Builder
	b.Grow(end - start + 6)
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(body[start:end])
	if end < len(body) {
		b.WriteString("...")
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
