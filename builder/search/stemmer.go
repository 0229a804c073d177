package search

import "sync"

// Porter stemmer for English index terms.
// https://tartarus.org/martin/PorterStemmer/

var stemCache sync.Map // word -> stem

// StemCached memoizes Stem. The indexer and queries hit the same small
// vocabulary over and over.
func StemCached(word string) string {
	if v, ok := stemCache.Load(word); ok {
		return v.(string)
	}
	s := Stem(word)
	stemCache.Store(word, s)
	return s
}

// Stem reduces a lowercase word to its Porter stem.
func Stem(word string) string {
	if len(word) <= 2 {
		return word
	}

	runes := []rune(word)
	runes = step1a(runes)
	runes = step1b(runes)
	runes = step1c(runes)
	runes = step2(runes)
	runes = step3(runes)
	runes = step4(runes)
	runes = step5a(runes)
	runes = step5b(runes)
	return string(runes)
}

// measure counts the VC sequences of the word, the m of the Porter paper.
func measure(runes []rune) int {
	m := 0
	i := 0
	n := len(runes)

	for i < n && !isVowel(runes, i) {
		i++
	}

	for i < n {
		for i < n && isVowel(runes, i) {
			i++
		}
		if i >= n {
			break
		}
		for i < n && !isVowel(runes, i) {
			i++
		}
		m++
	}

	return m
}

// isVowel treats y as a vowel when it follows a consonant.
func isVowel(runes []rune, i int) bool {
	if i >= len(runes) {
		return false
	}

	c := runes[i]
	if c == 'a' || c == 'e' || c == 'i' || c == 'o' || c == 'u' {
		return true
	}
	if c == 'y' && i > 0 && !isVowel(runes, i-1) {
		return true
	}
	return false
}

func hasVowel(runes []rune) bool {
	for i := range runes {
		if isVowel(runes, i) {
			return true
		}
	}
	return false
}

func endsWithDoubleConsonant(runes []rune) bool {
	n := len(runes)
	if n < 2 {
		return false
	}
	if runes[n-1] != runes[n-2] {
		return false
	}
	return !isVowel(runes, n-1)
}

// endsWithCVC reports a consonant-vowel-consonant tail where the final
// consonant is not w, x, or y.
func endsWithCVC(runes []rune) bool {
	n := len(runes)
	if n < 3 {
		return false
	}

	if isVowel(runes, n-1) || !isVowel(runes, n-2) || isVowel(runes, n-3) {
		return false
	}

	c := runes[n-1]
	return c != 'w' && c != 'x' && c != 'y'
}

// step1a strips plurals: sses and ies both lose their trailing es.
func step1a(runes []rune) []rune {
	n := len(runes)
	if n >= 4 && string(runes[n-4:]) == "sses" {
		return runes[:n-2]
	}
	if n >= 3 && string(runes[n-3:]) == "ies" {
		return runes[:n-2]
	}
	if n >= 2 && string(runes[n-2:]) == "ss" {
		return runes
	}
	if n >= 1 && runes[n-1] == 's' {
		return runes[:n-1]
	}
	return runes
}

// step1b strips -eed, -ed, -ing.
func step1b(runes []rune) []rune {
	n := len(runes)

	if n >= 4 && string(runes[n-3:]) == "eed" {
		stem := runes[:n-1]
		if measure(runes[:n-3]) > 0 {
			return stem
		}
		return runes
	}

	if n >= 3 && string(runes[n-2:]) == "ed" {
		stem := runes[:n-2]
		if hasVowel(stem) {
			return step1bCleanup(stem)
		}
		return runes
	}

	if n >= 4 && string(runes[n-3:]) == "ing" {
		stem := runes[:n-3]
		if hasVowel(stem) {
			return step1bCleanup(stem)
		}
		return runes
	}

	return runes
}

// step1bCleanup repairs stems left by -ed/-ing removal.
func step1bCleanup(runes []rune) []rune {
	n := len(runes)

	if n >= 2 {
		suffix := string(runes[n-2:])
		if suffix == "at" || suffix == "bl" || suffix == "iz" {
			return append(runes, 'e')
		}
	}

	if endsWithDoubleConsonant(runes) && !(runes[n-1] == 'l' || runes[n-1] == 's' || runes[n-1] == 'z') {
		return runes[:n-1]
	}

	if measure(runes) == 1 && endsWithCVC(runes) {
		return append(runes, 'e')
	}

	return runes
}

// step1c turns a trailing y into i when the stem has a vowel.
func step1c(runes []rune) []rune {
	n := len(runes)
	if n >= 1 && runes[n-1] == 'y' {
		stem := runes[:n-1]
		if hasVowel(stem) {
			return append(stem, 'i')
		}
	}
	return runes
}

// step2 maps double suffixes to single ones.
func step2(runes []rune) []rune {
	n := len(runes)

	suffixes := []struct {
		suffix      string
		replacement string
	}{
		{"ational", "ate"}, {"tional", "tion"}, {"enci", "ence"}, {"anci", "ance"},
		{"izer", "ize"}, {"abli", "able"}, {"alli", "al"}, {"entli", "ent"},
		{"eli", "e"}, {"ousli", "ous"}, {"ization", "ize"}, {"ation", "ate"},
		{"ator", "ate"}, {"alism", "al"}, {"iveness", "ive"}, {"fulness", "ful"},
		{"ousness", "ous"}, {"aliti", "al"}, {"iviti", "ive"}, {"biliti", "ble"},
	}

	for _, s := range suffixes {
		if n >= len(s.suffix) && string(runes[n-len(s.suffix):]) == s.suffix {
			stem := runes[:n-len(s.suffix)]
			if measure(stem) > 0 {
				return append(stem, []rune(s.replacement)...)
			}
			return runes
		}
	}

	return runes
}

// step3 strips -icate, -ative, -ful and friends.
func step3(runes []rune) []rune {
	n := len(runes)

	suffixes := []struct {
		suffix      string
		replacement string
	}{
		{"icate", "ic"}, {"ative", ""}, {"alize", "al"}, {"iciti", "ic"},
		{"ical", "ic"}, {"ful", ""}, {"ness", ""},
	}

	for _, s := range suffixes {
		if n >= len(s.suffix) && string(runes[n-len(s.suffix):]) == s.suffix {
			stem := runes[:n-len(s.suffix)]
			if measure(stem) > 0 {
				return append(stem, []rune(s.replacement)...)
			}
			return runes
		}
	}

	return runes
}

// step4 strips the remaining latinate suffixes on long stems.
func step4(runes []rune) []rune {
	n := len(runes)

	suffixes := []string{
		"al", "ance", "ence", "er", "ic", "able", "ible", "ant", "ement",
		"ment", "ent", "ion", "ou", "ism", "ate", "iti", "ous", "ive", "ize",
	}

	for _, suffix := range suffixes {
		slen := len(suffix)
		if n >= slen && string(runes[n-slen:]) == suffix {
			stem := runes[:n-slen]
			m := measure(stem)

			// -ion only drops after s or t.
			if suffix == "ion" {
				if len(stem) > 0 && (stem[len(stem)-1] == 's' || stem[len(stem)-1] == 't') && m > 1 {
					return stem
				}
			} else if m > 1 {
				return stem
			}
			return runes
		}
	}

	return runes
}

// step5a drops a final e.
func step5a(runes []rune) []rune {
	n := len(runes)
	if n >= 1 && runes[n-1] == 'e' {
		stem := runes[:n-1]
		m := measure(stem)

		if m > 1 {
			return stem
		}
		if m == 1 && !endsWithCVC(stem) {
			return stem
		}
	}
	return runes
}

// step5b collapses a final double l.
func step5b(runes []rune) []rune {
	n := len(runes)
	if n >= 2 && runes[n-1] == 'l' && runes[n-2] == 'l' && measure(runes) > 1 {
		return runes[:n-1]
	}
	return runes
}
