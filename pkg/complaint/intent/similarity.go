package intent

import (
	"sort"
	"strings"
	"unicode"
)

// normalize lower-cases s and turns every non-alphanumeric rune into a
// space so that punctuation never glues tokens together.
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
}

func tokenSet(s string) map[string]struct{} {
	return fieldSet(normalize(s))
}

// fieldSet splits on whitespace only and keeps case.
func fieldSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func sortedJoin(set map[string]struct{}) string {
	toks := make([]string, 0, len(set))
	for tok := range set {
		toks = append(toks, tok)
	}
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// TokenSetRatio scores how similar a and b are on a 0-100 scale while
// ignoring word order and repeated words. A phrase whose words are all
// contained in the other text scores 100.
func TokenSetRatio(a, b string) float64 {
	return tokenSetRatio(tokenSet(a), tokenSet(b))
}

func tokenSetRatio(setA, setB map[string]struct{}) float64 {
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	sect := make(map[string]struct{})
	diffAB := make(map[string]struct{})
	diffBA := make(map[string]struct{})
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			sect[tok] = struct{}{}
		} else {
			diffAB[tok] = struct{}{}
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			diffBA[tok] = struct{}{}
		}
	}

	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	ab := []rune(sortedJoin(diffAB))
	ba := []rune(sortedJoin(diffBA))
	sectLen := len([]rune(sortedJoin(sect)))

	sep := 0
	if sectLen > 0 {
		sep = 1
	}
	sectABLen := sectLen + sep + len(ab)
	sectBALen := sectLen + sep + len(ba)

	// sect+ab and sect+ba share their prefix, so their indel distance is
	// the distance between the two differences.
	best := normalizedSimilarity(indelDistance(ab, ba), sectABLen+sectBALen)
	if sectLen == 0 {
		return best
	}

	// sect vs sect+ab only differs by the appended separator and diff.
	if r := normalizedSimilarity(sep+len(ab), sectLen+sectABLen); r > best {
		best = r
	}
	if r := normalizedSimilarity(sep+len(ba), sectLen+sectBALen); r > best {
		best = r
	}
	return best
}

func normalizedSimilarity(dist, lenSum int) float64 {
	if lenSum == 0 {
		return 100
	}
	return 100 - 100*float64(dist)/float64(lenSum)
}

// indelDistance is the number of insertions and deletions needed to turn
// a into b, i.e. len(a)+len(b)-2*LCS(a, b).
func indelDistance(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return len(a) + len(b)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return len(a) + len(b) - 2*prev[len(b)]
}
