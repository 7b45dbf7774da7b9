package dedup

import "scholarship-workers/internal/common/textutil"

// Field weights of the record similarity.
const (
	NameWeight     = 0.7
	ProviderWeight = 0.3
)

// Similarity scores how alike two (name, provider) pairs are, in [0,1].
// Both fields are compared under textutil.Key.
func Similarity(nameA, providerA, nameB, providerB string) float64 {
	return NameWeight*Ratio(textutil.Key(nameA), textutil.Key(nameB)) +
		ProviderWeight*Ratio(textutil.Key(providerA), textutil.Key(providerB))
}

// Ratio is the normalized Levenshtein similarity of a and b: 1 minus the edit
// distance over the longer length, counted in runes. Two empty strings are
// identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(Distance(ra, rb))/float64(longest)
}

// Distance is the Levenshtein edit distance between two rune slices.
func Distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	row := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(row[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		row, prev = prev, row
	}
	return prev[len(b)]
}
