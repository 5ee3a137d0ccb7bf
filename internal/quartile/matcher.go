package quartile

import "strings"

// Threshold is the minimum similarity ratio for a fuzzy match.
const Threshold = 0.8

// Match is the outcome of looking up one journal name. An empty Matched
// means no ranking cleared the threshold.
type Match struct {
	Journal  string
	Matched  string // normalized ranking title
	Quartile string
	Score    float64
	Exact    bool
}

// Normalize lowercases a journal name and collapses runs of whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// MatchAll resolves each journal name to its best ranking, exact matches
// first, then the highest-ratio fuzzy match at or above Threshold. Every
// input gets a Match so unmatched journals can be recorded too.
func MatchAll(journals []string, rankings []Ranking) []Match {
	byNorm := make(map[string]*Ranking, len(rankings))
	for i := range rankings {
		r := &rankings[i]
		if _, ok := byNorm[r.Norm]; !ok {
			byNorm[r.Norm] = r
		}
	}

	matches := make([]Match, 0, len(journals))
	for _, journal := range journals {
		m := Match{Journal: journal}
		norm := Normalize(journal)
		if norm == "" {
			matches = append(matches, m)
			continue
		}

		if r, ok := byNorm[norm]; ok {
			m.Matched = r.Norm
			m.Quartile = r.Quartile
			m.Score = 1.0
			m.Exact = true
		} else if r, score := bestMatch(norm, rankings); r != nil {
			m.Matched = r.Norm
			m.Quartile = r.Quartile
			m.Score = score
		}
		matches = append(matches, m)
	}
	return matches
}

// Ratio is the similarity of two strings: twice the length of their longest
// common subsequence over their combined length, in runes. Two empty strings
// are identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2 * float64(lcsLength(ra, rb)) / float64(total)
}

// bestMatch scans all rankings for the highest ratio at or above Threshold.
// Cheap upper bounds on the ratio rule most candidates out before the full
// subsequence computation. Ties go to the candidate sharing the longest
// prefix with the query, then to the lexicographically smaller title.
func bestMatch(norm string, rankings []Ranking) (*Ranking, float64) {
	query := []rune(norm)
	qFreq := runeCounts(query)

	var best *Ranking
	var bestScore float64
	for i := range rankings {
		r := &rankings[i]
		cand := []rune(r.Norm)
		total := float64(len(query) + len(cand))
		if total == 0 {
			continue
		}

		// Shorter string bounds the subsequence length.
		shorter := len(query)
		if len(cand) < shorter {
			shorter = len(cand)
		}
		if bound := 2 * float64(shorter) / total; bound < Threshold || bound < bestScore {
			continue
		}

		// Shared rune counts bound it tighter.
		if bound := 2 * float64(sharedRunes(qFreq, cand)) / total; bound < Threshold || bound < bestScore {
			continue
		}

		score := 2 * float64(lcsLength(query, cand)) / total
		if score < Threshold || score < bestScore {
			continue
		}
		if best == nil || score > bestScore {
			best, bestScore = r, score
			continue
		}
		if prefersOnTie(query, r, best) {
			best = r
		}
	}
	return best, bestScore
}

func prefersOnTie(query []rune, challenger, current *Ranking) bool {
	cp := prefixLen(query, []rune(challenger.Norm))
	pp := prefixLen(query, []rune(current.Norm))
	if cp != pp {
		return cp > pp
	}
	return challenger.Norm < current.Norm
}

func prefixLen(a, b []rune) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func runeCounts(rs []rune) map[rune]int {
	counts := make(map[rune]int, len(rs))
	for _, r := range rs {
		counts[r]++
	}
	return counts
}

func sharedRunes(freq map[rune]int, b []rune) int {
	var shared int
	for r, c := range runeCounts(b) {
		if q := freq[r]; q < c {
			shared += q
		} else {
			shared += c
		}
	}
	return shared
}

func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
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
	return prev[len(b)]
}
