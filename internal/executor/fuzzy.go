package executor

import "strings"

// similarity scores two names on a 0-100 scale using indel distance
// (Levenshtein with substitutions counted as delete+insert), normalized over
// the combined length. 100 means identical after case folding. This matches
// the threshold semantics of the classic SequenceMatcher ratio.
func similarity(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 100
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				// substitution costs 2, so the distance is pure indel
				del := prev[j] + 1
				ins := curr[j-1] + 1
				sub := prev[j-1] + 2
				curr[j] = min3(del, ins, sub)
			}
		}
		prev, curr = curr, prev
	}

	dist := prev[lb]
	return (100*(la+lb-dist) + (la+lb)/2) / (la + lb)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// closestMatch returns the candidate most similar to name, provided it meets
// the cutoff. Used for duplicate-avoidance before channel creation.
func closestMatch(name string, candidates []string, cutoff int) (string, bool) {
	best := ""
	bestScore := -1
	for _, c := range candidates {
		if score := similarity(name, c); score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore >= cutoff {
		return best, true
	}
	return "", false
}
