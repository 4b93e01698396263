package similarity

// Levenshtein returns the edit distance between a and b counted in runes.
func Levenshtein(a, b string) int {
	s, t := []rune(a), []rune(b)
	if len(s) == 0 {
		return len(t)
	}
	if len(t) == 0 {
		return len(s)
	}

	prev := make([]int, len(t)+1)
	cur := make([]int, len(t)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s); i++ {
		cur[0] = i
		for j := 1; j <= len(t); j++ {
			cost := 1
			if s[i-1] == t[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(t)]
}

// EditSimilarity is 1 - levenshtein(a, b) / max(len(a), len(b)).
func EditSimilarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

// Jaro computes the Jaro similarity: characters match when equal and within
// max(len)/2 - 1 positions of each other; half the out-of-order matches
// count as transpositions.
func Jaro(a, b string) float64 {
	s, t := []rune(a), []rune(b)
	if len(s) == 0 && len(t) == 0 {
		return 1
	}
	if len(s) == 0 || len(t) == 0 {
		return 0
	}

	window := max(len(s), len(t))/2 - 1
	if window < 0 {
		window = 0
	}

	sMatched := make([]bool, len(s))
	tMatched := make([]bool, len(t))
	matches := 0
	for i := range s {
		lo := max(0, i-window)
		hi := min(len(t), i+window+1)
		for j := lo; j < hi; j++ {
			if tMatched[j] || s[i] != t[j] {
				continue
			}
			sMatched[i], tMatched[j] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	outOfOrder := 0
	k := 0
	for i := range s {
		if !sMatched[i] {
			continue
		}
		for !tMatched[k] {
			k++
		}
		if s[i] != t[k] {
			outOfOrder++
		}
		k++
	}

	m := float64(matches)
	transpositions := float64(outOfOrder) / 2
	return (m/float64(len(s)) + m/float64(len(t)) + (m-transpositions)/m) / 3
}

// JaroWinkler boosts Jaro by 0.1 per shared leading rune, up to 4 runes.
func JaroWinkler(a, b string) float64 {
	j := Jaro(a, b)
	s, t := []rune(a), []rune(b)
	prefix := 0
	for i := 0; i < min(len(s), len(t), 4); i++ {
		if s[i] != t[i] {
			break
		}
		prefix++
	}
	return j + float64(prefix)*0.1*(1-j)
}
