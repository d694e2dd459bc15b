package optimize

import (
	"strings"
	"unicode"
)

const (
	// fullDetailTokenLimit splits the heuristic into its full-detailed and
	// compressed regimes.
	fullDetailTokenLimit = 1000

	// fastSkimWordLimit is the response size above which only head, middle
	// and tail excerpts are scored.
	fastSkimWordLimit = 1500

	floorFullDetail = 0.2
	floorCompressed = 0.15
)

var (
	specificityMarkers = []string{"specific", "exact", "precise", "must", "required", "criteria"}
	contextMarkers     = []string{"context", "background", "given", "assume", "audience"}
	structureMarkers   = []string{"section", "step", "format", "list", "structure", "organize"}

	transitionWords = []string{"first", "then", "next", "finally", "however", "therefore", "additionally"}

	sectionProbes = [][]string{
		{"introduction", "overview", "context"},
		{"methodology", "approach", "method", "step"},
		{"requirement", "must", "need"},
		{"format", "output", "structure"},
		{"conclusion", "summary", "finally"},
	}
)

func approxTokens(s string) int {
	return len(s) / 4
}

// EvaluatePrompt scores a generated prompt with the text-shape heuristic.
// Short texts get the full detailed scoring, long texts the compressed one.
func EvaluatePrompt(text string, weight float64) float64 {
	if approxTokens(text) >= fullDetailTokenLimit {
		return scoreCompressed(text)
	}
	return scoreFullDetail(text, weight)
}

// EvaluateResponse scores a live model response with the same machinery,
// skimming head, middle and tail excerpts above fastSkimWordLimit words.
func EvaluateResponse(resp string, weight float64) float64 {
	words := strings.Fields(resp)
	if len(words) > fastSkimWordLimit {
		resp = skim(words)
	}
	return EvaluatePrompt(resp, weight)
}

// scoreFullDetail starts from a 0.7 base, adds up to 0.25 across accuracy,
// completeness and clarity plus up to 0.08 from the strategy weight, then
// applies penalties. The result stays within [0.2, 1.0].
func scoreFullDetail(text string, weight float64) float64 {
	if isBlank(text) || isGibberish(text) {
		return floorFullDetail
	}

	score := 0.7
	score += 0.10 * accuracy(text)
	score += 0.08 * completeness(text)
	score += 0.07 * clarity(text)
	score += 0.08 * weight
	score -= penalties(text)

	return clamp(score, floorFullDetail, 1.0)
}

// scoreCompressed scores long texts on structural section coverage and
// sentence-length clarity only. The result stays within [0.15, 1.0].
func scoreCompressed(text string) float64 {
	if isBlank(text) || isGibberish(text) {
		return floorCompressed
	}

	score := 0.7
	lower := strings.ToLower(text)
	for _, probe := range sectionProbes {
		if containsAny(lower, probe) {
			score += 0.04
		}
	}
	score += 0.10 * sentenceClarity(text)
	score -= penalties(text)

	return clamp(score, floorCompressed, 1.0)
}

func accuracy(text string) float64 {
	lower := strings.ToLower(text)
	var hits float64
	if containsAny(lower, specificityMarkers) {
		hits++
	}
	if containsAny(lower, contextMarkers) {
		hits++
	}
	if containsAny(lower, structureMarkers) {
		hits++
	}
	return hits / 3
}

func completeness(text string) float64 {
	var c float64
	if len(text) >= 120 {
		c += 0.4
	}
	if len(text) >= 400 {
		c += 0.3
	}
	lower := strings.ToLower(text)
	if containsAny(lower, structureMarkers) || strings.Contains(text, "\n") {
		c += 0.3
	}
	return c
}

func clarity(text string) float64 {
	c := 0.6 * sentenceClarity(text)
	if containsAny(strings.ToLower(text), transitionWords) {
		c += 0.4
	}
	return c
}

// sentenceClarity rewards an average sentence length in a readable band.
func sentenceClarity(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0
	}

	var words int
	for _, s := range sentences {
		words += len(strings.Fields(s))
	}
	avg := float64(words) / float64(len(sentences))

	if avg >= 8 && avg <= 24 {
		return 1
	}
	if avg >= 5 && avg <= 32 {
		return 0.5
	}
	return 0
}

func penalties(text string) float64 {
	var p float64
	if len(text) < 40 {
		p += 0.15
	}
	if hasTruncationMarker(text) {
		p += 0.1
	}
	if repetitionRatio(text) > 0.3 {
		p += 0.1
	}
	return p
}

func hasTruncationMarker(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "...") || strings.HasSuffix(trimmed, "…") {
		return true
	}
	return strings.Contains(strings.ToLower(trimmed), "to be continued")
}

// repetitionRatio is the share of sentences that are duplicates of an
// earlier sentence.
func repetitionRatio(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) < 2 {
		return 0
	}

	seen := map[string]struct{}{}
	var dupes int
	for _, s := range sentences {
		key := normalizeText(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			dupes++
			continue
		}
		seen[key] = struct{}{}
	}
	return float64(dupes) / float64(len(sentences))
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// isGibberish flags text that is mostly non-letter noise or a tiny vocabulary
// repeated over and over.
func isGibberish(text string) bool {
	var letters, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letters++
		}
	}
	if total > 0 && float64(letters)/float64(total) < 0.5 {
		return true
	}

	// The tiny-vocabulary check only makes sense for short texts; long
	// repetitive documents are handled by the repetition penalty instead.
	words := strings.Fields(strings.ToLower(text))
	if len(words) >= 6 && len(words) <= 400 {
		unique := map[string]struct{}{}
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < 0.34 {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func skim(words []string) string {
	head := strings.Join(words[:400], " ")
	mid := len(words) / 2
	middle := strings.Join(words[mid:mid+200], " ")
	tail := strings.Join(words[len(words)-200:], " ")
	return head + " " + middle + " " + tail
}

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
