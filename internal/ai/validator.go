package ai

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// factualKeywords gates which sentences are treated as claims worth
// verifying, ported verbatim from the original's keyword list.
var factualKeywords = []string{
	"total", "number", "percent", "budget", "deadline", "resource",
	"cost", "spending", "allocation", "utilization", "performance",
	"project", "risk", "issue", "milestone", "completion",
}

var numberPattern = regexp.MustCompile(`\$?[\d,]+(?:\.\d+)?`)

// ValidationResult is the output of ValidateResponse (spec §4.6).
type ValidationResult struct {
	IsValid        bool
	Confidence     float64
	Issues         []string
	SourceCoverage float64
}

// ValidateResponse extracts claims from response, cross-references each
// against sources for word overlap and numeric consistency, and reports
// is_valid = false when the resulting confidence falls under 0.6.
func ValidateResponse(response string, sources []store.EmbeddingMatch, baseConfidence float64) ValidationResult {
	claims := extractClaims(response)
	if len(claims) == 0 {
		return ValidationResult{IsValid: true, Confidence: baseConfidence, SourceCoverage: 1}
	}

	var issues []string
	verified := 0
	for _, claim := range claims {
		if detectContradiction(claim, sources) {
			issues = append(issues, "contradiction: "+claim)
			continue
		}
		if verifyClaimAgainstSources(claim, sources) {
			verified++
		}
	}

	coverage := float64(verified) / float64(len(claims))
	confidence := baseConfidence * coverage
	if len(issues) > 0 {
		confidence *= 0.5
	}

	return ValidationResult{
		IsValid:        confidence >= 0.6,
		Confidence:     confidence,
		Issues:         issues,
		SourceCoverage: coverage,
	}
}

func extractClaims(response string) []string {
	sentences := strings.Split(response, ".")
	var claims []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		for _, kw := range factualKeywords {
			if strings.Contains(lower, kw) {
				claims = append(claims, s)
				break
			}
		}
	}
	return claims
}

// detectContradiction flags a claim whose numeric value differs from any
// topically-overlapping source number by >= 30%.
func detectContradiction(claim string, sources []store.EmbeddingMatch) bool {
	claimNumbers := extractNumbers(claim)
	claimWords := contentWords(claim)

	for _, source := range sources {
		sourceText := strings.ToLower(source.ContentText)
		sourceWords := contentWords(sourceText)
		if overlapCount(claimWords, sourceWords) <= 1 {
			continue
		}
		sourceNumbers := extractNumbers(sourceText)
		if numericContradiction(claimNumbers, sourceNumbers) {
			return true
		}
	}
	return false
}

// verifyClaimAgainstSources reports whether a claim has at least some
// word overlap with a source and no numeric contradiction with it.
func verifyClaimAgainstSources(claim string, sources []store.EmbeddingMatch) bool {
	if len(sources) == 0 {
		return false
	}
	claimNumbers := extractNumbers(claim)
	claimWords := contentWords(claim)

	for _, source := range sources {
		sourceText := strings.ToLower(source.ContentText)
		sourceWords := contentWords(sourceText)
		overlap := overlapCount(claimWords, sourceWords)
		if overlap == 0 {
			continue
		}
		sourceNumbers := extractNumbers(sourceText)
		if numericContradiction(claimNumbers, sourceNumbers) {
			return false
		}
		return true
	}
	return false
}

func numericContradiction(claimNumbers, sourceNumbers []float64) bool {
	if len(claimNumbers) == 0 || len(sourceNumbers) == 0 {
		return false
	}
	for _, c := range claimNumbers {
		for _, s := range sourceNumbers {
			if c <= 0 || s <= 0 {
				continue
			}
			max := c
			if s > max {
				max = s
			}
			diffRatio := absFloat(c-s) / max
			if diffRatio >= 0.30 {
				return true
			}
		}
	}
	return false
}

func contentWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 3 {
			words[w] = struct{}{}
		}
	}
	return words
}

func overlapCount(a, b map[string]struct{}) int {
	count := 0
	for w := range a {
		if _, ok := b[w]; ok {
			count++
		}
	}
	return count
}

func extractNumbers(text string) []float64 {
	matches := numberPattern.FindAllString(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		cleaned := strings.NewReplacer("$", "", ",", "").Replace(m)
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
