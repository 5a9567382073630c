package evaluator

import (
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// KeywordSpec configures EvaluateKeywords.
type KeywordSpec struct {
	Keywords []string
	// Weights are keyed by lowercase keyword; missing or non-positive weights count as 1.
	Weights     map[string]float64
	MinLength   int
	Templates   *domain.FeedbackTemplates
	RotationKey int
}

// KeywordSpecFor builds a spec from a bank question.
func KeywordSpecFor(q domain.Question, rotationKey int) KeywordSpec {
	return KeywordSpec{
		Keywords:    q.Keywords,
		Weights:     q.Weights,
		MinLength:   q.MinLength,
		Templates:   q.Templates,
		RotationKey: rotationKey,
	}
}

// EvaluateKeywords scores an open answer by weighted keyword coverage on a 0-10
// scale, penalizing answers shorter than MinLength by up to 30%.
func EvaluateKeywords(answer string, spec KeywordSpec) domain.EvaluationResult {
	lower := strings.ToLower(answer)
	matched := make([]string, 0, len(spec.Keywords))
	missing := make([]string, 0, len(spec.Keywords))

	var got, total float64
	for _, kw := range spec.Keywords {
		k := strings.ToLower(kw)
		w := spec.Weights[k]
		if w <= 0 {
			w = 1
		}
		total += w
		if strings.Contains(lower, k) {
			matched = append(matched, kw)
			got += w
		} else {
			missing = append(missing, kw)
		}
	}

	var score float64
	if total > 0 {
		score = got / total * 10
	}
	if n := utf8.RuneCountInString(answer); spec.MinLength > 0 && n < spec.MinLength {
		score *= LengthPenalty(n, spec.MinLength)
	}
	// Bands are picked from the reported score.
	score = round1(score)

	feedback, ok := customFeedback(spec.Templates, score, spec.RotationKey)
	if !ok {
		feedback = PickTemplate(keywordPool(score), spec.RotationKey)
	}
	return domain.EvaluationResult{
		Score:    score,
		Matched:  matched,
		Missing:  missing,
		Feedback: feedback,
	}
}

// LengthPenalty scales linearly from 0.7 at length 0 to 1.0 at minLength.
func LengthPenalty(length, minLength int) float64 {
	if minLength <= 0 || length >= minLength {
		return 1
	}
	if length < 0 {
		length = 0
	}
	return 0.7 + float64(length)/float64(minLength)*0.3
}
