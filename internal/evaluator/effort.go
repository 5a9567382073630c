package evaluator

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// DefaultTargetLength is used when an HR question has no MinLength.
const DefaultTargetLength = 150

// ReasoningMarkers signal structured, reflective answers.
var ReasoningMarkers = []string{
	"because", "why", "reason", "learned", "result", "action", "situation", "example", "instance",
}

var refusals = map[string]struct{}{
	"i don't know": {},
	"idk":          {},
}

// EffortSpec configures EvaluateEffort.
type EffortSpec struct {
	TalkingPoints []string
	TargetLength  int
	Templates     *domain.FeedbackTemplates
	RotationKey   int
}

// EffortSpecFor builds a spec from an HR bank question.
func EffortSpecFor(q domain.Question, rotationKey int) EffortSpec {
	return EffortSpec{
		TalkingPoints: q.Keywords,
		TargetLength:  q.MinLength,
		Templates:     q.Templates,
		RotationKey:   rotationKey,
	}
}

// EvaluateEffort scores a behavioral answer by effort: a floor of 2 for any
// real attempt plus length, reasoning and talking-point credit, capped at 10.
func EvaluateEffort(answer string, spec EffortSpec) domain.EvaluationResult {
	trimmed := strings.TrimSpace(answer)
	lower := strings.ToLower(trimmed)
	length := utf8.RuneCountInString(trimmed)

	if _, refused := refusals[lower]; refused || length < 5 {
		return domain.EvaluationResult{
			Score:    0,
			Matched:  []string{},
			Missing:  append([]string{}, spec.TalkingPoints...),
			Feedback: NoAnswerFeedback,
		}
	}

	score := 2.0

	target := float64(spec.TargetLength)
	if target <= 0 {
		target = DefaultTargetLength
	}
	switch l := float64(length); {
	case l >= target*1.5:
		score += 3
	case l >= target:
		score += 2
	case l >= target*0.5:
		score += 1
	}

	reasons := 0
	for _, m := range ReasoningMarkers {
		if strings.Contains(lower, m) {
			reasons++
		}
	}
	switch {
	case reasons >= 3:
		score += 2
	case reasons >= 1:
		score += 1
	}

	matched := make([]string, 0, len(spec.TalkingPoints))
	missing := make([]string, 0, len(spec.TalkingPoints))
	for _, p := range spec.TalkingPoints {
		if strings.Contains(lower, strings.ToLower(p)) {
			matched = append(matched, p)
		} else {
			missing = append(missing, p)
		}
	}
	ratio := 1.0
	if len(spec.TalkingPoints) > 0 {
		ratio = float64(len(matched)) / float64(len(spec.TalkingPoints))
	}
	score += math.Min(3, ratio*3)
	score = round1(math.Min(10, score))

	feedback, ok := customFeedback(spec.Templates, score, spec.RotationKey)
	if !ok {
		feedback = PickTemplate(effortPool(score), spec.RotationKey)
	}
	return domain.EvaluationResult{
		Score:    score,
		Matched:  matched,
		Missing:  missing,
		Feedback: feedback,
	}
}
