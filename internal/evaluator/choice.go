package evaluator

import (
	"sort"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// DefaultMarks is awarded when a question carries no point value.
const DefaultMarks = 5

// EvaluateChoice scores a single or multi choice submission. Comparison is
// case-sensitive. Empty submissions and unknown kinds are incorrect.
func EvaluateChoice(q domain.Question, selected []string) domain.ChoiceResult {
	marks := q.Marks
	if marks <= 0 {
		marks = DefaultMarks
	}
	if len(selected) == 0 || len(q.CorrectAnswers) == 0 {
		return domain.ChoiceResult{}
	}
	var ok bool
	switch q.Kind {
	case domain.KindSingle:
		ok = len(selected) == 1 && selected[0] == q.CorrectAnswers[0]
	case domain.KindMulti:
		ok = sameSet(selected, q.CorrectAnswers)
	}
	if !ok {
		return domain.ChoiceResult{}
	}
	return domain.ChoiceResult{IsCorrect: true, MarksAwarded: marks}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
