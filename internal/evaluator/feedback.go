// Package evaluator holds the rule-based scorers for choice, keyword, effort
// and spoken answers. Every function here is pure and safe for concurrent use.
package evaluator

import (
	"math"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// Global feedback pools, rotated by PickTemplate.
var (
	PoorPool = []string{
		"The answer does not demonstrate understanding of the core concept.",
		"This response is too vague and misses the fundamental idea.",
		"The explanation is incorrect or lacks meaningful technical content.",
	}
	BelowAveragePool = []string{
		"You identified the topic correctly, but key technical details are missing.",
		"The response shows basic awareness, but lacks depth and clarity.",
		"Important aspects of the concept were not explained clearly.",
	}
	AverageGoodPool = []string{
		"This is a reasonable explanation, but it can be strengthened with more detail.",
		"You covered the basics, but the explanation lacks completeness.",
		"Good attempt, but additional technical clarity would improve this answer.",
	}
	ExcellentPool = []string{
		"This is a clear and well-structured explanation.",
		"The answer demonstrates strong conceptual understanding.",
		"Well explained with appropriate technical depth.",
	}
	HREffortPool = []string{
		"You've shown good effort in your response. To improve, try using more specific professional examples.",
		"I appreciate the detailed explanation. Adding a structured 'Situation-Action-Result' approach would make this even stronger.",
		"Good start. Expanding on your reasoning would help the interviewer understand your thought process better.",
	}
	HRWeakPool = []string{
		"I see your attempt, but the response needs more depth and professional framing.",
		"The core idea is there, but try to structure your answer more clearly to highlight your skills.",
		"Consider adding a specific example to illustrate your point more effectively.",
	}
)

const (
	// NoAnswerFeedback is returned for empty or refusal HR answers.
	NoAnswerFeedback = "No meaningful answer provided. Please attempt the question to receive feedback."
	// NoSpokenAttemptFeedback is returned for silent or too-short transcripts.
	NoSpokenAttemptFeedback = "No meaningful attempt detected. Please try to speak clearly into the microphone."
)

// PickTemplate returns pool[rotationKey mod len(pool)], or "" for an empty pool.
// Negative keys wrap around.
func PickTemplate(pool []string, rotationKey int) string {
	if len(pool) == 0 {
		return ""
	}
	i := rotationKey % len(pool)
	if i < 0 {
		i += len(pool)
	}
	return pool[i]
}

// customFeedback resolves per-question templates: excellent >= 9, average >= 4,
// otherwise poor. It reports false when no template covers the band.
func customFeedback(t *domain.FeedbackTemplates, score float64, rotationKey int) (string, bool) {
	if t == nil {
		return "", false
	}
	pool := t.Poor
	switch {
	case score >= 9:
		pool = t.Excellent
	case score >= 4:
		pool = t.Average
	}
	if len(pool) == 0 {
		return "", false
	}
	return PickTemplate(pool, rotationKey), true
}

func keywordPool(score float64) []string {
	switch {
	case score >= 9:
		return ExcellentPool
	case score >= 6:
		return AverageGoodPool
	case score >= 3:
		return BelowAveragePool
	default:
		return PoorPool
	}
}

func effortPool(score float64) []string {
	if score >= 6 {
		return HREffortPool
	}
	return HRWeakPool
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
