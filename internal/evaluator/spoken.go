package evaluator

import (
	"regexp"
	"strings"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// Connectors are discourse markers counted once each.
var Connectors = []string{
	"first", "second", "third", "finally", "lastly",
	"because", "however", "therefore", "consequently",
	"example", "instance", "specifically", "additionally",
	"moreover", "furthermore", "overall", "summary",
}

var wordRe = regexp.MustCompile(`\w+`)

// EvaluateSpoken scores a speech-to-text transcript against a task.
// Duration is in seconds.
func EvaluateSpoken(task domain.CommunicationTask, transcript string, duration float64) domain.EvaluationResult {
	lower := strings.ToLower(transcript)
	words := wordRe.FindAllString(lower, -1)

	if len(words) < 5 || duration < 2 {
		return domain.EvaluationResult{
			Score:    0,
			Feedback: NoSpokenAttemptFeedback,
			Metrics:  &domain.SpokenMetrics{WordCount: len(words), Duration: duration, MatchedPoints: []string{}},
		}
	}

	sentences := len(words) / 12
	if sentences < 1 {
		sentences = 1
	}

	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	connectors := 0
	for _, c := range Connectors {
		if _, ok := seen[c]; ok {
			connectors++
		}
	}

	matched := make([]string, 0, len(task.StructurePoints))
	for _, p := range task.StructurePoints {
		if strings.Contains(lower, strings.ToLower(p)) {
			matched = append(matched, p)
		}
	}
	var relevance float64
	if len(task.StructurePoints) > 0 {
		relevance = float64(len(matched)) / float64(len(task.StructurePoints))
	}

	score := 2.0
	switch {
	case duration >= task.MinDuration:
		score += 2
	case duration >= task.MinDuration/2:
		score += 1
	}
	switch {
	case connectors >= 3:
		score += 3
	case connectors >= 1:
		score += 2
	}
	switch {
	case relevance >= 0.7:
		score += 3
	case relevance >= 0.4:
		score += 2
	case relevance >= 0.1:
		score += 1
	}
	if score > 10 {
		score = 10
	}

	feedback := task.FeedbackTemplates.Low
	switch {
	case score >= 8:
		feedback = task.FeedbackTemplates.High
	case score >= 5:
		feedback = task.FeedbackTemplates.Mid
	}

	return domain.EvaluationResult{
		Score:    score,
		Matched:  matched,
		Feedback: feedback,
		Metrics: &domain.SpokenMetrics{
			WordCount:      len(words),
			ConnectorCount: connectors,
			SentenceCount:  sentences,
			RelevanceRatio: relevance,
			Duration:       duration,
			MatchedPoints:  matched,
		},
	}
}
