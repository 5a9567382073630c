package evaluator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

func TestEvaluateKeywords(t *testing.T) {
	tests := []struct {
		name         string
		answer       string
		spec         KeywordSpec
		wantScore    float64
		wantMatched  []string
		wantMissing  []string
		wantFeedback string
	}{
		{
			name:         "all keywords matched",
			answer:       "Goroutines communicate over a channel in Go",
			spec:         KeywordSpec{Keywords: []string{"Go", "channel", "goroutine"}, RotationKey: 1},
			wantScore:    10,
			wantMatched:  []string{"Go", "channel", "goroutine"},
			wantMissing:  []string{},
			wantFeedback: ExcellentPool[1],
		},
		{
			name:         "nothing matched",
			answer:       "no idea",
			spec:         KeywordSpec{Keywords: []string{"mutex"}},
			wantScore:    0,
			wantMatched:  []string{},
			wantMissing:  []string{"mutex"},
			wantFeedback: PoorPool[0],
		},
		{
			name:         "weights keyed by lowercase keyword",
			answer:       "use a mutex",
			spec:         KeywordSpec{Keywords: []string{"Mutex", "lock"}, Weights: map[string]float64{"mutex": 3}, RotationKey: 2},
			wantScore:    7.5,
			wantMatched:  []string{"Mutex"},
			wantMissing:  []string{"lock"},
			wantFeedback: AverageGoodPool[2],
		},
		{
			name:         "below average band",
			answer:       "an index",
			spec:         KeywordSpec{Keywords: []string{"index", "btree", "scan"}},
			wantScore:    3.3,
			wantMatched:  []string{"index"},
			wantMissing:  []string{"btree", "scan"},
			wantFeedback: BelowAveragePool[0],
		},
		{
			name:         "length penalty",
			answer:       "mutex lock",
			spec:         KeywordSpec{Keywords: []string{"mutex", "lock"}, MinLength: 100},
			wantScore:    7.3,
			wantMatched:  []string{"mutex", "lock"},
			wantMissing:  []string{},
			wantFeedback: AverageGoodPool[0],
		},
		{
			name:         "no keywords",
			answer:       "anything",
			spec:         KeywordSpec{},
			wantScore:    0,
			wantMatched:  []string{},
			wantMissing:  []string{},
			wantFeedback: PoorPool[0],
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EvaluateKeywords(tt.answer, tt.spec)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantMatched, got.Matched)
			assert.Equal(t, tt.wantMissing, got.Missing)
			assert.Equal(t, tt.wantFeedback, got.Feedback)
			assert.Nil(t, got.Metrics)
		})
	}
}

func TestEvaluateKeywords_CustomTemplates(t *testing.T) {
	spec := KeywordSpec{
		Keywords: []string{"acid"},
		Templates: &domain.FeedbackTemplates{
			Excellent: []string{"Perfect!"},
			Average:   []string{"a1", "a2"},
		},
	}
	assert.Equal(t, "Perfect!", EvaluateKeywords("ACID transactions", spec).Feedback)

	spec.Keywords = []string{"acid", "isolation"}
	spec.RotationKey = 3
	assert.Equal(t, "a2", EvaluateKeywords("acid", spec).Feedback)

	// No poor template: falls back to the global pool.
	assert.Equal(t, PoorPool[0], EvaluateKeywords("nothing", spec).Feedback)
}

func TestEvaluateKeywords_FeedbackFollowsRoundedScore(t *testing.T) {
	spec := KeywordSpec{
		Keywords: []string{"mutex", "channel"},
		Weights:  map[string]float64{"mutex": 8.96, "channel": 1.04},
	}
	res := EvaluateKeywords("guard it with a mutex", spec)
	assert.Equal(t, 9.0, res.Score)
	assert.Equal(t, ExcellentPool[0], res.Feedback)

	spec.Templates = &domain.FeedbackTemplates{Excellent: []string{"top"}, Average: []string{"mid"}, Poor: []string{"low"}}
	assert.Equal(t, "top", EvaluateKeywords("guard it with a mutex", spec).Feedback)
}

func TestEvaluateKeywords_MonotonicInMatchedWeight(t *testing.T) {
	keywords := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	spec := KeywordSpec{Keywords: keywords, Weights: map[string]float64{"gamma": 2}}
	prev := -1.0
	for i := 0; i <= len(keywords); i++ {
		got := EvaluateKeywords(strings.Join(keywords[:i], " "), spec)
		require.GreaterOrEqual(t, got.Score, prev)
		prev = got.Score
	}
	assert.Equal(t, 10.0, prev)
}

func TestLengthPenalty(t *testing.T) {
	assert.InDelta(t, 0.7, LengthPenalty(0, 50), 1e-9)
	assert.InDelta(t, 0.85, LengthPenalty(25, 50), 1e-9)
	assert.Equal(t, 1.0, LengthPenalty(50, 50))
	assert.Equal(t, 1.0, LengthPenalty(80, 50))
	assert.Equal(t, 1.0, LengthPenalty(10, 0))
}

func TestEvaluateKeywords_ZeroLengthKeepsAtMostSeventyPercent(t *testing.T) {
	spec := KeywordSpec{Keywords: []string{""}, MinLength: 40}
	// Empty keyword matches any answer, so the unpenalized score is 10.
	got := EvaluateKeywords("", spec)
	assert.LessOrEqual(t, got.Score, 7.0)
}
