package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/career-readiness/internal/adapter/repo/memory"
	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/evaluator"
	"github.com/fairyhunter13/career-readiness/internal/usecase"
	"github.com/fairyhunter13/career-readiness/pkg/randx"
)

func mcqPool(prefix string, n int) []domain.Question {
	out := make([]domain.Question, n)
	for i := range out {
		out[i] = domain.Question{
			ID:             fmt.Sprintf("%s%02d", prefix, i),
			Prompt:         fmt.Sprintf("Question %d", i),
			Kind:           domain.KindSingle,
			Options:        []string{"A", "B", "C", "D"},
			CorrectAnswers: []string{"A"},
		}
	}
	return out
}

type testFixture struct {
	svc      usecase.TechnicalTestService
	activity *memory.ActivityRepo
	progress usecase.ProgressService
}

func newTestFixture(bank staticBank) testFixture {
	act := memory.NewActivityRepo()
	prog := usecase.NewProgressService(memory.NewProgressRepo())
	svc := usecase.NewTechnicalTestService(memory.NewTechnicalTestRepo(), bank, randx.NewSeeded(3),
		usecase.NewActivityLogger(act, nil), prog)
	return testFixture{svc: svc, activity: act, progress: prog}
}

func defaultTestBank() staticBank {
	return staticBank{pools: map[string][]domain.Question{
		"dbms/easy":   mcqPool("e", 12),
		"dbms/medium": mcqPool("m", 15),
		"dbms/hard":   mcqPool("h", 8),
	}}
}

func TestTechnicalTest_Config(t *testing.T) {
	t.Parallel()
	cfg := newTestFixture(defaultTestBank()).svc.Config()
	assert.Equal(t, []string{"dbms", "java"}, cfg.Subjects)
	assert.Equal(t, []string{"Easy", "Medium", "Hard"}, cfg.Difficulties)
}

func TestTechnicalTest_StartSizesByDifficulty(t *testing.T) {
	t.Parallel()
	f := newTestFixture(defaultTestBank())
	cases := []struct {
		difficulty string
		want       int
	}{
		{"Easy", 10},
		{"Medium", 15},
		{"Hard", 8},
	}
	for _, tc := range cases {
		t.Run(tc.difficulty, func(t *testing.T) {
			st, err := f.svc.Start(context.Background(), usecase.StartTestInput{Subject: "dbms", Difficulty: tc.difficulty})
			require.NoError(t, err)
			assert.Equal(t, tc.want, st.Total)
			assert.Len(t, st.Questions, tc.want)
			assert.Equal(t, tc.want*evaluator.DefaultMarks, st.MaxScore)
			seen := map[string]bool{}
			for _, q := range st.Questions {
				assert.False(t, seen[q.ID], "questions are not repeated")
				seen[q.ID] = true
			}
		})
	}
}

func TestTechnicalTest_StartErrors(t *testing.T) {
	t.Parallel()
	f := newTestFixture(defaultTestBank())
	_, err := f.svc.Start(context.Background(), usecase.StartTestInput{Subject: "java", Difficulty: "Easy"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Start(context.Background(), usecase.StartTestInput{Subject: "", Difficulty: "Easy"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTechnicalTest_SubmitAnswerAndResult(t *testing.T) {
	t.Parallel()
	f := newTestFixture(defaultTestBank())
	ctx := context.Background()
	st, err := f.svc.Start(ctx, usecase.StartTestInput{UserID: "u1", Subject: "dbms", Difficulty: "Easy"})
	require.NoError(t, err)

	first := st.Questions[0].ID
	res, err := f.svc.SubmitAnswer(ctx, st.TestID, first, []string{"A"})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 5, res.MarksAwarded)

	_, err = f.svc.SubmitAnswer(ctx, st.TestID, first, []string{"A"})
	assert.ErrorIs(t, err, domain.ErrConflict, "re-answering is rejected")

	res, err = f.svc.SubmitAnswer(ctx, st.TestID, st.Questions[1].ID, []string{"B"})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)

	_, err = f.svc.SubmitAnswer(ctx, st.TestID, "nope", []string{"A"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.SubmitAnswer(ctx, "missing", first, []string{"A"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err := f.svc.Result(ctx, st.TestID)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Score)
	assert.Equal(t, 50, out.MaxScore)
	assert.InDelta(t, 10.0, out.Accuracy, 1e-9)
	assert.Equal(t, evaluator.LabelPoor, out.Label)
	assert.Equal(t, 2, out.Answered)

	_, err = f.svc.Result(ctx, st.TestID)
	require.NoError(t, err)
	entries, _ := f.activity.ListByUser(ctx, "u1", 0)
	assert.Len(t, entries, 1, "completion is logged once")
	p, _ := f.progress.Get(ctx, "u1")
	assert.Equal(t, 1, p.Modules[domain.ModuleTechnical].Completions)

	_, err = f.svc.SubmitAnswer(ctx, st.TestID, st.Questions[2].ID, []string{"A"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTechnicalTest_SubmitBulk(t *testing.T) {
	t.Parallel()
	f := newTestFixture(defaultTestBank())
	ctx := context.Background()
	st, err := f.svc.Start(ctx, usecase.StartTestInput{UserID: "u2", Subject: "dbms", Difficulty: "Hard"})
	require.NoError(t, err)

	answers := map[string][]string{"unknown": {"A"}}
	for i, q := range st.Questions {
		if i%2 == 0 {
			answers[q.ID] = []string{"A"}
		} else {
			answers[q.ID] = []string{"C"}
		}
	}
	out, err := f.svc.SubmitBulk(ctx, st.TestID, answers)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Score)
	assert.Equal(t, 40, out.MaxScore)
	assert.InDelta(t, 50.0, out.Accuracy, 1e-9)
	assert.Equal(t, evaluator.LabelAverage, out.Label)
	assert.Equal(t, 8, out.Answered)

	again, err := f.svc.SubmitBulk(ctx, st.TestID, answers)
	require.NoError(t, err)
	assert.Equal(t, out.Score, again.Score, "a completed test is not re-scored")
}
