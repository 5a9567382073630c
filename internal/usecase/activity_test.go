package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/career-readiness/internal/adapter/repo/memory"
	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/usecase"
)

func TestActivityLogger_StoresAndPublishes(t *testing.T) {
	t.Parallel()
	repo := memory.NewActivityRepo()
	pub := &recordingPublisher{}
	l := usecase.NewActivityLogger(repo, pub)

	l.Log(context.Background(), domain.ActivityEntry{UserID: "u1", Module: domain.ModuleResume, Action: domain.ActionUpload, Summary: "x"})

	entries, err := repo.ListByUser(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, usecase.ActivityCompleted, entries[0].Status)

	published := pub.Entries()
	require.Len(t, published, 1)
	assert.Equal(t, entries[0].ID, published[0].ID, "published entry carries the stored id")
}

func TestActivityLogger_SkipsMissingUser(t *testing.T) {
	t.Parallel()
	repo := memory.NewActivityRepo()
	pub := &recordingPublisher{}
	usecase.NewActivityLogger(repo, pub).Log(context.Background(), domain.ActivityEntry{UserID: "  ", Module: domain.ModuleResume})

	assert.Empty(t, pub.Entries())
	entries, _ := repo.ListByUser(context.Background(), "  ", 0)
	assert.Empty(t, entries)
}

func TestActivityLogger_FailuresAreSwallowed(t *testing.T) {
	t.Parallel()
	pub := &recordingPublisher{err: errors.New("broker down")}
	l := usecase.NewActivityLogger(failingActivityRepo{}, pub)

	assert.NotPanics(t, func() {
		l.Log(context.Background(), domain.ActivityEntry{UserID: "u1", Module: domain.ModuleTechnical})
	})
	assert.Len(t, pub.Entries(), 1, "publish is attempted even when storage fails")
}

func TestActivityLogger_NilDependencies(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		usecase.ActivityLogger{}.Log(context.Background(), domain.ActivityEntry{UserID: "u1"})
	})
	out, err := usecase.ActivityLogger{}.Timeline(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestActivityLogger_Timeline(t *testing.T) {
	t.Parallel()
	repo := memory.NewActivityRepo()
	l := usecase.NewActivityLogger(repo, nil)
	for i := 0; i < 3; i++ {
		l.Log(context.Background(), domain.ActivityEntry{UserID: "u1", Module: domain.ModuleTechnical})
	}
	out, err := l.Timeline(context.Background(), "u1", 2)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = l.Timeline(context.Background(), "", 2)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
