package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStageTestRun(t *testing.T, stage Stage) (*Run, *dedup.DB) {
	t.Helper()
	store, err := dedup.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log, err := logging.New("test", true)
	require.NoError(t, err)

	return NewRun(stage, store, nil, log), store
}

func TestRunTransitionPersistsAndValidates(t *testing.T) {
	run, store := newStageTestRun(t, StageExtract)
	ctx := context.Background()

	id, err := store.CreateRecord(ctx, &domain.Document{Hash: "h1", Status: domain.StatusRegistrationSuccess})
	require.NoError(t, err)
	doc, err := store.GetRecord(ctx, id)
	require.NoError(t, err)

	require.NoError(t, run.Transition(ctx, doc, domain.StatusExtracted))
	assert.Equal(t, domain.StatusExtracted, doc.Status)

	reloaded, err := store.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExtracted, reloaded.Status)
}

func TestRunTransitionRejectsIllegalEdge(t *testing.T) {
	run, store := newStageTestRun(t, StageCreate)
	ctx := context.Background()

	id, err := store.CreateRecord(ctx, &domain.Document{Hash: "h2", Status: domain.StatusRegistrationSuccess})
	require.NoError(t, err)
	doc, err := store.GetRecord(ctx, id)
	require.NoError(t, err)

	err = run.Transition(ctx, doc, domain.StatusArchived)
	assert.Error(t, err)
}

func TestEligibleForArchiveRequiresCreditAndRetention(t *testing.T) {
	now := time.Now()
	completed := &domain.Document{Status: domain.StatusCompleted, LastUpdate: now.Add(-48 * time.Hour)}

	assert.True(t, EligibleForArchive(completed, domain.KindCredit, 24*time.Hour, now))
	assert.False(t, EligibleForArchive(completed, domain.KindDebit, 24*time.Hour, now))
	assert.False(t, EligibleForArchive(completed, domain.KindCredit, 72*time.Hour, now))
}
