package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/DusanPaal/claim-management/internal/blobstore/impl_fs"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiverMovesEligibleCreditDocument(t *testing.T) {
	store, err := dedup.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := impl_fs.New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, blobs.Upload(ctx, "done/claim_id=1.pdf", []byte("%PDF-1"), false))

	id, err := store.CreateRecord(ctx, &domain.Document{
		Hash:           "h1",
		Status:         domain.StatusCompleted,
		FileLocation:   "done/claim_id=1.pdf",
		StructuredData: map[string]any{"kind": "credit"},
	})
	require.NoError(t, err)

	a := &Archiver{Store: store, Blobstore: blobs, Retention: -1 * time.Hour, Run: newTestRun(t, store)}
	require.NoError(t, a.ProcessAll(ctx))

	doc, err := store.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, doc.Status)
	assert.Contains(t, doc.FileLocation, "archive/")

	data, err := blobs.FetchContent(ctx, doc.FileLocation)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1", string(data))
}

func TestArchiverSkipsDebitDocument(t *testing.T) {
	store, err := dedup.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := impl_fs.New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	id, err := store.CreateRecord(ctx, &domain.Document{
		Hash:           "h2",
		Status:         domain.StatusCompleted,
		FileLocation:   "done/claim_id=2.pdf",
		StructuredData: map[string]any{"kind": "debit"},
	})
	require.NoError(t, err)

	a := &Archiver{Store: store, Blobstore: blobs, Retention: -1 * time.Hour, Run: newTestRun(t, store)}
	require.NoError(t, a.ProcessAll(ctx))

	doc, err := store.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, doc.Status)
}
