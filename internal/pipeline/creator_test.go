package pipeline

import (
	"context"
	"testing"

	"github.com/DusanPaal/claim-management/internal/blobstore/impl_fs"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/extraction"
	"github.com/DusanPaal/claim-management/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatorFailsWhenNoProcessingRule(t *testing.T) {
	store, err := dedup.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := impl_fs.New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	extracted := &extraction.Document{Issuer: "MARKANT", TemplateID: "MARKANT_0001", Kind: domain.KindDebit, Category: domain.CategoryInvoice, Fields: map[string]any{}}
	require.NoError(t, blobs.Upload(ctx, "upload/claim.pdf", []byte("%PDF-1"), false))
	id, err := store.CreateRecord(ctx, &domain.Document{
		Hash:           "h1",
		Status:         domain.StatusExtracted,
		FileLocation:   "upload/claim.pdf",
		StructuredData: extracted.ToStructured(),
	})
	require.NoError(t, err)

	c := &Creator{Store: store, Blobstore: blobs, Rules: rules.NewRegistry(), Run: newTestRun(t, store)}
	require.NoError(t, c.ProcessAll(ctx))

	doc, err := store.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessingError, doc.Status)
	assert.Contains(t, doc.LogText, "no processing rule")
}
