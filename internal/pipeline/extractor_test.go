package pipeline

import (
	"context"
	"os"
	"testing"

	"github.com/DusanPaal/claim-management/internal/blobstore/impl_fs"
	"github.com/DusanPaal/claim-management/internal/categorizer"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/extraction"
	"github.com/DusanPaal/claim-management/internal/ocr/impl_mock"
	"github.com/DusanPaal/claim-management/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestTemplate(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(dir+"/markant.yaml", []byte(`
issuer: MARKANT
kind: debit
name: Markant invoice
template_id: MARKANT0001
category: invoice
inclusive_keywords:
  - "MARKANT"
`), 0o644))
}

func TestExtractorExtractsRegisteredDocument(t *testing.T) {
	dir := t.TempDir()
	writeTestTemplate(t, dir)

	reg := templates.NewRegistry()
	require.NoError(t, reg.Load(dir))

	store, err := dedup.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := impl_fs.New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, blobs.Upload(ctx, "input/claim.pdf", []byte("%PDF-1"), false))
	id, err := store.CreateRecord(ctx, &domain.Document{
		Hash:            "h1",
		Status:          domain.StatusRegistrationSuccess,
		MessageCategory: "MARKANT",
		FileLocation:    "input/claim.pdf",
	})
	require.NoError(t, err)

	ocrClient := impl_mock.NewMockClient(map[string]string{"%PDF-1": "document text from MARKANT"})

	e := &Extractor{
		Store:       store,
		Blobstore:   blobs,
		OCR:         ocrClient,
		Engine:      extraction.NewEngine(reg),
		Templates:   reg,
		Categorizer: categorizer.New(),
		Run:         newTestRun(t, store),
	}
	require.NoError(t, e.ProcessAll(ctx))

	doc, err := store.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExtracted, doc.Status)
	assert.Equal(t, "MARKANT", doc.StructuredData["issuer"])
}

func TestExtractorMarksExtractionErrorOnNoTemplateMatch(t *testing.T) {
	dir := t.TempDir()
	writeTestTemplate(t, dir)

	reg := templates.NewRegistry()
	require.NoError(t, reg.Load(dir))

	store, err := dedup.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := impl_fs.New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, blobs.Upload(ctx, "input/claim.pdf", []byte("%PDF-2"), false))
	id, err := store.CreateRecord(ctx, &domain.Document{
		Hash:            "h2",
		Status:          domain.StatusRegistrationSuccess,
		MessageCategory: "MARKANT",
		FileLocation:    "input/claim.pdf",
	})
	require.NoError(t, err)

	ocrClient := impl_mock.NewMockClient(map[string]string{"%PDF-2": "totally unrelated text"})

	e := &Extractor{
		Store:       store,
		Blobstore:   blobs,
		OCR:         ocrClient,
		Engine:      extraction.NewEngine(reg),
		Templates:   reg,
		Categorizer: categorizer.New(),
		Run:         newTestRun(t, store),
	}
	require.NoError(t, e.ProcessAll(ctx))

	doc, err := store.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExtractionError, doc.Status)
}
