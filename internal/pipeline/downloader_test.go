package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/DusanPaal/claim-management/internal/blobstore/impl_fs"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/mailbox"
	"github.com/DusanPaal/claim-management/internal/mailbox/impl_mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRun(t *testing.T, store *dedup.DB) *Run {
	t.Helper()
	log := zap.NewNop().Sugar()
	cancel := NewCancelWatcher(t.TempDir()+"/cancel", log)
	return NewRun(StageDownload, store, cancel, log)
}

func TestDownloaderRegistersNewAttachment(t *testing.T) {
	store, err := dedup.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := impl_fs.New(t.TempDir())
	require.NoError(t, err)

	mbox := impl_mock.NewMockClient("claims@example.com", []mailbox.Message{
		{
			MessageID:  "msg-1",
			Subject:    "MARKANT",
			Subfolder:  "Inbox",
			Attachments: []mailbox.Attachment{{FileName: "claim.pdf", Content: []byte("%PDF-1")}},
		},
	})

	d := &Downloader{Store: store, Mailbox: mbox, Blobstore: blobs, Run: newTestRun(t, store)}
	require.NoError(t, d.Walk(context.Background(), mailbox.ListFilter{}))

	docs, err := store.GetRecords(context.Background(), "status", string(domain.StatusRegistrationSuccess))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "msg-1", docs[0].ExternalMsgID)
}

func TestDownloaderSkipsTerminalDuplicate(t *testing.T) {
	store, err := dedup.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := impl_fs.New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	id, err := store.CreateRecord(ctx, &domain.Document{Hash: hashOf("%PDF-1"), Status: domain.StatusCompleted})
	require.NoError(t, err)

	mbox := impl_mock.NewMockClient("claims@example.com", []mailbox.Message{
		{MessageID: "msg-2", Subject: "MARKANT", Attachments: []mailbox.Attachment{{FileName: "claim.pdf", Content: []byte("%PDF-1")}}},
	})

	d := &Downloader{Store: store, Mailbox: mbox, Blobstore: blobs, Run: newTestRun(t, store)}
	require.NoError(t, d.Walk(ctx, mailbox.ListFilter{}))

	doc, err := store.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "msg-2", doc.ExternalMsgID)
	assert.Equal(t, domain.StatusCompleted, doc.Status)
}

func hashOf(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
