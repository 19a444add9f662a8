package impl_mock

import (
	"context"
	"testing"
	"time"

	"github.com/DusanPaal/claim-management/internal/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessages() []mailbox.Message {
	return []mailbox.Message{
		{MessageID: "m1", Subfolder: "inbox", ReceivedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Attachments: []mailbox.Attachment{{FileName: "claim.pdf", Content: []byte("pdf")}}},
		{MessageID: "m2", Subfolder: "inbox", ReceivedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestWalkInboxFiltersByDateRange(t *testing.T) {
	client := NewMockClient("ar@example.com", seedMessages())
	got, err := client.WalkInbox(context.Background(), mailbox.ListFilter{
		Since: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].MessageID)
}

func TestMoveToSubfolderThenWalkReflectsNewFolder(t *testing.T) {
	client := NewMockClient("ar@example.com", seedMessages())
	require.NoError(t, client.MoveToSubfolder(context.Background(), "m1", "inbox/markant"))

	got, err := client.WalkInbox(context.Background(), mailbox.ListFilter{MessageID: "m1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "inbox/markant", got[0].Subfolder)
}

func TestDeleteRemovesFromWalk(t *testing.T) {
	client := NewMockClient("ar@example.com", seedMessages())
	require.NoError(t, client.Delete(context.Background(), "m1"))

	got, err := client.WalkInbox(context.Background(), mailbox.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].MessageID)
}

func TestDownloadAttachments(t *testing.T) {
	client := NewMockClient("ar@example.com", seedMessages())
	atts, err := client.DownloadAttachments(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "claim.pdf", atts[0].FileName)
}

func TestMarkCompletedAndRead(t *testing.T) {
	client := NewMockClient("ar@example.com", seedMessages())
	require.NoError(t, client.MarkCompleted(context.Background(), "m1", true))
	require.NoError(t, client.MarkRead(context.Background(), "m1", true))

	got, err := client.WalkInbox(context.Background(), mailbox.ListFilter{MessageID: "m1"})
	require.NoError(t, err)
	assert.True(t, got[0].Completed)
	assert.True(t, got[0].Read)
}
