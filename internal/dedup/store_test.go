package dedup

import (
	"context"
	"testing"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndGetRecord(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	doc := &domain.Document{
		Hash:            "abc123",
		Subfolder:       "inbox/markant",
		MessageCategory: "claim",
		Status:          domain.StatusRegistrationSuccess,
		FileLocation:    "/mail/abc123.pdf",
		StructuredData:  map[string]any{"invoice_number": "123"},
	}

	id, err := db.CreateRecord(ctx, doc)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := db.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.Hash)
	assert.Equal(t, domain.StatusRegistrationSuccess, got.Status)
	assert.Equal(t, "123", got.StructuredData["invoice_number"])
}

func TestCreateRecordRejectsDuplicateHash(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.CreateRecord(ctx, &domain.Document{Hash: "dup"})
	require.NoError(t, err)

	_, err = db.CreateRecord(ctx, &domain.Document{Hash: "dup"})
	require.Error(t, err)
}

func TestGetRecordNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetRecord(context.Background(), 999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestGetRecords(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.CreateRecord(ctx, &domain.Document{Hash: "h1", Status: domain.StatusExtracted})
	require.NoError(t, err)
	_, err = db.CreateRecord(ctx, &domain.Document{Hash: "h2", Status: domain.StatusExtracted})
	require.NoError(t, err)
	_, err = db.CreateRecord(ctx, &domain.Document{Hash: "h3", Status: domain.StatusCompleted})
	require.NoError(t, err)

	got, err := db.GetRecords(ctx, "status", string(domain.StatusExtracted))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdateRecordStampsLastUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.CreateRecord(ctx, &domain.Document{Hash: "upd", Status: domain.StatusExtracted})
	require.NoError(t, err)

	before, err := db.GetRecord(ctx, id)
	require.NoError(t, err)

	err = db.UpdateRecord(ctx, id, map[string]any{"status": string(domain.StatusCompleted)})
	require.NoError(t, err)

	after, err := db.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, after.Status)
	assert.True(t, after.LastUpdate.Equal(before.LastUpdate) || after.LastUpdate.After(before.LastUpdate))
}

func TestGetValue(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.CreateRecord(ctx, &domain.Document{Hash: "val", ExternalMsgID: "msg-1"})
	require.NoError(t, err)

	v, err := db.GetValue(ctx, "documents", id, "external_msg_id")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", v)
}

func TestBulkUpdateRecordsCommitsAllOnSuccess(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id1, err := db.CreateRecord(ctx, &domain.Document{Hash: "b1", Status: domain.StatusExtracted})
	require.NoError(t, err)
	id2, err := db.CreateRecord(ctx, &domain.Document{Hash: "b2", Status: domain.StatusExtracted})
	require.NoError(t, err)

	err = db.BulkUpdateRecords(ctx, []BulkUpdate{
		{ID: id1, Fields: map[string]any{"status": string(domain.StatusCompleted)}},
		{ID: id2, Fields: map[string]any{"status": string(domain.StatusCompleted)}},
	})
	require.NoError(t, err)

	r1, _ := db.GetRecord(ctx, id1)
	r2, _ := db.GetRecord(ctx, id2)
	assert.Equal(t, domain.StatusCompleted, r1.Status)
	assert.Equal(t, domain.StatusCompleted, r2.Status)
}

func TestDeleteBy(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.CreateRecord(ctx, &domain.Document{Hash: "gone"})
	require.NoError(t, err)

	err = db.DeleteBy(ctx, "gone")
	require.NoError(t, err)

	got, err := db.GetRecords(ctx, "hash", "gone")
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func TestOperationsFailWhenNotConnected(t *testing.T) {
	db := &DB{}
	ctx := context.Background()

	_, err := db.CreateRecord(ctx, &domain.Document{Hash: "x"})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = db.GetRecord(ctx, 1)
	assert.ErrorIs(t, err, ErrNotConnected)
}
