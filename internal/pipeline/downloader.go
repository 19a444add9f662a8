package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/DusanPaal/claim-management/internal/blobstore"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/mailbox"
)

// Downloader walks the shared inbox and registers every PDF attachment
// as a Document Record (spec.md §4.8: received → registered), resolving
// duplicates against the hash index before creating a new record
// (spec.md §4.8 Idempotence).
type Downloader struct {
	Store     *dedup.DB
	Mailbox   mailbox.Client
	Blobstore blobstore.Store
	Run       *Run
}

// Walk processes every message currently in the inbox, one attachment at
// a time, honoring the run's cancel watcher between documents.
func (d *Downloader) Walk(ctx context.Context, filter mailbox.ListFilter) error {
	messages, err := d.Mailbox.WalkInbox(ctx, filter)
	if err != nil {
		return fmt.Errorf("downloader: walk inbox: %w", err)
	}

	for _, msg := range messages {
		if d.Run.ShouldStop() {
			d.Run.Log.Info("cancellation requested, stopping before next message")
			return nil
		}

		attachments, err := d.Mailbox.DownloadAttachments(ctx, msg.MessageID)
		if err != nil {
			d.Run.Log.Errorw("download attachments failed", "message_id", msg.MessageID, "error", err)
			continue
		}

		for _, att := range attachments {
			if err := d.ingest(ctx, msg, att); err != nil {
				d.Run.Log.Errorw("ingest attachment failed", "message_id", msg.MessageID, "file", att.FileName, "error", err)
			}
		}
	}
	return nil
}

func (d *Downloader) ingest(ctx context.Context, msg mailbox.Message, att mailbox.Attachment) error {
	sum := sha256.Sum256(att.Content)
	hash := hex.EncodeToString(sum[:])

	existing, err := d.Store.GetRecords(ctx, "hash", hash)
	if err != nil {
		return fmt.Errorf("look up existing record: %w", err)
	}

	seen := Seen{
		Subfolder:       msg.Subfolder,
		ExternalMsgID:   msg.MessageID,
		MessageCategory: msg.Subject,
	}

	if len(existing) > 0 {
		doc := existing[0]
		seen.ControlCategory = doc.ControlCategory
		action, refresh := Resolve(doc, seen)
		if err := d.Store.UpdateRecord(ctx, doc.ID, refresh); err != nil {
			return fmt.Errorf("refresh existing record: %w", err)
		}
		if action == ActionSkip {
			d.Run.Log.Infow("duplicate hash, skipping", "hash", hash, "record_id", doc.ID)
			return nil
		}
		d.Run.Log.Infow("duplicate hash re-queued", "hash", hash, "record_id", doc.ID)
		return nil
	}

	virtualPath := fmt.Sprintf("%s/%s", DirInput, att.FileName)
	if err := d.Blobstore.Upload(ctx, virtualPath, att.Content, false); err != nil {
		return fmt.Errorf("upload to input: %w", err)
	}

	doc := &domain.Document{
		Hash:            hash,
		Subfolder:       msg.Subfolder,
		MessageCategory: msg.Subject,
		Status:          domain.StatusRegistrationSuccess,
		ExternalMsgID:   msg.MessageID,
		FileLocation:    virtualPath,
	}
	id, err := d.Store.CreateRecord(ctx, doc)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	d.Run.Log.Infow("registered new document", "record_id", id, "hash", hash)
	return nil
}
