// Package mailbox is the shared-inbox boundary interface (spec.md §6
// Mailbox (EWS/OAuth2)): walking the inbox tree, filtering by message id
// or received-date range, moving messages between per-customer
// subfolders, downloading attachments, and annotating the originating
// email on failure.
//
// Grounded on the teacher's connector split
// (_examples/quantumlife-canon-core/internal/connectors/calendar):
// interface.go declares the Client seam, types.go the domain shapes, and
// an impl_mock package backs it for tests without a live EWS/OAuth2
// session — the real EWS client lives outside this module per spec.md §1
// ("the low-level SMTP/EWS client... their interfaces are summarized in
// §6").
package mailbox

import "time"

// Credentials mirrors the line-oriented `Key: Value` file format spec.md
// §6 names (Client ID / Client Secret / Tenant ID) for the OAuth2 app
// registration backing the shared mailbox.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

// Message is one email in the shared mailbox, carrying zero or more PDF
// attachments.
type Message struct {
	MessageID   string
	Subject     string
	ReceivedAt  time.Time
	Subfolder   string
	Attachments []Attachment
	Completed   bool // extended property 0x1090
	Read        bool
}

// Attachment is one file attached to a Message.
type Attachment struct {
	FileName string
	Content  []byte
}

// ListFilter narrows WalkInbox / messages returned by date range or
// message id (spec.md §6: "filter by message_id", "filter by received
// date range").
type ListFilter struct {
	MessageID string
	Since     time.Time
	Until     time.Time
}
