// Package impl_mock provides an in-memory mailbox.Client for local
// development and tests, following the teacher's connector mock
// convention (quantumlife-canon-core/internal/connectors/calendar/impl_mock):
// deterministic in-memory state, no external I/O.
package impl_mock

import (
	"context"
	"fmt"
	"sort"

	"github.com/DusanPaal/claim-management/internal/mailbox"
)

// MockClient implements mailbox.Client entirely in memory.
type MockClient struct {
	identity string
	messages map[string]mailbox.Message
	deleted  map[string]bool
}

// NewMockClient returns a mailbox backed by the given seed messages.
func NewMockClient(identity string, seed []mailbox.Message) *MockClient {
	m := &MockClient{identity: identity, messages: map[string]mailbox.Message{}, deleted: map[string]bool{}}
	for _, msg := range seed {
		m.messages[msg.MessageID] = msg
	}
	return m
}

func (m *MockClient) Identity() string { return m.identity }

func (m *MockClient) WalkInbox(ctx context.Context, filter mailbox.ListFilter) ([]mailbox.Message, error) {
	var out []mailbox.Message
	for _, msg := range m.messages {
		if m.deleted[msg.MessageID] {
			continue
		}
		if filter.MessageID != "" && msg.MessageID != filter.MessageID {
			continue
		}
		if !filter.Since.IsZero() && msg.ReceivedAt.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && msg.ReceivedAt.After(filter.Until) {
			continue
		}
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out, nil
}

func (m *MockClient) MoveToSubfolder(ctx context.Context, messageID, subfolderPath string) error {
	msg, ok := m.messages[messageID]
	if !ok {
		return fmt.Errorf("mailbox: unknown message %s", messageID)
	}
	msg.Subfolder = subfolderPath
	m.messages[messageID] = msg
	return nil
}

func (m *MockClient) BulkMove(ctx context.Context, messageIDs []string, subfolderPath string) error {
	for _, id := range messageIDs {
		if err := m.MoveToSubfolder(ctx, id, subfolderPath); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockClient) DownloadAttachments(ctx context.Context, messageID string) ([]mailbox.Attachment, error) {
	msg, ok := m.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("mailbox: unknown message %s", messageID)
	}
	return msg.Attachments, nil
}

func (m *MockClient) AppendBody(ctx context.Context, messageID, html string) error {
	if _, ok := m.messages[messageID]; !ok {
		return fmt.Errorf("mailbox: unknown message %s", messageID)
	}
	return nil
}

func (m *MockClient) Delete(ctx context.Context, messageID string) error {
	if _, ok := m.messages[messageID]; !ok {
		return fmt.Errorf("mailbox: unknown message %s", messageID)
	}
	m.deleted[messageID] = true
	return nil
}

func (m *MockClient) MarkRead(ctx context.Context, messageID string, read bool) error {
	msg, ok := m.messages[messageID]
	if !ok {
		return fmt.Errorf("mailbox: unknown message %s", messageID)
	}
	msg.Read = read
	m.messages[messageID] = msg
	return nil
}

func (m *MockClient) MarkCompleted(ctx context.Context, messageID string, completed bool) error {
	msg, ok := m.messages[messageID]
	if !ok {
		return fmt.Errorf("mailbox: unknown message %s", messageID)
	}
	msg.Completed = completed
	m.messages[messageID] = msg
	return nil
}

func (m *MockClient) Refresh(ctx context.Context) error { return nil }

var _ mailbox.Client = (*MockClient)(nil)
