// Package impl_mock provides an in-memory erp.Client for local
// development and the creator stage's default wiring, following the
// teacher's connector mock convention
// (quantumlife-canon-core/internal/connectors/calendar/impl_mock):
// deterministic in-memory state, no external RFC/BAPI connection.
//
// Behavior mirrors internal/erp's own unexported fakeClient test fixture,
// exported here so cmd/creator can run against a live SAP-free backend.
package impl_mock

import (
	"context"
	"sync"

	"github.com/DusanPaal/claim-management/internal/erp"
)

// MockClient implements erp.Client entirely in memory.
type MockClient struct {
	mu sync.Mutex

	nextNotifID int64
	nextCaseID  int64

	tableRows     map[string][]erp.TableRow
	notifications map[int64]erp.NotificationHeader
	attrsByCase   map[int64]erp.CaseAttributes

	resets    []string
	committed int
}

// NewMockClient returns an erp.Client seeded with the given table rows,
// keyed by table name (e.g. "T024" for the priority table).
func NewMockClient(tableRows map[string][]erp.TableRow) *MockClient {
	if tableRows == nil {
		tableRows = map[string][]erp.TableRow{}
	}
	return &MockClient{
		nextNotifID:   1000,
		nextCaseID:    5000,
		tableRows:     tableRows,
		notifications: map[int64]erp.NotificationHeader{},
		attrsByCase:   map[int64]erp.CaseAttributes{},
	}
}

func (m *MockClient) ReadTable(ctx context.Context, req erp.TableReadRequest) ([]erp.TableRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tableRows[req.Table], nil
}

func (m *MockClient) CreateNotification(ctx context.Context, header erp.NotificationHeader) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNotifID++
	header.NotificationID = m.nextNotifID
	m.notifications[header.NotificationID] = header
	return header.NotificationID, nil
}

func (m *MockClient) GetNotification(ctx context.Context, notifID int64) (erp.NotificationHeader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifications[notifID], nil
}

func (m *MockClient) SaveNotification(ctx context.Context, header erp.NotificationHeader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[header.NotificationID] = header
	return nil
}

func (m *MockClient) AddNotificationData(ctx context.Context, notifID int64, data map[string]string) error {
	return nil
}

func (m *MockClient) PostClaimDispute(ctx context.Context, notifID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCaseID++
	if n, ok := m.notifications[notifID]; ok {
		n.CaseID = m.nextCaseID
		m.notifications[notifID] = n
	}
	return m.nextCaseID, nil
}

func (m *MockClient) ChangeTaskStatus(ctx context.Context, caseID int64, taskType, status string) error {
	return nil
}

func (m *MockClient) ChangeDisputeAttributes(ctx context.Context, attrs erp.CaseAttributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attrsByCase[attrs.CaseID] = attrs
	return nil
}

func (m *MockClient) GetDisputeDetail(ctx context.Context, caseID int64) (erp.CaseAttributes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.attrsByCase[caseID]; ok {
		return a, nil
	}
	return erp.CaseAttributes{CaseID: caseID}, nil
}

func (m *MockClient) CreateBinaryRelation(ctx context.Context, caseID int64, documentGUID string) error {
	return nil
}

func (m *MockClient) UploadOfficeDocument(ctx context.Context, attachmentName string, pdf []byte) (string, error) {
	return "guid-" + attachmentName, nil
}

func (m *MockClient) Commit(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed++
	return nil
}

// ResetConnection records a company-code switch. Implementing this
// optional interface lets erp.Session exercise its reset path against
// the mock the same way it would a live RFC connection.
func (m *MockClient) ResetConnection(ctx context.Context, companyCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, companyCode)
	return nil
}

var _ erp.Client = (*MockClient)(nil)
