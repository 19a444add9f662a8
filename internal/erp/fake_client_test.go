package erp

import "context"

// fakeClient is a hand-rolled in-memory Client for exercising the
// Reconciler's protocols without a live SAP connection, following the
// teacher's impl_mock convention
// (_examples/quantumlife-canon-core/internal/connectors/calendar/impl_mock).
type fakeClient struct {
	nextNotifID int64
	nextCaseID  int64

	tableRows map[string][]TableRow
	attrsByCase map[int64]CaseAttributes

	createdNotifications []NotificationHeader
	postedDisputes       []int64
	changedAttrs         []CaseAttributes
	taskCalls            []string
	attachments          []string
	committed            int

	saveErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{nextNotifID: 1000, nextCaseID: 5000, tableRows: map[string][]TableRow{}, attrsByCase: map[int64]CaseAttributes{}}
}

func (f *fakeClient) ReadTable(ctx context.Context, req TableReadRequest) ([]TableRow, error) {
	return f.tableRows[req.Table], nil
}

func (f *fakeClient) CreateNotification(ctx context.Context, header NotificationHeader) (int64, error) {
	f.nextNotifID++
	header.NotificationID = f.nextNotifID
	f.createdNotifications = append(f.createdNotifications, header)
	return f.nextNotifID, nil
}

func (f *fakeClient) GetNotification(ctx context.Context, notifID int64) (NotificationHeader, error) {
	for _, n := range f.createdNotifications {
		if n.NotificationID == notifID {
			return n, nil
		}
	}
	return NotificationHeader{}, nil
}

func (f *fakeClient) SaveNotification(ctx context.Context, header NotificationHeader) error {
	return f.saveErr
}

func (f *fakeClient) AddNotificationData(ctx context.Context, notifID int64, data map[string]string) error {
	return nil
}

func (f *fakeClient) PostClaimDispute(ctx context.Context, notifID int64) (int64, error) {
	f.nextCaseID++
	f.postedDisputes = append(f.postedDisputes, notifID)
	return f.nextCaseID, nil
}

func (f *fakeClient) ChangeTaskStatus(ctx context.Context, caseID int64, taskType, status string) error {
	f.taskCalls = append(f.taskCalls, taskType+":"+status)
	return nil
}

func (f *fakeClient) ChangeDisputeAttributes(ctx context.Context, attrs CaseAttributes) error {
	f.changedAttrs = append(f.changedAttrs, attrs)
	f.attrsByCase[attrs.CaseID] = attrs
	return nil
}

func (f *fakeClient) GetDisputeDetail(ctx context.Context, caseID int64) (CaseAttributes, error) {
	if a, ok := f.attrsByCase[caseID]; ok {
		return a, nil
	}
	return CaseAttributes{CaseID: caseID}, nil
}

func (f *fakeClient) CreateBinaryRelation(ctx context.Context, caseID int64, documentGUID string) error {
	return nil
}

func (f *fakeClient) UploadOfficeDocument(ctx context.Context, attachmentName string, pdf []byte) (string, error) {
	f.attachments = append(f.attachments, attachmentName)
	return "guid-" + attachmentName, nil
}

func (f *fakeClient) Commit(ctx context.Context) error {
	f.committed++
	return nil
}
