// Package impl_mock is a deterministic in-memory ocr.Client for tests,
// grounded on the teacher's connector impl_mock convention
// (quantumlife-canon-core/internal/connectors/calendar/impl_mock).
package impl_mock

import (
	"context"
	"fmt"

	"github.com/DusanPaal/claim-management/internal/ocr"
)

// MockClient returns a canned text, or a fixed error, keyed by the bytes
// passed in so a test can distinguish documents; the route is recorded
// (see Calls) but does not select the response.
type MockClient struct {
	Responses map[string]string
	Err       error
	calls     []ocr.Route
}

func NewMockClient(responses map[string]string) *MockClient {
	return &MockClient{Responses: responses}
}

func (m *MockClient) Convert(ctx context.Context, route ocr.Route, pdf []byte) (string, error) {
	m.calls = append(m.calls, route)
	if m.Err != nil {
		return "", m.Err
	}
	key := string(pdf)
	if text, ok := m.Responses[key]; ok {
		return text, nil
	}
	return "", fmt.Errorf("ocr mock: no canned response for input %q", key)
}

// Calls returns the routes Convert was invoked with, in order.
func (m *MockClient) Calls() []ocr.Route {
	return m.calls
}

var _ ocr.Client = (*MockClient)(nil)
