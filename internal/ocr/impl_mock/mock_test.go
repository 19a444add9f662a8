package impl_mock

import (
	"context"
	"errors"
	"testing"

	"github.com/DusanPaal/claim-management/internal/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertReturnsCannedResponse(t *testing.T) {
	m := NewMockClient(map[string]string{"pdfbytes": "extracted"})
	text, err := m.Convert(context.Background(), ocr.RouteTextual, []byte("pdfbytes"))
	require.NoError(t, err)
	assert.Equal(t, "extracted", text)
	assert.Equal(t, []ocr.Route{ocr.RouteTextual}, m.Calls())
}

func TestConvertUnknownInputErrors(t *testing.T) {
	m := NewMockClient(map[string]string{})
	_, err := m.Convert(context.Background(), ocr.RouteScanned, []byte("unseen"))
	assert.Error(t, err)
}

func TestConvertReturnsFixedError(t *testing.T) {
	m := NewMockClient(nil)
	m.Err = errors.New("boom")
	_, err := m.Convert(context.Background(), ocr.RouteTextual, []byte("x"))
	assert.ErrorIs(t, err, m.Err)
}
