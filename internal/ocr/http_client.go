package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/DusanPaal/claim-management/internal/pkgerrors"
	"github.com/cenkalti/backoff/v4"
)

// HTTPClient is the real OCR client, POSTing the PDF as a multipart form
// part and retrying 502s with a short fixed backoff (spec.md §6: "On 502
// the client retries up to N times with short sleep"), the same
// constant-backoff shape erp.Session.withLockRetry uses for ERP lock
// retries.
type HTTPClient struct {
	BaseURL     string
	AccessToken string
	HTTP        *http.Client

	retryAttempts uint64
	retryWait     time.Duration
}

// NewHTTPClient builds an HTTPClient with the spec-mandated 502-retry
// policy (up to 5 retries after the first attempt, 500ms apart — shorter than the ERP lock retry
// since OCR failures here are infrastructure blips, not business locks).
func NewHTTPClient(baseURL, accessToken string) *HTTPClient {
	return &HTTPClient{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		AccessToken:   accessToken,
		HTTP:          &http.Client{Timeout: 60 * time.Second},
		retryAttempts: 5,
		retryWait:     500 * time.Millisecond,
	}
}

func (c *HTTPClient) Convert(ctx context.Context, route Route, pdf []byte) (string, error) {
	var text string

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryWait), c.retryAttempts),
		ctx,
	)

	err := backoff.Retry(func() error {
		body, contentType, err := buildMultipart(pdf)
		if err != nil {
			return backoff.Permanent(pkgerrors.Wrap(pkgerrors.KindFatal, "ocr.Convert", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+string(route), body)
		if err != nil {
			return backoff.Permanent(pkgerrors.Wrap(pkgerrors.KindFatal, "ocr.Convert", err))
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("access_token", c.AccessToken)

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.KindTransientExternal, "ocr.Convert", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.KindTransientExternal, "ocr.Convert", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			text = cleanResponseText(string(respBody))
			return nil
		case resp.StatusCode == http.StatusBadGateway:
			return pkgerrors.New(pkgerrors.KindTransientExternal, "ocr.Convert", "OCR service returned 502")
		default:
			return backoff.Permanent(pkgerrors.New(pkgerrors.KindPermanentExternal, "ocr.Convert",
				fmt.Sprintf("OCR service returned %d: %s", resp.StatusCode, string(respBody))))
		}
	}, policy)

	if err != nil {
		return "", err
	}
	return text, nil
}

func buildMultipart(pdf []byte) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile("pdf", "document.pdf")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

// cleanResponseText strips form-feed characters and an optional leading
// diagnostic header line (spec.md §6: "form-feed characters may be
// stripped; an optional diagnostic header line can be prepended").
func cleanResponseText(raw string) string {
	raw = strings.ReplaceAll(raw, "\f", "")
	if idx := strings.Index(raw, "\n"); idx >= 0 && strings.HasPrefix(raw, "#") {
		raw = raw[idx+1:]
	}
	return raw
}
