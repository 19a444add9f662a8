// Package ocr is the PDF-to-text boundary interface (spec.md §6 OCR
// service (HTTP)): POST {base}/{route} with a multipart pdf form part
// and an access_token header, retrying 502s with backoff.
//
// Only the wire contract is implemented here — the OCR microservice
// itself is out of scope (spec.md §1: "the PDF-to-text OCR microservice
// (HTTP wire contract only)").
package ocr

import "context"

// Route selects the textual vs. scanned extraction pipeline on the OCR
// service (spec.md §6: "route selects textual vs. scanned pipeline").
type Route string

const (
	RouteTextual Route = "textual"
	RouteScanned Route = "scanned"
)

// Client converts a PDF's bytes to plain text.
type Client interface {
	Convert(ctx context.Context, route Route, pdf []byte) (string, error)
}
