package extraction

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeText returns raw as a string, transcoding from Windows-1252 when
// it is not already valid UTF-8. OCR providers occasionally emit Latin-1
// byte sequences for diacritics in supplier names; this is not a case the
// Python original handled, added per SPEC_FULL.md §9 to avoid silently
// corrupting extracted text.
func DecodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
