package gsi

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const pemLineWidth = 64

// toPEM base64-encodes data with fixed-width 64-column line wrapping,
// framed by header and footer lines.
func toPEM(data []byte, header, footer string) string {
	encoded := base64.StdEncoding.EncodeToString(data)

	var lines []string
	lines = append(lines, header)
	for i := 0; i < len(encoded); i += pemLineWidth {
		end := i + pemLineWidth
		if end > len(encoded) {
			end = len(encoded)
		}
		lines = append(lines, encoded[i:end])
	}
	lines = append(lines, footer)

	return strings.Join(lines, "\n")
}

// fromPEM locates header and footer within text, base64-decodes the
// content between them, and ignores any whitespace in that content.
func fromPEM(text, header, footer string) ([]byte, error) {
	start := strings.Index(text, header)
	if start < 0 {
		return nil, fmt.Errorf("%w: missing header %q", ErrMalformed, header)
	}
	start += len(header)

	end := strings.Index(text[start:], footer)
	if end < 0 {
		return nil, fmt.Errorf("%w: missing footer %q", ErrMalformed, footer)
	}
	end += start

	body := strings.Join(strings.Fields(text[start:end]), "")
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return data, nil
}
