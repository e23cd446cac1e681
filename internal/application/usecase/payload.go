package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

const noPayloadMessage = "No payload specified"

// NormalizePayload accepts a JSON object or array and returns it compacted.
func NormalizePayload(raw []byte) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty", domain.ErrInvalidPayload)
	}
	if raw[0] != '{' && raw[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON object or array", domain.ErrInvalidPayload)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid UTF-8", domain.ErrInvalidPayload)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: malformed JSON", domain.ErrInvalidPayload)
	}
	if err := rejectNUL(raw); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return buf.Bytes(), nil
}

// rejectNUL fails on any key or string value holding U+0000, which jsonb cannot store.
func rejectNUL(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		if str, ok := tok.(string); ok && strings.ContainsRune(str, 0) {
			return fmt.Errorf("%w: NUL character in string", domain.ErrInvalidPayload)
		}
	}
}

func payloadMessage(raw []byte, err error) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return noPayloadMessage
	}
	return "Invalid payload: " + strings.TrimPrefix(err.Error(), domain.ErrInvalidPayload.Error()+": ")
}
