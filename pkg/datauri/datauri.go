// Package datauri encodes and validates the data:<mimetype>;base64,<payload>
// strings the chat core accepts for images. Size caps are enforced before
// anything reaches the model provider.
package datauri

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// Byte caps applied before encoding. Oversized files are rejected with a
// user-visible message upstream.
const (
	MaxProfilePhotoBytes = 2 << 20
	MaxAttachmentBytes   = 5 << 20
)

var (
	// ErrTooLarge reports a payload past the supplied byte cap.
	ErrTooLarge = errors.New("file too large")
	// ErrInvalid reports a string that is not a base64 data URI.
	ErrInvalid = errors.New("invalid data URI")
)

const base64Marker = ";base64,"

// Encode wraps raw bytes into a data URI. The MIME type is sniffed from the
// content when the caller does not provide one.
func Encode(mimeType string, data []byte, maxBytes int) (string, error) {
	if len(data) > maxBytes {
		return "", ErrTooLarge
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return "data:" + mimeType + base64Marker + base64.StdEncoding.EncodeToString(data), nil
}

// Validate checks the data:<mimetype>;base64,<payload> shape and that the
// decoded payload fits under maxBytes.
func Validate(uri string, maxBytes int) error {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ErrInvalid
	}

	idx := strings.Index(rest, base64Marker)
	if idx < 0 {
		return ErrInvalid
	}

	payload := rest[idx+len(base64Marker):]
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalid
	}
	if len(decoded) > maxBytes {
		return ErrTooLarge
	}
	return nil
}
