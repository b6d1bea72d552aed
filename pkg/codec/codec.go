// Package codec converts base64 pdf payloads to raw bytes and back.
package codec

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

const (
	// DataURIPrefix is prepended to a payload before the marker is located.
	DataURIPrefix = "data:application/pdf;base64,"

	base64Marker = ";base64,"
)

// Canonical alphabet, groups of four, padding only in the final group.
var base64Pattern = regexp.MustCompile(`^(?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=)?$`)

// DecodeError reports a payload that could not be turned into bytes.
type DecodeError struct {
	// Length is the length of the offending payload.
	Length int
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode %d-character payload: %v", e.Length, e.Cause)
	}
	return fmt.Sprintf("decode %d-character payload: no bytes produced", e.Length)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// IsWellFormedBase64 reports whether s is canonical padded base64.
// The empty string is well-formed; callers reject empty payloads themselves.
func IsWellFormedBase64(s string) bool {
	return base64Pattern.MatchString(s)
}

// Decode wraps s in a pdf data URI, cuts it at the base64 marker and decodes
// the remainder. It does not re-check well-formedness.
func Decode(s string) ([]byte, error) {
	uri := DataURIPrefix + s
	payload := uri[strings.Index(uri, base64Marker)+len(base64Marker):]

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &DecodeError{Length: len(s), Cause: err}
	}
	if len(raw) == 0 {
		return nil, &DecodeError{Length: len(s)}
	}
	return raw, nil
}

// Encode returns the canonical padded base64 text for b.
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
