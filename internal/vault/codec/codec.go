// Package codec converts raw document bytes to and from the data-URL
// form used for persistence and inline previews.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotDataURL = errors.New("payload is not a data URL")
	ErrBadPayload = errors.New("payload is not valid base64")
)

const scheme = "data:"

// Encode wraps data in a base64 data URL carrying mimeType.
func Encode(mimeType string, data []byte) string {
	return scheme + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode, returning the mime type and the original bytes.
// The round trip is lossless: Decode(Encode(m, b)) yields m and b exactly.
func Decode(payload string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(payload, scheme)
	if !ok {
		return "", nil, ErrNotDataURL
	}

	header, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}

	mimeType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing base64 marker", ErrNotDataURL)
	}

	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	return mimeType, data, nil
}
