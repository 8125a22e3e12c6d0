// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxResponseSize caps any body read by the client.
const MaxResponseSize = 10 * 1024 * 1024

// chunkSize is the read size used while accumulating a streamed body.
const chunkSize = 4096

// =============================================================================
// STREAMING INGEST
// =============================================================================

// Ingest reads body to completion and returns the decoded text.
//
// Chunks go through a streaming decoder for the charset named in
// contentType (UTF-8 when absent or unknown). The decoder holds back an
// incomplete multi-byte sequence at the end of one chunk until the next
// chunk completes it, so characters split across reads come out intact.
//
// A nil body fails with *StreamUnavailableError. Read errors are returned
// together with the text accumulated so far.
func Ingest(body io.Reader, contentType string) (string, error) {
	if body == nil {
		return "", &StreamUnavailableError{}
	}

	limited := &io.LimitedReader{R: body, N: MaxResponseSize + 1}
	decoded := transform.NewReader(limited, decoderFor(contentType))

	var acc strings.Builder
	buf := make([]byte, chunkSize)
	for {
		n, err := decoded.Read(buf)
		acc.Write(buf[:n])
		if limited.N <= 0 {
			return acc.String(), fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, MaxResponseSize)
		}
		if errors.Is(err, io.EOF) {
			return acc.String(), nil
		}
		if err != nil {
			return acc.String(), err
		}
	}
}

// decoderFor picks a streaming decoder from a Content-Type header.
func decoderFor(contentType string) transform.Transformer {
	return encodingFor(contentType).NewDecoder()
}

func encodingFor(contentType string) encoding.Encoding {
	if contentType == "" {
		return unicode.UTF8
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return unicode.UTF8
	}
	charset := strings.TrimSpace(params["charset"])
	if charset == "" {
		return unicode.UTF8
	}
	enc, err := htmlindex.Get(charset)
	if err != nil || enc == nil {
		return unicode.UTF8
	}
	return enc
}
