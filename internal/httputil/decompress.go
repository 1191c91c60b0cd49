package httputil

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// AcceptEncoding is the value llmcast sends on outgoing requests.
// Transparent stdlib decompression is disabled once Accept-Encoding is
// set explicitly, so responses must be decompressed by the caller.
const AcceptEncoding = "gzip, br"

// DecompressedReader wraps body according to the response
// Content-Encoding header. The returned ReadCloser must be closed by
// the caller; closing it does not close the underlying body.
func DecompressedReader(body io.Reader, contentEncoding string) (io.ReadCloser, error) {
	switch contentEncoding {
	case "gzip":
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return gz, nil
	case "br":
		return io.NopCloser(brotli.NewReader(body)), nil
	case "", "identity":
		return io.NopCloser(body), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", contentEncoding)
	}
}
