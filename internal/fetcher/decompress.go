package fetcher

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// decompress decodes a response body according to its Content-Encoding.
// Accept-Encoding only advertises gzip/deflate, but some origins send zstd
// or brotli regardless, so every known decoder is available as a fallback.
// Decoding never fails the fetch: if nothing applies the raw bytes are
// returned as-is.
func decompress(raw []byte, encoding string) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw
	case "gzip":
		if out, err := gunzip(raw); err == nil {
			return out
		}
	case "deflate":
		if out, err := inflate(raw); err == nil {
			return out
		}
	case "zstd":
		if out, err := unzstd(raw); err == nil {
			return out
		}
	case "br":
		if out, err := unbrotli(raw); err == nil {
			return out
		}
	}
	return decompressAny(raw)
}

// decompressAny tries every decoder in turn for mislabelled or unknown
// encodings, degrading to the raw bytes when none of them apply.
func decompressAny(raw []byte) []byte {
	for _, decode := range []func([]byte) ([]byte, error){gunzip, inflate, unzstd, unbrotli} {
		if out, err := decode(raw); err == nil {
			return out
		}
	}
	return raw
}

func gunzip(raw []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func inflate(raw []byte) ([]byte, error) {
	// Servers disagree on whether "deflate" means zlib-wrapped or raw.
	if r, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
		defer r.Close()
		if out, err := io.ReadAll(r); err == nil {
			return out, nil
		}
	}
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	return io.ReadAll(r)
}

func unzstd(raw []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func unbrotli(raw []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
}
