package parser

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pierrec/lz4"
)

// decompress unwraps .gz, .lz4 and .zip payloads and returns the inner
// content, its file name and the compression used.
func decompress(data []byte, name string) ([]byte, string, string, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "", "", fmt.Errorf("open gzip: %w", err)
		}
		defer gr.Close()
		out, err := io.ReadAll(gr)
		if err != nil {
			return nil, "", "", fmt.Errorf("read gzip: %w", err)
		}
		return out, name[:len(name)-len(".gz")], "gzip", nil
	case strings.HasSuffix(lower, ".lz4"):
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, "", "", fmt.Errorf("read lz4: %w", err)
		}
		return out, name[:len(name)-len(".lz4")], "lz4", nil
	case strings.HasSuffix(lower, ".zip"):
		return unzipLargest(data)
	}
	return data, name, "", nil
}

// unzipLargest extracts the largest member that a registered parser accepts.
func unzipLargest(data []byte) ([]byte, string, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", "", fmt.Errorf("open zip: %w", err)
	}
	var largest *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || lookup(f.Name) == nil {
			continue
		}
		if largest == nil || f.UncompressedSize64 > largest.UncompressedSize64 {
			largest = f
		}
	}
	if largest == nil {
		return nil, "", "", fmt.Errorf("%w: zip archive has no csv/tsv/xlsx member", ErrUnsupported)
	}
	rc, err := largest.Open()
	if err != nil {
		return nil, "", "", fmt.Errorf("open %s: %w", largest.Name, err)
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", "", fmt.Errorf("read %s: %w", largest.Name, err)
	}
	return out, path.Base(largest.Name), "zip", nil
}
