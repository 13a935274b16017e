package publisher

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"time"
)

// buildPack renders the published assets as a tar.gz archive rooted at the
// instance folder, so unpacking yields <name>-<instance>/<asset> paths.
// Header timestamps are zeroed to keep pack bytes deterministic for
// unchanged inputs.
func buildPack(folder string, assets []*asset) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, item := range assets {
		header := &tar.Header{
			Name:    folder + "/" + item.name,
			Mode:    0o644,
			Size:    int64(len(item.data)),
			ModTime: time.Unix(0, 0),
		}
		if err := tw.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("pack header %s: %w", item.name, err)
		}
		if _, err := tw.Write(item.data); err != nil {
			return nil, fmt.Errorf("pack write %s: %w", item.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
