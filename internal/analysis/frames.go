package analysis

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrNoFrames is returned when an archive contains no JPEG entries.
var ErrNoFrames = fmt.Errorf("no JPEG frames found in archive")

// ExtractFramesBytes is ExtractFrames over an in-memory archive.
func ExtractFramesBytes(data []byte) ([][]byte, error) {
	return ExtractFrames(bytes.NewReader(data), int64(len(data)))
}

// ExtractFrames reads every .jpg entry from a ZIP archive in name order and
// returns the raw JPEG bytes. The capture page numbers its entries
// (frame_000.jpg, frame_001.jpg, ...) so lexical order is capture order.
func ExtractFrames(r io.ReaderAt, size int64) ([][]byte, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open frame archive: %w", err)
	}

	var entries []*zip.File
	for _, f := range archive.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(f.Name), ".jpg") {
			continue
		}
		entries = append(entries, f)
	}
	if len(entries) == 0 {
		return nil, ErrNoFrames
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	frames := make([][]byte, 0, len(entries))
	for _, entry := range entries {
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open frame %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", entry.Name, err)
		}
		frames = append(frames, data)
	}

	return frames, nil
}
