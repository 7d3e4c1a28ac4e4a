package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrNotPDF = errors.New("only .pdf files are accepted")

// UploadDir resolves the directory uploads are stored in before ingestion.
func UploadDir(dirName string) string {
	if filepath.IsAbs(dirName) {
		return dirName
	}
	return filepath.Join(os.TempDir(), dirName)
}

func IsPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// SaveUpload copies r into a uniquely named file under dir.
func SaveUpload(dir string, fileName string, r io.Reader) (Upload, error) {
	if !IsPDFName(fileName) {
		return Upload{}, ErrNotPDF
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Upload{}, fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "upload-*.pdf")
	if err != nil {
		return Upload{}, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return Upload{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return Upload{}, fmt.Errorf("close upload file: %w", err)
	}
	return Upload{Path: f.Name(), FileName: filepath.Base(fileName)}, nil
}

// CleanupStaleUploads removes leftovers of a previous process older than maxAge.
func CleanupStaleUploads(dir string, maxAge time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || time.Since(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	if removed > 0 {
		logger.Info("Removed stale uploads", "dir", dir, "count", removed)
	}
	return removed
}
