package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrTooLarge is returned when a download exceeds Options.MaxSize
var ErrTooLarge = errors.New("download exceeds size limit")

// Options configures the download behavior
type Options struct {
	MaxSize      int64        // Maximum file size in bytes (0 = no limit)
	ProgressFunc ProgressFunc // Optional progress callback
}

// ProgressFunc is called during download with the bytes written so far
type ProgressFunc func(written int64)

// DefaultOptions returns default download options
func DefaultOptions() Options {
	return Options{
		MaxSize: 500 * 1024 * 1024, // 500MB default max
	}
}

// Fetcher streams a remote artifact into dst
type Fetcher func(ctx context.Context, dst io.Writer) (int64, error)

// ToFile writes the fetched artifact to dir/name. The data lands in a
// temporary file first and is renamed into place only after fetch succeeds,
// so a failed download never leaves a partial file behind.
func ToFile(ctx context.Context, dir, name string, opts Options, fetch Fetcher) (string, int64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	var dst io.Writer = tempFile
	if opts.ProgressFunc != nil {
		dst = &progressWriter{writer: dst, callback: opts.ProgressFunc}
	}
	if opts.MaxSize > 0 {
		dst = &limitedWriter{writer: dst, remaining: opts.MaxSize}
	}

	written, err := fetch(ctx, dst)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return "", 0, err
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", 0, fmt.Errorf("failed to move download into place: %w", err)
	}

	return path, written, nil
}

// CleanupPartialFiles removes leftover temp files in dir older than maxAge
func CleanupPartialFiles(dir string, maxAge time.Duration) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, ".*.part"))
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	var removed int

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) && strings.HasSuffix(file, ".part") {
			if err := os.Remove(file); err == nil {
				removed++
			}
		}
	}

	return removed, nil
}

// progressWriter wraps a writer to report progress
type progressWriter struct {
	writer   io.Writer
	written  int64
	callback ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	if n > 0 {
		pw.written += int64(n)
		pw.callback(pw.written)
	}
	return n, err
}

// limitedWriter fails once more than remaining bytes are written
type limitedWriter struct {
	writer    io.Writer
	remaining int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > lw.remaining {
		return 0, ErrTooLarge
	}
	n, err := lw.writer.Write(p)
	lw.remaining -= int64(n)
	return n, err
}
