package logger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// LogRotator is a file writer that keeps at most maxLines lines.
// Once the file holds twice the limit it is rewritten with the newest lines.
type LogRotator struct {
	file     *os.File
	path     string
	lines    [][]byte
	maxLines int
	mutex    sync.Mutex
}

// NewLogRotator opens path for appending and returns a rotator for it.
func NewLogRotator(path string, maxLines int) (*LogRotator, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	return &LogRotator{
		file:     file,
		path:     path,
		maxLines: maxLines,
	}, nil
}

// Write implements io.Writer.
func (w *LogRotator) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err := w.file.Write(p)
	if err != nil || w.maxLines <= 0 {
		return n, err
	}

	for line := range bytes.SplitSeq(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) > 0 {
			w.lines = append(w.lines, bytes.Clone(line))
		}
	}

	if len(w.lines) >= w.maxLines*2 {
		if err := w.rotate(); err != nil {
			return n, fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	return n, nil
}

// Sync flushes the underlying file.
func (w *LogRotator) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.file.Sync()
}

// rotate truncates the file to the newest maxLines lines.
func (w *LogRotator) rotate() error {
	w.lines = append([][]byte(nil), w.lines[len(w.lines)-w.maxLines:]...)

	content := append(bytes.Join(w.lines, []byte("\n")), '\n')
	if err := os.WriteFile(w.path+".tmp", content, 0o644); err != nil {
		return err
	}

	w.file.Close()

	if err := os.Rename(w.path+".tmp", w.path); err != nil {
		return err
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w.file = file

	return nil
}
