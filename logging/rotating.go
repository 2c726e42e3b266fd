// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// rotatingWriter appends to a file and rotates it when the next write
// would push it past maxBytes. Rotation renames path to path.1, shifting
// older files up, and keeps at most maxFiles rotated copies.
type rotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	maxFiles int
	f        *os.File
	size     int64
}

// NewRotating returns a Logger writing to a size-rotated file. A
// maxBytes <= 0 defaults to 10 MiB, a maxFiles <= 0 keeps one rotated
// copy.
func NewRotating(path string, maxBytes int64, maxFiles int, level Level) (Logger, error) {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	if maxFiles <= 0 {
		maxFiles = 1
	}
	w := &rotatingWriter{path: path, maxBytes: maxBytes, maxFiles: maxFiles}
	if err := w.open(); err != nil {
		return nil, err
	}
	return &writerLogger{w: w, level: level, clock: time.Now}, nil
}

func (w *rotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open %s: %w", w.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("logging: stat %s: %w", w.path, err)
	}
	w.f = f
	w.size = info.Size()
	return nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.f.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *rotatingWriter) rotate() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("logging: close for rotation: %w", err)
	}
	// Shift path.N-1 -> path.N, dropping the oldest.
	for i := w.maxFiles; i >= 2; i-- {
		older := fmt.Sprintf("%s.%d", w.path, i-1)
		newer := fmt.Sprintf("%s.%d", w.path, i)
		if _, err := os.Stat(older); err == nil {
			_ = os.Rename(older, newer)
		}
	}
	if err := os.Rename(w.path, w.path+".1"); err != nil {
		return fmt.Errorf("logging: rotate %s: %w", w.path, err)
	}
	return w.open()
}
