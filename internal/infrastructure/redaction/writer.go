package redaction

import (
	"io"
	"sync"
)

// Writer wraps an io.Writer and redacts all data before writing. It is
// used for log output, which may carry module stderr.
// Thread-safe: can be used concurrently by multiple goroutines.
type Writer struct {
	underlying io.Writer
	redactor   *Redactor
	mu         sync.Mutex
}

// NewWriter creates a redacting writer. A nil redactor passes data through.
func NewWriter(w io.Writer, r *Redactor) *Writer {
	return &Writer{
		underlying: w,
		redactor:   r,
	}
}

// Write implements io.Writer, redacting data before passing to underlying writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	if w.redactor == nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.underlying.Write(p)
	}

	redacted := []byte(w.redactor.ScrubString(string(p)))

	w.mu.Lock()
	defer w.mu.Unlock()
	n, err = w.underlying.Write(redacted)

	// io.Writer callers expect len(p) even when the redacted length differs
	if err == nil {
		n = len(p)
	}

	return n, err
}
