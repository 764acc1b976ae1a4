package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"time"
)

// asyncWriter fans log lines out to several sinks through buffered
// writers. Writes only fill the buffers; a background ticker flushes
// them, so a crash loses at most flushInterval worth of lines.
type asyncWriter struct {
	mu    sync.Mutex
	sinks []*bufio.Writer
	err   error

	done chan struct{}
	once sync.Once
}

const flushInterval = 500 * time.Millisecond

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{done: make(chan struct{})}
	for _, out := range writers {
		if out == nil {
			continue
		}
		w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
	}
	go w.flushLoop()
	return w
}

func (w *asyncWriter) flushLoop() {
	t := time.NewTicker(flushInterval)
	defer t.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-t.C:
			_ = w.Flush()
		}
	}
}

// Write buffers the payload for every sink. The first write error sticks
// and fails all subsequent calls.
func (w *asyncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

// Flush pushes buffered content out to the underlying sinks.
func (w *asyncWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close stops the flush loop and drains the buffers.
func (w *asyncWriter) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.Flush()
}
