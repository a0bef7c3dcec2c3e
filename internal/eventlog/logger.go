package eventlog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Logger appends structured records to a JSONL sink, one self-contained
// line per record. Writes happen on a background goroutine so logging
// never blocks the coordinating flow; when the buffer is full the record
// is dropped and counted rather than stalling hook execution.
type Logger struct {
	records      chan Record
	file         *os.File
	droppedCount atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

// bufferSize bounds the number of in-flight records before drops begin.
const bufferSize = 256

// New creates a logger appending to the given path, creating parent
// directories as needed. An empty path returns a no-op logger.
func New(path string) (*Logger, error) {
	if path == "" {
		return &Logger{}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := &Logger{
		records: make(chan Record, bufferSize),
		file:    f,
		done:    make(chan struct{}),
	}
	go l.writeLoop()
	return l, nil
}

// Nop returns a no-op logger for testing or when logging is disabled.
func Nop() *Logger {
	return &Logger{}
}

// Append queues a record for writing. If the record has no timestamp the
// current time is stamped on. Safe to call on a no-op logger.
func (l *Logger) Append(rec Record) {
	if l == nil || l.records == nil {
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	// Try immediate send first.
	select {
	case l.records <- rec:
		return
	default:
	}

	// Buffer full: give the writer a short chance to drain, then drop.
	select {
	case l.records <- rec:
	case <-time.After(100 * time.Millisecond):
		count := l.droppedCount.Add(1)
		if count%10 == 1 { // Log every 10th drop to avoid spam
			log.Printf("[eventlog] WARNING: record buffer full, dropped record (total dropped: %d): type=%s", count, rec.Type)
		}
	}
}

// DroppedCount returns the total number of records dropped so far.
func (l *Logger) DroppedCount() uint64 {
	return l.droppedCount.Load()
}

// writeLoop drains the record channel into the sink. Sink write failures
// are swallowed: logging is best-effort and must never abort execution.
func (l *Logger) writeLoop() {
	defer close(l.done)
	for rec := range l.records {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		data = append(data, '\n')
		l.file.Write(data)
	}
	l.file.Sync()
}

// Close flushes queued records and closes the sink. Safe to call on a
// no-op logger.
func (l *Logger) Close() error {
	if l == nil || l.records == nil {
		return nil
	}
	l.closeOnce.Do(func() {
		close(l.records)
	})
	<-l.done
	return l.file.Close()
}
