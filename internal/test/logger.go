package test

import (
	"fmt"
	"sync"

	"github.com/bluenviron/mj2wrap/internal/logger"
)

type nilLogger struct{}

func (nilLogger) Log(logger.Level, string, ...any) {}

// NilLogger drops every entry.
var NilLogger logger.Writer = nilLogger{}

// Entry is an entry kept by Recorder.
type Entry struct {
	Level   logger.Level
	Message string
}

// Recorder is a logger.Writer that keeps entries in memory.
type Recorder struct {
	mutex   sync.Mutex
	entries []Entry
}

// Log implements logger.Writer.
func (r *Recorder) Log(level logger.Level, format string, args ...any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.entries = append(r.entries, Entry{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// Entries returns the entries logged so far.
func (r *Recorder) Entries() []Entry {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]Entry(nil), r.entries...)
}
