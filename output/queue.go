// Package output is a block-structured diagnostics queue: callers
// push entries tagged with a display level and a step-nesting depth,
// and Flush drains them in FIFO order through logrus, mirroring the
// buffer-then-flush structure of NOMAD's OutputQueue.
package output

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Level selects how prominently an entry should be displayed, loosely
// NOMAD's DISPLAY_DEGREE.
type Level uint8

const (
	LevelNormal Level = iota
	LevelInfo
	LevelDebug
	LevelError
)

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.InfoLevel
	}
}

// Entry is one buffered message, tagged with the block depth it was
// produced at and any structured fields worth carrying alongside it.
type Entry struct {
	Level   Level
	Depth   int
	Message string
	Fields  logrus.Fields
}

// Queue buffers Entries until Flush, so a whole iteration's worth of
// diagnostics can be produced before any of it is displayed (letting
// a caller discard the buffer entirely for a silent iteration).
type Queue struct {
	mu      sync.Mutex
	entries []Entry
	depth   int
}

// New returns an empty Queue.
func New() *Queue { return &Queue{} }

// StartBlock increments the nesting depth new entries are tagged
// with, returning the depth entered.
func (q *Queue) StartBlock() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.depth++
	return q.depth
}

// EndBlock decrements the nesting depth, never going below zero.
func (q *Queue) EndBlock() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.depth > 0 {
		q.depth--
	}
}

// Add buffers one entry at the queue's current depth.
func (q *Queue) Add(level Level, msg string, fields logrus.Fields) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, Entry{Level: level, Depth: q.depth, Message: msg, Fields: fields})
}

// Len returns the number of buffered, unflushed entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Flush drains every buffered entry in FIFO order through logrus and
// empties the queue.
func (q *Queue) Flush(log *logrus.Logger) {
	q.mu.Lock()
	pending := q.entries
	q.entries = nil
	q.mu.Unlock()

	for _, e := range pending {
		fields := logrus.Fields{"depth": e.Depth}
		for k, v := range e.Fields {
			fields[k] = v
		}
		log.WithFields(fields).Log(e.Level.logrusLevel(), e.Message)
	}
}

// Discard empties the queue without displaying anything, for a
// MainThreadInfo.StopReason of "" (natural exhaustion without an
// interesting event to report).
func (q *Queue) Discard() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
}
