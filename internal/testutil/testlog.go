// Package testlog captures logx output in memory for assertions.
package testlog

import (
	"slices"
	"sync"

	"parcel-service/internal/logx"
)

// Entry is one captured log call. Fields include those attached via With.
type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Field returns the value of key, or nil when absent.
func (e Entry) Field(key string) any {
	i := slices.IndexFunc(e.Fields, func(f logx.Field) bool { return f.Key == key })
	if i < 0 {
		return nil
	}
	return e.Fields[i].Value
}

// Recorder is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty Recorder.
func New() *Recorder { return &Recorder{} }

// Logger returns a logx.Logger writing into r.
func (r *Recorder) Logger() logx.Logger { return scoped{rec: r} }

// Entries returns a snapshot of everything captured so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// Find returns the first entry logged with msg.
func (r *Recorder) Find(msg string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.entries, func(e Entry) bool { return e.Msg == msg })
	if i < 0 {
		return Entry{}, false
	}
	return r.entries[i], true
}

func (r *Recorder) record(level, msg string, scope, fields []logx.Field) {
	all := make([]logx.Field, 0, len(scope)+len(fields))
	all = append(append(all, scope...), fields...)

	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Fields: all})
	r.mu.Unlock()
}

type scoped struct {
	rec   *Recorder
	scope []logx.Field
}

func (s scoped) Debug(msg string, f ...logx.Field) { s.rec.record("debug", msg, s.scope, f) }
func (s scoped) Info(msg string, f ...logx.Field)  { s.rec.record("info", msg, s.scope, f) }
func (s scoped) Warn(msg string, f ...logx.Field)  { s.rec.record("warn", msg, s.scope, f) }
func (s scoped) Error(msg string, f ...logx.Field) { s.rec.record("error", msg, s.scope, f) }

func (s scoped) With(f ...logx.Field) logx.Logger {
	return scoped{rec: s.rec, scope: append(slices.Clone(s.scope), f...)}
}

func (scoped) Sync() error { return nil }
