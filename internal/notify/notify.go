// Package notify carries short user-facing notifications (the portal's
// toasts) out of the state containers.
package notify

import (
	"sync" // Locking

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Levels of a notification
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// Notifier shows transient notifications to the user
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Logger writes notifications through logrus
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a Notifier that logs each notification
func NewLogger() *Logger {
	return &Logger{entry: logrus.WithField("component", "notify")}
}

func (l *Logger) Success(msg string) { l.entry.WithField("level_ui", LevelSuccess).Info(msg) }
func (l *Logger) Error(msg string)   { l.entry.WithField("level_ui", LevelError).Error(msg) }
func (l *Logger) Info(msg string)    { l.entry.WithField("level_ui", LevelInfo).Info(msg) }

// Func adapts a function to Notifier
type Func func(level, msg string)

func (f Func) Success(msg string) { f(LevelSuccess, msg) }
func (f Func) Error(msg string)   { f(LevelError, msg) }
func (f Func) Info(msg string)    { f(LevelInfo, msg) }

// Discard drops every notification
var Discard Notifier = Func(func(string, string) {})

// Notification is one recorded notification
type Notification struct {
	Level   string
	Message string
}

// Recorder keeps notifications in memory, for tests and headless callers
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) add(level, msg string) {
	r.mu.Lock()
	r.items = append(r.items, Notification{Level: level, Message: msg})
	r.mu.Unlock()
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }
func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }

// All returns a copy of everything recorded so far
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the most recent notification
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset forgets everything recorded
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}
