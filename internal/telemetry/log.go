package telemetry

import (
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const defaultLogCapacity = 1000

// Entry is one timestamped lifecycle event for an order.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	OrderID string    `json:"order_id,omitempty"`
	Message string    `json:"message"`
}

// Log is a capped, newest-first ring of order lifecycle entries, mirrored to
// the process logger at matching severity.
type Log struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = defaultLogCapacity
	}
	return &Log{capacity: capacity}
}

func (l *Log) Debug(orderID, msg string)   { l.record(LevelDebug, orderID, msg) }
func (l *Log) Info(orderID, msg string)    { l.record(LevelInfo, orderID, msg) }
func (l *Log) Warning(orderID, msg string) { l.record(LevelWarning, orderID, msg) }
func (l *Log) Error(orderID, msg string)   { l.record(LevelError, orderID, msg) }

func (l *Log) record(level Level, orderID, msg string) {
	entry := Entry{Time: time.Now(), Level: level, OrderID: orderID, Message: msg}

	l.mu.Lock()
	// newest first; oldest entries fall off the end once full
	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
	l.mu.Unlock()

	attrs := []any{}
	if orderID != "" {
		attrs = append(attrs, "order_id", orderID)
	}
	switch level {
	case LevelDebug:
		slog.Debug(msg, attrs...)
	case LevelWarning:
		slog.Warn(msg, attrs...)
	case LevelError:
		slog.Error(msg, attrs...)
	default:
		slog.Info(msg, attrs...)
	}
}

// Entries returns a snapshot of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ForOrder returns the entries recorded for one order, newest first.
func (l *Log) ForOrder(orderID string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out
}

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
