// Package logger provides the leveled message sink used while parsing and
// mutating attribute resources. Records never change control flow; callers
// inspect them after the fact.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Severity represents the severity level of a record
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	case "fatal":
		*s = Fatal
	default:
		*s = Error
	}
	return nil
}

// Record is a single logged message
type Record struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String formats the record as "severity: message"
func (r Record) String() string {
	return r.Severity.String() + ": " + r.Message
}

// Logger accumulates records and mirrors them to an optional zap logger
type Logger struct {
	records []Record
	zap     *zap.Logger
}

// New creates a logger that only accumulates records
func New() *Logger {
	return &Logger{}
}

// NewWithZap creates a logger that also forwards every record to z
func NewWithZap(z *zap.Logger) *Logger {
	return &Logger{zap: z}
}

// Infof records an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.add(Info, fmt.Sprintf(format, args...))
}

// Warnf records a warning
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.add(Warning, fmt.Sprintf(format, args...))
}

// Errorf records an error
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.add(Error, fmt.Sprintf(format, args...))
}

// Fatalf records a document-fatal error. It does not exit.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.add(Fatal, fmt.Sprintf(format, args...))
}

func (l *Logger) add(sev Severity, msg string) {
	l.records = append(l.records, Record{Severity: sev, Message: msg})
	if l.zap == nil {
		return
	}
	switch sev {
	case Info:
		l.zap.Info(msg)
	case Warning:
		l.zap.Warn(msg)
	default:
		l.zap.Error(msg, zap.Stringer("severity", sev))
	}
}

// Append copies all records from other into l
func (l *Logger) Append(other *Logger) {
	if other == nil {
		return
	}
	for _, r := range other.records {
		l.add(r.Severity, r.Message)
	}
}

// Records returns a copy of all records
func (l *Logger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Count returns the number of records with at least the given severity
func (l *Logger) Count(min Severity) int {
	n := 0
	for _, r := range l.records {
		if r.Severity >= min {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error or fatal record was logged
func (l *Logger) HasErrors() bool {
	return l.Count(Error) > 0
}

// Reset discards all records
func (l *Logger) Reset() {
	l.records = nil
}

// String joins all records, one per line
func (l *Logger) String() string {
	var b strings.Builder
	for i, r := range l.records {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.String())
	}
	return b.String()
}
