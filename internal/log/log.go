// Package log is a small leveled key/value logger over the standard
// library logger.
//
// Lines look like:
//
//	2026-01-01T00:00:00.000000Z [INFO] display ready size=135x240
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	mu       sync.Mutex
	logger   = stdlog.New(os.Stderr, "", 0)
	minLevel = LevelInfo
	now      = time.Now
)

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelDebug, LevelInfo, LevelError:
		return l, nil
	case "":
		return LevelInfo, nil
	}
	return "", fmt.Errorf("log: unknown level %q", s)
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	minLevel = l
	mu.Unlock()
}

// SetOutput redirects log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger.SetOutput(w)
	mu.Unlock()
}

func Debug(msg string, kv ...any) {
	write(LevelDebug, msg, kv)
}

func Info(msg string, kv ...any) {
	write(LevelInfo, msg, kv)
}

// Error logs msg with err as the first key/value pair.
func Error(msg string, err error, kv ...any) {
	write(LevelError, msg, append([]any{"err", err}, kv...))
}

func write(level Level, msg string, kv []any) {
	mu.Lock()
	defer mu.Unlock()
	if rank(level) < rank(minLevel) {
		return
	}
	var b strings.Builder
	b.WriteString(now().UTC().Format("2006-01-02T15:04:05.000000Z07:00"))
	b.WriteString(" [")
	b.WriteString(string(level))
	b.WriteString("] ")
	b.WriteString(msg)
	// Pairs whose key is not a string are skipped, as is a trailing key.
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, kv[i+1])
	}
	logger.Println(b.String())
}

func rank(l Level) int {
	switch l {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelError:
		return 2
	}
	// Unknown levels log everything.
	return 0
}
