package errctx

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"
)

var (
	mu       sync.Mutex
	minLevel Level = LevelDebug
	sink     Sink
	owned    *fileSink // non-nil when sink is the package-managed default
	hist     ring
)

func init() {
	s, err := newDefaultSink("error.log")
	if err != nil {
		// Falling back to a nil sink would silently drop every
		// Record; stderr keeps the system observable even when
		// the working directory is not writable.
		sink = SinkFunc(func(rec Record) {
			fmt.Fprintf(os.Stderr, "[%s] [%s] [%s:%d] %s: (code=%d) %s\n",
				nowStamp(), rec.Level, rec.File, rec.Line, rec.Function, rec.Code, rec.Message)
		})
		return
	}
	sink, owned = s, s
}

// Init (re)installs the default file sink, the state every process
// starts with. Applications embedding limdy normally never need to
// call this directly; it exists so tests can restore a clean slate.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	if owned != nil {
		owned.Close()
	}
	s, err := newDefaultSink("error.log")
	if err != nil {
		return err
	}
	sink, owned = s, s
	minLevel = LevelDebug
	hist.reset()
	return nil
}

// Cleanup releases the default sink's underlying file descriptor, if
// one is owned by the package. It does not reset history or level,
// mirroring error_cleanup()'s narrow scope in the original design.
func Cleanup() {
	mu.Lock()
	defer mu.Unlock()
	if owned != nil {
		owned.Close()
		owned = nil
	}
}

// SetHandler installs a custom Sink, replacing the default file
// sink. Passing nil restores nothing; callers that want the default
// back should call Init.
func SetHandler(s Sink) {
	mu.Lock()
	defer mu.Unlock()
	if s != nil {
		sink = s
	}
}

// SetMinLevel filters out Records below level from both the Sink and
// the in-memory history.
func SetMinLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// Log records an event at the given code and level, attributing it
// to the caller's file, line and function, dispatches it to the
// active Sink, and returns a Context carrying it as the last error
// for whoever reads LastError(ctx) next.
func Log(ctx context.Context, code Code, level Level, format string, args ...interface{}) context.Context {
	file, line, fn := caller(2)
	rec := Record{
		Code:     code,
		Level:    level,
		File:     file,
		Line:     line,
		Function: fn,
		Message:  fmt.Sprintf(format, args...),
	}

	mu.Lock()
	if level >= minLevel {
		hist.push(rec)
		if sink != nil {
			sink.Handle(rec)
		}
	}
	mu.Unlock()

	return WithLastError(ctx, rec)
}

// History returns every retained Record, oldest first, up to the
// package's ring-buffer capacity.
func History() []Record {
	mu.Lock()
	defer mu.Unlock()
	return hist.snapshot()
}

func caller(skip int) (file string, line int, function string) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", 0, "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return file, line, "unknown"
	}
	return file, line, fn.Name()
}

func nowStamp() string {
	return time.Now().Format("2006-01-02T15:04:05.999Z07:00")
}
