// Package monitoring reports unexpected errors to an external service.
package monitoring

import (
	"errors"
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureException(err, tags)
}

// StageError is implemented by errors that name the collaborator call that
// failed.
type StageError interface {
	error
	StageName() string
}

// CaptureUpstream records err tagged with the failing stage when err carries
// one.
func CaptureUpstream(err error, component string) {
	if err == nil {
		return
	}
	tags := map[string]string{"component": component}
	var se StageError
	if errors.As(err, &se) {
		tags["stage"] = se.StageName()
	}
	CaptureException(err, tags)
}

// Recover reports a panic in progress and panics again. It must be deferred
// directly: defer monitoring.Recover().
func Recover() {
	if r := recover(); r != nil {
		m := get()
		m.CapturePanic(r)
		m.Flush(2 * time.Second)
		panic(r)
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	get().Flush(d)
}
