package monitoring

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

type recorder struct {
	errs   []error
	tags   []map[string]string
	panics []any
}

func (r *recorder) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recorder) CapturePanic(v any)  { r.panics = append(r.panics, v) }
func (r *recorder) Flush(time.Duration) {}

type stageErr struct{ stage string }

func (e stageErr) Error() string     { return e.stage + " failed" }
func (e stageErr) StageName() string { return e.stage }

func TestCaptureUpstream(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	t.Cleanup(func() { Init(NopMonitor{}) })

	CaptureUpstream(nil, "api")
	CaptureUpstream(fmt.Errorf("plan: %w", stageErr{stage: "directions"}), "api")
	CaptureUpstream(errors.New("plain"), "cli")

	if len(rec.errs) != 2 {
		t.Fatalf("expected 2 captured errors, got %d", len(rec.errs))
	}
	if rec.tags[0]["stage"] != "directions" || rec.tags[0]["component"] != "api" {
		t.Fatalf("unexpected tags %v", rec.tags[0])
	}
	if _, ok := rec.tags[1]["stage"]; ok {
		t.Fatalf("plain error should have no stage tag")
	}
}

func TestInitIgnoresNil(t *testing.T) {
	Init(nil)
	if _, ok := get().(NopMonitor); !ok {
		t.Fatalf("expected NopMonitor, got %T", get())
	}
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	t.Cleanup(func() { Init(NopMonitor{}) })

	var got any
	func() {
		defer func() { got = recover() }()
		defer Recover()
		panic("boom")
	}()
	if got != "boom" {
		t.Fatalf("expected panic to propagate, got %v", got)
	}
	if len(rec.panics) != 1 || rec.panics[0] != "boom" {
		t.Fatalf("unexpected captured panics %v", rec.panics)
	}
}
