package currency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type stubSource struct {
	mu    sync.Mutex
	calls int
	err   error
	rate  float64
}

func (s *stubSource) Latest(context.Context) (RateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return RateTable{}, s.err
	}
	return NewRateTable("EUR", map[string]float64{"GBP": s.rate}, StatusLive, "2026-10-16"), nil
}

type memStore struct {
	table RateTable
	ok    bool
	saves int
}

func (m *memStore) Load(context.Context) (RateTable, bool, error) { return m.table, m.ok, nil }

func (m *memStore) Save(_ context.Context, t RateTable, _ time.Duration) error {
	m.table, m.ok = t, true
	m.saves++
	return nil
}

func TestFetchFallsBackOnError(t *testing.T) {
	tb := Fetch(context.Background(), &stubSource{err: errors.New("boom")}, nil)
	if tb.Status() != StatusFallback {
		t.Fatalf("expected fallback table, got %s", tb.Status())
	}
	if Fetch(context.Background(), nil, nil).Status() != StatusFallback {
		t.Fatal("expected fallback for nil source")
	}
}

func TestCacheServesWithinTTL(t *testing.T) {
	now := time.Unix(0, 0)
	src := &stubSource{rate: 0.85}
	c := NewCache(src, WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	first := c.Table(context.Background())
	if first.Status() != StatusLive {
		t.Fatalf("expected live table, got %s", first.Status())
	}
	src.rate = 0.9
	now = now.Add(30 * time.Second)
	if r, _ := c.Table(context.Background()).Rate("GBP"); r != 0.85 {
		t.Fatalf("expected cached rate, got %v", r)
	}
	now = now.Add(time.Minute)
	if r, _ := c.Table(context.Background()).Rate("GBP"); r != 0.9 {
		t.Fatalf("expected refreshed rate, got %v", r)
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 fetches, got %d", src.calls)
	}
}

func TestCacheRefreshHookAndInvalidate(t *testing.T) {
	src := &stubSource{err: errors.New("down")}
	var seen []Status
	c := NewCache(src)
	c.OnRefresh = func(t RateTable) { seen = append(seen, t.Status()) }
	c.Table(context.Background())
	c.Invalidate()
	src.err = nil
	src.rate = 0.8
	c.Table(context.Background())
	if len(seen) != 2 || seen[0] != StatusFallback || seen[1] != StatusLive {
		t.Fatalf("unexpected refresh statuses %v", seen)
	}
}

func TestCacheUsesSnapshotStore(t *testing.T) {
	store := &memStore{}
	src := &stubSource{rate: 0.86}
	c := NewCache(src, WithSnapshotStore(store))
	c.Table(context.Background())
	if store.saves != 1 {
		t.Fatalf("expected live table to be saved, got %d saves", store.saves)
	}

	other := NewCache(&stubSource{err: errors.New("unused")}, WithSnapshotStore(store))
	if r, _ := other.Table(context.Background()).Rate("GBP"); r != 0.86 {
		t.Fatalf("expected shared snapshot rate, got %v", r)
	}
}

func TestCacheDoesNotSaveFallback(t *testing.T) {
	store := &memStore{}
	c := NewCache(&stubSource{err: errors.New("down")}, WithSnapshotStore(store))
	c.Table(context.Background())
	if store.saves != 0 {
		t.Fatalf("fallback table must not be shared, got %d saves", store.saves)
	}
}

func TestCacheConcurrentReaders(t *testing.T) {
	src := &stubSource{rate: 0.87}
	c := NewCache(src)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Table(context.Background()).Rate("GBP"); !ok {
				t.Error("incomplete table")
			}
		}()
	}
	wg.Wait()
	if src.calls != 1 {
		t.Fatalf("expected a single fetch, got %d", src.calls)
	}
}
