package schedule

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// collector records flushed batches and lets tests wait for them.
type collector struct {
	mu      sync.Mutex
	batches [][]string
	ch      chan []string
}

func newCollector() *collector {
	return &collector{ch: make(chan []string, 16)}
}

func (c *collector) flush(paths []string) {
	c.mu.Lock()
	c.batches = append(c.batches, paths)
	c.mu.Unlock()
	c.ch <- paths
}

func (c *collector) wait(t *testing.T) []string {
	t.Helper()
	select {
	case b := <-c.ch:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for flush")
		return nil
	}
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func TestDebounceCoalescesBursts(t *testing.T) {
	col := newCollector()
	s := New(Config{Window: 20 * time.Millisecond}, col.flush, nil)
	defer s.Stop()

	s.Enqueue([]string{"/html/body/div"})
	s.Enqueue([]string{"/html/body/p"})
	s.Enqueue([]string{"/html/body/span"})

	got := col.wait(t)
	s.Done()
	if len(got) != 3 {
		t.Fatalf("batch size = %d, want 3 (burst coalesced into one flush)", len(got))
	}
	time.Sleep(60 * time.Millisecond)
	if n := col.count(); n != 1 {
		t.Errorf("flush count = %d, want 1", n)
	}
}

func TestDedupKeepsFirstPosition(t *testing.T) {
	col := newCollector()
	s := New(Config{Window: 10 * time.Millisecond}, col.flush, nil)
	defer s.Stop()

	s.Enqueue([]string{"/a", "/b", "/a", "/c", "/b"})
	got := col.wait(t)
	s.Done()

	want := []string{"/a", "/b", "/c"}
	if len(got) != len(want) {
		t.Fatalf("batch = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("batch = %v, want %v", got, want)
		}
	}
}

func TestBatchCapDropsOldest(t *testing.T) {
	col := newCollector()
	s := New(Config{Window: 10 * time.Millisecond, MaxBatch: 3}, col.flush, nil)
	defer s.Stop()

	var paths []string
	for i := 0; i < 7; i++ {
		paths = append(paths, fmt.Sprintf("/p%d", i))
	}
	s.Enqueue(paths)

	got := col.wait(t)
	s.Done()
	if len(got) != 3 {
		t.Fatalf("batch size = %d, want 3", len(got))
	}
	// Newest entries survive.
	want := []string{"/p4", "/p5", "/p6"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("batch = %v, want %v", got, want)
		}
	}
}

func TestNoOverlapWhileInFlight(t *testing.T) {
	col := newCollector()
	s := New(Config{Window: 10 * time.Millisecond, MinInterval: 10 * time.Millisecond}, col.flush, nil)
	defer s.Stop()

	s.Enqueue([]string{"/first"})
	first := col.wait(t)
	if len(first) != 1 || first[0] != "/first" {
		t.Fatalf("first batch = %v", first)
	}

	// While the first flush is still in flight, new work queues but must
	// not flush until Done.
	s.Enqueue([]string{"/second"})
	select {
	case b := <-col.ch:
		t.Fatalf("flush %v overlapped an in-flight flush", b)
	case <-time.After(80 * time.Millisecond):
	}

	s.Done()
	second := col.wait(t)
	s.Done()
	if len(second) != 1 || second[0] != "/second" {
		t.Fatalf("second batch = %v", second)
	}
}

func TestDoneReArmsPendingQueue(t *testing.T) {
	col := newCollector()
	s := New(Config{Window: 10 * time.Millisecond}, col.flush, nil)
	defer s.Stop()

	s.Enqueue([]string{"/a"})
	col.wait(t)
	s.Enqueue([]string{"/b"})
	s.Done()

	got := col.wait(t)
	s.Done()
	if len(got) != 1 || got[0] != "/b" {
		t.Fatalf("re-armed batch = %v, want [/b]", got)
	}
}

func TestStopDropsQueueAndTimer(t *testing.T) {
	col := newCollector()
	s := New(Config{Window: 15 * time.Millisecond}, col.flush, nil)

	s.Enqueue([]string{"/doomed"})
	s.Stop()

	select {
	case b := <-col.ch:
		t.Fatalf("flush %v after Stop", b)
	case <-time.After(60 * time.Millisecond):
	}
	if n := s.Pending(); n != 0 {
		t.Errorf("Pending after Stop = %d, want 0", n)
	}

	// Enqueue after Stop is a no-op.
	s.Enqueue([]string{"/late"})
	if n := s.Pending(); n != 0 {
		t.Errorf("Pending after post-Stop Enqueue = %d, want 0", n)
	}
}

func TestEmptyAndBlankPathsIgnored(t *testing.T) {
	col := newCollector()
	s := New(Config{Window: 10 * time.Millisecond}, col.flush, nil)
	defer s.Stop()

	s.Enqueue(nil)
	s.Enqueue([]string{""})
	select {
	case b := <-col.ch:
		t.Fatalf("unexpected flush %v", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDefaults(t *testing.T) {
	var c Config
	c.defaults()
	if c.Window != 250*time.Millisecond {
		t.Errorf("Window default = %v", c.Window)
	}
	if c.MinInterval != c.Window {
		t.Errorf("MinInterval default = %v", c.MinInterval)
	}
	if c.MaxBatch != 500 {
		t.Errorf("MaxBatch default = %d", c.MaxBatch)
	}
}
