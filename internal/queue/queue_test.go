package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nattery/edge-bridge/internal/accessor"
	"github.com/nattery/edge-bridge/internal/registry"
	"github.com/nattery/edge-bridge/internal/transport"
)

// fakeTransport is an in-memory stand-in for transport.Transport, letting
// queue tests exercise the dispatcher without a real serial port.
type fakeTransport struct {
	mu        sync.Mutex
	words     map[uint16]uint16
	connected bool
	failNext  bool
	delay     time.Duration
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{words: make(map[uint16]uint16), connected: true}
}

func (f *fakeTransport) ReadHolding(ctx context.Context, addr, count uint16) ([]uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint16, count)
	for i := range out {
		out[i] = f.words[addr+uint16(i)]
	}
	return out, nil
}

func (f *fakeTransport) ReadInput(ctx context.Context, addr, count uint16) ([]uint16, error) {
	return f.ReadHolding(ctx, addr, count)
}

func (f *fakeTransport) WriteHolding(ctx context.Context, addr, value uint16) (bool, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return false, &fakeErr{}
	}
	f.words[addr] = value
	return true, nil
}

func (f *fakeTransport) IsConnected() bool           { return f.connected }
func (f *fakeTransport) ConsecutiveFailures() uint32 { return 0 }

type fakeErr struct{}

func (e *fakeErr) Error() string { return "simulated write failure" }

func newTestQueue(t *testing.T, ft *fakeTransport) *Queue {
	t.Helper()
	cat := registry.NewCatalog()
	acc := accessor.New(cat, ft, transport.DecodeValue, transport.EncodeU16OrI16)
	return New(Config{MaxQueueSize: 10, DefaultTimeoutSecs: 1, DefaultMaxAttempts: 2}, acc)
}

func TestInsertByPriorityOrdering(t *testing.T) {
	q := newTestQueue(t, newFakeTransport())

	ids := []string{}
	for _, p := range []string{"normal", "low", "critical", "normal", "high"} {
		id, err := q.Submit(CommandSpec{CommandType: "read_register", Priority: p, Data: map[string]any{"register": "battery_soc"}})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		ids = append(ids, id)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	want := []Priority{Critical, High, Normal, Normal, Low}
	if len(q.pending) != len(want) {
		t.Fatalf("pending length = %d, want %d", len(q.pending), len(want))
	}
	for i, p := range want {
		if q.pending[i].Priority != p {
			t.Errorf("pending[%d].Priority = %v, want %v", i, q.pending[i].Priority, p)
		}
	}
	// The two "normal" submissions (ids[0] and ids[3]) must keep their
	// relative order within the band.
	if q.pending[2].ID != ids[0] || q.pending[3].ID != ids[3] {
		t.Errorf("normal band did not preserve FIFO order")
	}
}

func TestSubmitRejectsWhenFull(t *testing.T) {
	q := newTestQueue(t, newFakeTransport())
	q.cfg.MaxQueueSize = 1

	if _, err := q.Submit(CommandSpec{CommandType: "read_register", Data: map[string]any{"register": "battery_soc"}}); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := q.Submit(CommandSpec{CommandType: "read_register", Data: map[string]any{"register": "battery_soc"}}); err == nil {
		t.Fatal("expected ErrQueueFull on second Submit")
	}
}

func TestCancelRemovesFromPending(t *testing.T) {
	q := newTestQueue(t, newFakeTransport())
	id, _ := q.Submit(CommandSpec{CommandType: "read_register", Data: map[string]any{"register": "battery_soc"}})

	if !q.Cancel(id) {
		t.Fatal("Cancel returned false for pending command")
	}
	snap, ok := q.StatusOf(id)
	if !ok {
		t.Fatal("StatusOf: command missing from history")
	}
	if snap.Status != Cancelled {
		t.Errorf("Status = %v, want Cancelled", snap.Status)
	}

	qs := q.QueueStatus()
	if qs.PendingCount != 0 {
		t.Errorf("PendingCount = %d, want 0", qs.PendingCount)
	}
}

func TestClearCancelsAllPending(t *testing.T) {
	q := newTestQueue(t, newFakeTransport())
	for i := 0; i < 3; i++ {
		q.Submit(CommandSpec{CommandType: "read_register", Data: map[string]any{"register": "battery_soc"}})
	}

	n := q.Clear()
	if n != 3 {
		t.Errorf("Clear returned %d, want 3", n)
	}
	if qs := q.QueueStatus(); qs.PendingCount != 0 {
		t.Errorf("PendingCount after Clear = %d, want 0", qs.PendingCount)
	}
}

func TestDispatchCompletesReadRegister(t *testing.T) {
	ft := newFakeTransport()
	ft.words[3030] = 77
	q := newTestQueue(t, ft)

	id, _ := q.Submit(CommandSpec{CommandType: "read_register", Priority: "high", Data: map[string]any{"register": "battery_soc"}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go q.Run(ctx)

	waitForTerminal(t, q, id)

	snap, _ := q.StatusOf(id)
	if snap.Status != Completed {
		t.Fatalf("Status = %v, want Completed (err=%s)", snap.Status, snap.Error)
	}
	if snap.Result != float64(77) {
		t.Errorf("Result = %v (%T), want 77", snap.Result, snap.Result)
	}
}

func TestDispatchFailsWhenAttemptsExhausted(t *testing.T) {
	ft := newFakeTransport()
	ft.failNext = true
	q := newTestQueue(t, ft)
	q.cfg.DefaultMaxAttempts = 1

	id, _ := q.Submit(CommandSpec{CommandType: "write_register", Priority: "high", Data: map[string]any{"register": "enable_charge", "value": float64(1)}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go q.Run(ctx)

	waitForTerminal(t, q, id)

	snap, _ := q.StatusOf(id)
	if snap.Status != Failed {
		t.Fatalf("Status = %v, want Failed", snap.Status)
	}
	if snap.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1 (bounded by MaxAttempts)", snap.Attempts)
	}
}

// TestRetryReinsertsAtTailOfBand submits a failing-once command A and a
// same-priority command B: A's retry must not leapfrog B, so B reaches a
// terminal state before A does.
func TestRetryReinsertsAtTailOfBand(t *testing.T) {
	ft := newFakeTransport()
	ft.failNext = true
	q := newTestQueue(t, ft)

	var mu sync.Mutex
	var order []string
	q.OnResponse(func(id string, success bool, result any, errMsg string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, id)
	})

	idA, _ := q.Submit(CommandSpec{CommandType: "write_register", Data: map[string]any{"register": "enable_charge", "value": float64(1)}})
	idB, _ := q.Submit(CommandSpec{CommandType: "write_register", Data: map[string]any{"register": "enable_discharge", "value": float64(1)}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go q.Run(ctx)

	waitForTerminal(t, q, idA)
	waitForTerminal(t, q, idB)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != idB || order[1] != idA {
		t.Fatalf("terminal order = %v, want [%s %s] (retry of A must not leapfrog B)", order, idB, idA)
	}

	snap, _ := q.StatusOf(idA)
	if snap.Status != Completed {
		t.Fatalf("A Status = %v, want Completed after one retry", snap.Status)
	}
	if snap.Attempts != 2 {
		t.Errorf("A Attempts = %d, want 2 (one failed dispatch + one retry)", snap.Attempts)
	}
}

func TestDispatchTimesOut(t *testing.T) {
	ft := newFakeTransport()
	ft.delay = 500 * time.Millisecond
	q := newTestQueue(t, ft)
	q.cfg.DefaultTimeoutSecs = 1

	id, _ := q.Submit(CommandSpec{CommandType: "write_register", Priority: "high", TimeoutSecs: 1, Data: map[string]any{"register": "enable_charge", "value": float64(1)}})
	// force a shorter timeout than the transport delay
	q.mu.Lock()
	q.pending[0].TimeoutSecs = 0
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go q.Run(ctx)

	waitForTerminal(t, q, id)

	snap, _ := q.StatusOf(id)
	if snap.Status != TimedOut {
		t.Fatalf("Status = %v, want TimedOut", snap.Status)
	}
}

func TestOnResponseFiresOnTerminalOutcomes(t *testing.T) {
	ft := newFakeTransport()
	ft.words[3030] = 42
	q := newTestQueue(t, ft)

	var mu sync.Mutex
	var gotID string
	var gotSuccess bool
	q.OnResponse(func(id string, success bool, result any, errMsg string) {
		mu.Lock()
		defer mu.Unlock()
		gotID, gotSuccess = id, success
	})

	id, _ := q.Submit(CommandSpec{CommandType: "read_register", Priority: "high", Data: map[string]any{"register": "battery_soc"}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go q.Run(ctx)

	waitForTerminal(t, q, id)

	mu.Lock()
	defer mu.Unlock()
	if gotID != id || !gotSuccess {
		t.Errorf("OnResponse callback got id=%q success=%v, want id=%q success=true", gotID, gotSuccess, id)
	}
}

func waitForTerminal(t *testing.T, q *Queue, id string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, ok := q.StatusOf(id)
		if ok && snap.Status.Terminal() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("command %s never reached a terminal state", id)
}
