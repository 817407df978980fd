package transport

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nattery/edge-bridge/internal/errs"
)

type fakeClient struct {
	reads     atomic.Int32
	failUntil int32
}

func (f *fakeClient) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	n := f.reads.Add(1)
	if n <= f.failUntil {
		return nil, errors.New("simulated bus error")
	}
	return make([]byte, int(quantity)*2), nil
}
func (f *fakeClient) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	return f.ReadHoldingRegisters(address, quantity)
}
func (f *fakeClient) WriteSingleRegister(address, value uint16) ([]byte, error) {
	return []byte{byte(value >> 8), byte(value)}, nil
}

func newTestTransport(fc *fakeClient) *Transport {
	t := NewWithClient(Config{RetryCount: 3, RetryDelay: time.Millisecond}, fc)
	t.connected.Store(true)
	return t
}

func TestReadHoldingRetriesThenSucceeds(t *testing.T) {
	fc := &fakeClient{failUntil: 2}
	tr := newTestTransport(fc)

	words, err := tr.ReadHolding(context.Background(), 3030, 1)
	if err != nil {
		t.Fatalf("ReadHolding: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("len(words) = %d, want 1", len(words))
	}
	if fc.reads.Load() != 3 {
		t.Errorf("reads = %d, want 3 (2 failures + 1 success)", fc.reads.Load())
	}
}

func TestReadHoldingFailsAfterExhaustingRetries(t *testing.T) {
	fc := &fakeClient{failUntil: 100}
	tr := newTestTransport(fc)

	_, err := tr.ReadHolding(context.Background(), 3030, 1)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if tr.ConsecutiveFailures() != 1 {
		t.Errorf("ConsecutiveFailures = %d, want 1", tr.ConsecutiveFailures())
	}
}

func TestReadHoldingFailsFastWhenNotConnected(t *testing.T) {
	fc := &fakeClient{}
	tr := NewWithClient(Config{RetryCount: 3, RetryDelay: time.Millisecond}, fc)

	_, err := tr.ReadHolding(context.Background(), 3030, 1)
	if !errors.Is(err, errs.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if fc.reads.Load() != 0 {
		t.Errorf("client should not have been called while disconnected, got %d reads", fc.reads.Load())
	}
}

func TestWriteHoldingResetsConsecutiveFailuresOnSuccess(t *testing.T) {
	fc := &fakeClient{failUntil: 100}
	tr := newTestTransport(fc)
	if _, err := tr.ReadHolding(context.Background(), 3030, 1); err == nil {
		t.Fatal("expected the seeded read to fail")
	}
	if tr.ConsecutiveFailures() == 0 {
		t.Fatal("expected ConsecutiveFailures > 0 after failed read")
	}

	fc.failUntil = 0
	fc.reads.Store(0)
	if _, err := tr.WriteHolding(context.Background(), 17, 1); err != nil {
		t.Fatalf("WriteHolding: %v", err)
	}
	if tr.ConsecutiveFailures() != 0 {
		t.Errorf("ConsecutiveFailures = %d, want 0 after a successful write", tr.ConsecutiveFailures())
	}
}
