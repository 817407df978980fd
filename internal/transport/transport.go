// Package transport implements the Modbus RTU transport: a single serial
// connection, a non-reentrant bus lock covering every on-wire operation,
// and a bounded retry/backoff protocol. The inverter firmware cannot
// tolerate interleaved frames, so the bus lock is the one true
// serialization point in the whole bridge.
package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goburrow/modbus"

	"github.com/nattery/edge-bridge/internal/errs"
)

// Client is the subset of goburrow/modbus's Client interface the
// Transport depends on. Declaring it locally lets tests substitute a
// fake without touching a real serial port.
type Client interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
	WriteSingleRegister(address, value uint16) ([]byte, error)
}

// Config bundles the serial/retry parameters the Transport needs.
type Config struct {
	Port       string
	BaudRate   int
	SlaveID    byte
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
}

// Transport owns the serial connection and the bus lock.
type Transport struct {
	cfg     Config
	client  Client
	handler *modbus.RTUClientHandler

	busLock sync.Mutex

	connected           atomic.Bool
	consecutiveFailures atomic.Uint32
}

// New builds a Transport wired to a real RTU serial connection via
// github.com/goburrow/modbus. The connection is not opened until Open is
// called.
func New(cfg Config) *Transport {
	handler := modbus.NewRTUClientHandler(cfg.Port)
	handler.BaudRate = cfg.BaudRate
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1
	handler.SlaveId = cfg.SlaveID
	handler.Timeout = cfg.Timeout

	return &Transport{
		cfg:     cfg,
		client:  modbus.NewClient(handler),
		handler: handler,
	}
}

// NewWithClient builds a Transport around an already-constructed Client,
// for tests that substitute a fake.
func NewWithClient(cfg Config, client Client) *Transport {
	return &Transport{cfg: cfg, client: client}
}

// Open opens the underlying serial connection.
func (t *Transport) Open() error {
	if t.handler == nil {
		t.connected.Store(true)
		return nil
	}
	if err := t.handler.Connect(); err != nil {
		t.connected.Store(false)
		return err
	}
	t.connected.Store(true)
	return nil
}

// Close closes the underlying serial connection.
func (t *Transport) Close() error {
	t.connected.Store(false)
	if t.handler == nil {
		return nil
	}
	return t.handler.Close()
}

// IsConnected reports whether the transport believes its serial
// connection is usable.
func (t *Transport) IsConnected() bool {
	return t.connected.Load()
}

// ConsecutiveFailures returns the number of on-wire operations that have
// failed in a row since the last success.
func (t *Transport) ConsecutiveFailures() uint32 {
	return t.consecutiveFailures.Load()
}

// ReadHolding reads count holding registers starting at addr, retrying
// per the configured policy. A nil slice means every attempt failed.
func (t *Transport) ReadHolding(ctx context.Context, addr, count uint16) ([]uint16, error) {
	return t.readRetrying(ctx, addr, count, t.client.ReadHoldingRegisters)
}

// ReadInput reads count input registers starting at addr (after
// subtracting the 30000 input-space offset the caller is expected to
// have already applied to addr), retrying per the configured policy.
func (t *Transport) ReadInput(ctx context.Context, addr, count uint16) ([]uint16, error) {
	return t.readRetrying(ctx, addr, count, t.client.ReadInputRegisters)
}

// WriteHolding writes a single holding register, retrying per the
// configured policy.
func (t *Transport) WriteHolding(ctx context.Context, addr, value uint16) (bool, error) {
	if !t.IsConnected() {
		return false, errs.ErrNotConnected
	}

	t.busLock.Lock()
	defer t.busLock.Unlock()

	var lastErr error
	for attempt := 1; attempt <= t.retryCount(); attempt++ {
		_, err := t.client.WriteSingleRegister(addr, value)
		if err == nil {
			t.consecutiveFailures.Store(0)
			return true, nil
		}
		lastErr = err

		if attempt < t.retryCount() {
			if !t.sleepOrCancel(ctx) {
				return false, ctx.Err()
			}
			continue
		}
	}

	t.consecutiveFailures.Add(1)
	return false, &errs.TransportError{Detail: lastErr.Error()}
}

func (t *Transport) readRetrying(ctx context.Context, addr, count uint16, call func(address, quantity uint16) ([]byte, error)) ([]uint16, error) {
	if !t.IsConnected() {
		return nil, errs.ErrNotConnected
	}

	t.busLock.Lock()
	defer t.busLock.Unlock()

	var lastErr error
	for attempt := 1; attempt <= t.retryCount(); attempt++ {
		raw, err := call(addr, count)
		if err == nil {
			t.consecutiveFailures.Store(0)
			return bytesToWords(raw), nil
		}
		lastErr = err

		if attempt < t.retryCount() {
			if !t.sleepOrCancel(ctx) {
				return nil, ctx.Err()
			}
			continue
		}
	}

	t.consecutiveFailures.Add(1)
	return nil, &errs.TransportError{Detail: lastErr.Error()}
}

func (t *Transport) retryCount() int {
	if t.cfg.RetryCount <= 0 {
		return 1
	}
	return t.cfg.RetryCount
}

// sleepOrCancel sleeps for the configured retry delay, returning false if
// the context was cancelled first.
func (t *Transport) sleepOrCancel(ctx context.Context) bool {
	timer := time.NewTimer(t.cfg.RetryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func bytesToWords(raw []byte) []uint16 {
	words := make([]uint16, len(raw)/2)
	for i := range words {
		words[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}
	return words
}
