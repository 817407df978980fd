// Package bridge is the root coordinator: it owns the Transport, Queue,
// Sampler, and health Supervisor in construction order and tears them
// down in reverse. Every cross-component reference is injected at
// construction time, never through a late-bound setter.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nattery/edge-bridge/internal/accessor"
	"github.com/nattery/edge-bridge/internal/config"
	"github.com/nattery/edge-bridge/internal/health"
	"github.com/nattery/edge-bridge/internal/publish"
	"github.com/nattery/edge-bridge/internal/publish/mqttsink"
	"github.com/nattery/edge-bridge/internal/queue"
	"github.com/nattery/edge-bridge/internal/registry"
	"github.com/nattery/edge-bridge/internal/sampler"
	"github.com/nattery/edge-bridge/internal/transport"
)

// Bridge wires every component together and supervises their goroutines
// with an errgroup.
type Bridge struct {
	cfg       *config.LoadedConfig
	transport *transport.Transport
	accessor  *accessor.Accessor
	queue     *queue.Queue
	sampler   *sampler.Sampler
	health    *health.Supervisor
	sink      *mqttsink.Client
}

// New constructs every component in dependency order: Transport first
// (nothing else can run without it), then the typed Accessor, the
// Queue, the publish sink (which needs a submit callback bound to the
// already-built Queue), and finally the Sampler and Supervisor, both of
// which need the sink.
func New(cfg *config.LoadedConfig) (*Bridge, error) {
	catalog := registry.NewCatalog()

	tr := transport.New(transport.Config{
		Port:       cfg.Modbus.Port,
		BaudRate:   cfg.Modbus.BaudRate,
		SlaveID:    cfg.Modbus.SlaveID,
		Timeout:    cfg.ModbusTimeout,
		RetryCount: cfg.Modbus.RetryCount,
		RetryDelay: cfg.ModbusRetryDelay,
	})
	if err := tr.Open(); err != nil {
		return nil, err
	}

	acc := accessor.New(catalog, tr, transport.DecodeValue, transport.EncodeU16OrI16)

	q := queue.New(queue.Config{
		MaxQueueSize:       cfg.MaxQueueSize,
		DefaultTimeoutSecs: cfg.CommandTimeoutS,
		DefaultMaxAttempts: 3,
	}, acc)

	submit := func(payload []byte) (string, error) {
		spec, err := queue.ParseCommandSpec(payload)
		if err != nil {
			return "", err
		}
		return q.Submit(spec)
	}

	sink, err := mqttsink.New(mqttsink.Config{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		Username:    cfg.MQTT.Username,
		Password:    cfg.MQTT.Password,
		QoS:         cfg.MQTT.QoS,
		Keepalive:   cfg.MQTTKeepalive,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		DeviceID:    cfg.Device.ID,
		DeviceType:  cfg.Device.Type,
	}, submit)
	if err != nil {
		tr.Close()
		return nil, err
	}

	q.OnResponse(func(id string, success bool, result any, errMsg string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sink.PublishCommandResponse(ctx, id, success, result, errMsg); err != nil {
			slog.Warn("bridge: command response publish failed", "command_id", id, "err", err)
		}
	})

	smp := sampler.New(acc, catalog, sink, cfg.DataCollectionInterval)

	sup := health.New(health.Config{
		CheckInterval:          cfg.HealthCheckInterval,
		MaxConsecutiveFailures: uint32(cfg.MaxConsecutiveFailures),
	}, acc, sink)

	return &Bridge{cfg: cfg, transport: tr, accessor: acc, queue: q, sampler: smp, health: sup, sink: sink}, nil
}

// Run supervises the dispatcher, sampler, and supervisor goroutines with
// an errgroup. It returns when ctx is cancelled or any component
// goroutine returns an unexpected error.
func (b *Bridge) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return ignoreCancel(b.queue.Run(ctx)) })
	g.Go(func() error { return ignoreCancel(b.sampler.Run(ctx)) })
	g.Go(func() error { return ignoreCancel(b.health.Run(ctx)) })

	return g.Wait()
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Submit exposes the Queue's Submit for non-MQTT command sources (tests,
// a future HTTP surface).
func (b *Bridge) Submit(spec queue.CommandSpec) (string, error) {
	return b.queue.Submit(spec)
}

// Shutdown tears the bridge down in the reverse of construction order:
// publish sink last-status then disconnect, and finally the transport.
func (b *Bridge) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b.sink.Close(shutdownCtx)

	if err := b.transport.Close(); err != nil {
		slog.Warn("bridge: transport close", "err", err)
	}
}

var _ publish.Sink = (*mqttsink.Client)(nil)
