package sampler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nattery/edge-bridge/internal/accessor"
	"github.com/nattery/edge-bridge/internal/publish"
	"github.com/nattery/edge-bridge/internal/registry"
)

// Sampler ticks on its own goroutine, reading the curated register set
// directly through the Accessor rather than the Queue, and publishing
// the enriched result. The Transport's bus lock still serializes every
// sampler read against dispatched commands.
type Sampler struct {
	accessor *accessor.Accessor
	catalog  *registry.Catalog
	sink     publish.Sink
	interval time.Duration

	collectionCount uint64
	errorCount      uint64
}

// New builds a Sampler. interval is the configured data_collection_interval.
func New(a *accessor.Accessor, catalog *registry.Catalog, sink publish.Sink, interval time.Duration) *Sampler {
	return &Sampler{accessor: a, catalog: catalog, sink: sink, interval: interval}
}

// Run drives the sampling loop until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sampler) tick(ctx context.Context) {
	if !s.accessor.Transport().IsConnected() {
		slog.Warn("sampler: transport not connected, skipping collection")
		return
	}

	raw := s.accessor.ReadAll(ctx, func() {
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
		}
	})
	if len(raw) == 0 {
		s.errorCount++
		slog.Warn("sampler: no data collected from transport")
		return
	}

	s.collectionCount++
	sample := Enrich(raw, s.catalog, s.collectionCount)

	if err := s.sink.PublishData(ctx, sample.ToPayload()); err != nil {
		s.errorCount++
		slog.Error("sampler: publish failed", "err", err)
		return
	}
	slog.Debug("sampler: published collection", "count", s.collectionCount, "quality", sample.DataQuality)
}

// Stats holds the running collection/error counters.
type Stats struct {
	CollectionCount uint64
	ErrorCount      uint64
	SuccessRate     float64
}

// Stats returns the running collection/error counters.
func (s *Sampler) Stats() Stats {
	total := s.collectionCount + s.errorCount
	var rate float64
	if total > 0 {
		rate = float64(s.collectionCount) / float64(total) * 100
	}
	return Stats{CollectionCount: s.collectionCount, ErrorCount: s.errorCount, SuccessRate: rate}
}
