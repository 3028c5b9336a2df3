// Package service ties the pipeline together: fetch raw text from Horizons,
// parse it into a table, persist it, publish it as the latest snapshot, and
// notify tracker observers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/indigo-pc/sunspot/internal/archive"
	"github.com/indigo-pc/sunspot/internal/ephemeris"
	"github.com/indigo-pc/sunspot/internal/horizons"
	"github.com/indigo-pc/sunspot/internal/metrics"
	"github.com/indigo-pc/sunspot/internal/rawcache"
	"github.com/indigo-pc/sunspot/internal/tracker"
)

// Snapshot is one parsed table together with where it came from. Snapshots
// are immutable; Refresh swaps in a whole new one.
type Snapshot struct {
	Table     *ephemeris.Table
	Query     horizons.Query
	Source    string // "horizons" or "cache"
	FetchedAt time.Time
}

// Service runs the fetch-and-parse pipeline and holds the latest snapshot.
type Service struct {
	client  *horizons.Client
	cache   *rawcache.Cache
	archive *archive.Store // nil when archiving is disabled
	tracker *tracker.Tracker
	logger  *slog.Logger

	latest atomic.Pointer[Snapshot]
}

// New assembles a Service. cache and arch may be nil to disable the
// corresponding persistence step.
func New(client *horizons.Client, cache *rawcache.Cache, arch *archive.Store, trk *tracker.Tracker, logger *slog.Logger) *Service {
	return &Service{
		client:  client,
		cache:   cache,
		archive: arch,
		tracker: trk,
		logger:  logger,
	}
}

// Latest returns the current snapshot, or nil when none has been loaded.
func (s *Service) Latest() *Snapshot {
	return s.latest.Load()
}

// AgeSeconds returns the age of the current snapshot in seconds, or -1 when
// none has been loaded.
func (s *Service) AgeSeconds() float64 {
	snap := s.latest.Load()
	if snap == nil {
		return -1
	}
	return time.Since(snap.FetchedAt).Seconds()
}

// Refresh runs one full pipeline pass for the query. On success the new
// snapshot replaces the previous one; on any failure the previous snapshot
// stays in place. Cache and archive write failures are logged but do not
// fail the refresh.
func (s *Service) Refresh(ctx context.Context, q horizons.Query) (*Snapshot, error) {
	start := time.Now()
	raw, err := s.client.Fetch(ctx, q)
	if err != nil {
		var fault *horizons.RemoteServiceFault
		if errors.As(err, &fault) {
			metrics.ObserveFetch("fault", time.Since(start))
		} else {
			metrics.ObserveFetch("error", time.Since(start))
		}
		return nil, err
	}

	table, err := ephemeris.Parse(raw)
	if err != nil {
		metrics.ObserveFetch("error", time.Since(start))
		return nil, fmt.Errorf("parsing ephemeris: %w", err)
	}
	metrics.ObserveFetch("ok", time.Since(start))

	fetchedAt := time.Now().UTC()

	if s.cache != nil {
		if err := s.cache.Write(raw, fetchedAt); err != nil {
			s.logger.Warn("failed to cache raw response", "error", err)
		}
	}

	if s.archive != nil {
		rec := &archive.Record{
			ID:               uuid.New(),
			FetchedAt:        fetchedAt,
			TargetBody:       q.TargetBody,
			StartTime:        q.StartTime,
			StopTime:         q.StopTime,
			ObserverLocation: q.ObserverLocation,
			StepSize:         q.StepSize,
			Quantities:       q.Quantities,
			RowCount:         table.Len(),
			ColumnCount:      len(table.ColumnTitles()),
			RawText:          raw,
		}
		if err := s.archive.Insert(rec); err != nil {
			s.logger.Warn("failed to archive fetch", "error", err)
		}
	}

	snap := &Snapshot{
		Table:     table,
		Query:     q,
		Source:    "horizons",
		FetchedAt: fetchedAt,
	}
	s.latest.Store(snap)
	metrics.SetTableDimensions(table.Len(), len(table.ColumnTitles()))

	s.logger.Info("ephemeris refreshed",
		"target_body", q.TargetBody,
		"rows", table.Len(),
		"columns", len(table.ColumnTitles()),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if s.tracker != nil {
		s.tracker.Notify(table)
	}
	return snap, nil
}

// WarmLoad parses the newest cached raw response, if any, and installs it as
// the latest snapshot so queries can be served before the first live fetch.
func (s *Service) WarmLoad() error {
	if s.cache == nil {
		return nil
	}
	raw, ts, err := s.cache.LoadLatest()
	if err != nil {
		return fmt.Errorf("loading cached response: %w", err)
	}
	table, err := ephemeris.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing cached response: %w", err)
	}

	s.latest.Store(&Snapshot{
		Table:     table,
		Source:    "cache",
		FetchedAt: ts,
	})
	metrics.SetTableDimensions(table.Len(), len(table.ColumnTitles()))
	s.logger.Info("loaded ephemeris from cache",
		"rows", table.Len(),
		"columns", len(table.ColumnTitles()),
		"cached_at", ts.Format(time.RFC3339),
	)
	return nil
}
