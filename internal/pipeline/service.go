// Package pipeline orchestrates one full scrape-and-publish cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/filmrelay/filmrelay/internal/fetch"
	"github.com/filmrelay/filmrelay/internal/history"
	"github.com/filmrelay/filmrelay/internal/scrape"
	"github.com/filmrelay/filmrelay/internal/seenset"
)

// ErrSyncInProgress is returned when a run is triggered while another is active.
var ErrSyncInProgress = errors.New("sync already in progress")

// Publisher announces an extracted film to the configured channel.
type Publisher interface {
	PublishFilm(ctx context.Context, record *scrape.FilmRecord) error
}

// SyncStatus holds the result of the last sync run.
type SyncStatus struct {
	Running    bool      `json:"running"`
	RunID      string    `json:"runId,omitempty"`
	LastRun    time.Time `json:"lastRun,omitempty"`
	Discovered int       `json:"discovered"`
	New        int       `json:"new"`
	Extracted  int       `json:"extracted"`
	Published  int       `json:"published"`
	Failed     int       `json:"failed"`
	ElapsedMs  int       `json:"elapsed"`
	Error      string    `json:"error,omitempty"`
}

// Options configures a sync run.
type Options struct {
	ListingURL   string
	MaxFilms     int
	FetchDelay   time.Duration
	PublishDelay time.Duration
}

// Service orchestrates film sync operations.
type Service struct {
	opts           Options
	fetcher        fetch.Fetcher
	engine         *scrape.Engine
	seen           *seenset.Store
	publisher      Publisher
	historyService *history.Service
	fetchLimiter   *rate.Limiter
	publishLimiter *rate.Limiter
	logger         zerolog.Logger

	running atomic.Bool
	mu      sync.RWMutex
	status  SyncStatus
}

// NewService creates a new sync service.
func NewService(
	opts Options,
	fetcher fetch.Fetcher,
	engine *scrape.Engine,
	seen *seenset.Store,
	publisher Publisher,
	historyService *history.Service,
	logger zerolog.Logger,
) *Service {
	return &Service{
		opts:           opts,
		fetcher:        fetcher,
		engine:         engine,
		seen:           seen,
		publisher:      publisher,
		historyService: historyService,
		fetchLimiter:   newPacer(opts.FetchDelay),
		publishLimiter: newPacer(opts.PublishDelay),
		logger:         logger.With().Str("component", "pipeline").Logger(),
	}
}

// newPacer converts a minimum inter-event delay into a limiter. A zero
// delay means no pacing.
func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// IsRunning returns whether a sync is currently running.
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// LastStatus returns the last sync status.
func (s *Service) LastStatus() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Running = s.running.Load()
	return st
}

// Run executes a full sync cycle: discover listing entries, filter
// already-published topics, extract each remaining detail page, publish,
// and commit published ids to the seen set in one batch.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With().Str("runId", runID).Logger()
	logger.Info().Msg("film sync starting")

	// 1. Discover
	entries, err := s.discover(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("listing discovery failed")
		s.failSync(ctx, start, runID, err)
		return err
	}

	// 2. Filter against the seen set
	var fresh []scrape.ListingEntry
	for _, entry := range entries {
		if !s.seen.Contains(entry.TopicID) {
			fresh = append(fresh, entry)
		}
	}

	logger.Info().
		Int("discovered", len(entries)).
		Int("new", len(fresh)).
		Msg("listing filtered")

	status := SyncStatus{
		RunID:      runID,
		LastRun:    start,
		Discovered: len(entries),
		New:        len(fresh),
	}

	// 3–4. Extract and publish, in discovery order. A failing entry never
	// aborts the run; it stays out of the commit batch and is retried on
	// the next cycle.
	var committed []seenset.Record
	for _, entry := range fresh {
		record, err := s.extract(ctx, entry)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn().Err(err).Str("topicId", entry.TopicID).Msg("extraction failed")
			status.Failed++
			continue
		}
		status.Extracted++

		if len(record.Downloads) == 0 {
			// No links yet. Leaving the topic uncommitted means it is
			// picked up again once links are posted.
			logger.Debug().Str("topicId", entry.TopicID).Msg("no download variants, deferring")
			continue
		}

		if err := s.publish(ctx, record); err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn().Err(err).Str("topicId", record.TopicID).Msg("publish failed")
			status.Failed++
			s.logEvent(ctx, history.CreateInput{
				EventType: history.EventPublishFailed,
				TopicID:   record.TopicID,
				Title:     record.Title,
				Data:      map[string]any{"runId": runID, "error": err.Error()},
			})
			continue
		}
		status.Published++
		committed = append(committed, seenset.Record{
			TopicID: record.TopicID,
			Title:   record.Title,
			SeenAt:  time.Now().UTC(),
		})
		s.logEvent(ctx, history.CreateInput{
			EventType: history.EventFilmPublished,
			TopicID:   record.TopicID,
			Title:     record.Title,
			Data: map[string]any{
				"runId":    runID,
				"year":     record.Year,
				"language": record.Language,
				"variants": len(record.Downloads),
			},
		})
	}

	// 5. Commit published topics. A store failure is a run failure: the
	// next run would re-publish everything in this batch.
	if len(committed) > 0 {
		if err := s.seen.CommitBatch(committed); err != nil {
			logger.Error().Err(err).Msg("seen set commit failed")
			s.failSync(ctx, start, runID, err)
			return fmt.Errorf("failed to commit seen set: %w", err)
		}
	}

	status.ElapsedMs = int(time.Since(start).Milliseconds())
	s.setStatus(status)

	s.logEvent(ctx, history.CreateInput{
		EventType: history.EventRunCompleted,
		Data: map[string]any{
			"runId":      runID,
			"discovered": status.Discovered,
			"new":        status.New,
			"extracted":  status.Extracted,
			"published":  status.Published,
			"failed":     status.Failed,
			"elapsedMs":  status.ElapsedMs,
		},
	})

	logger.Info().
		Int("discovered", status.Discovered).
		Int("new", status.New).
		Int("extracted", status.Extracted).
		Int("published", status.Published).
		Int("failed", status.Failed).
		Int("elapsedMs", status.ElapsedMs).
		Msg("film sync completed")

	return nil
}

// discover fetches the listing page and parses its topic entries.
func (s *Service) discover(ctx context.Context) ([]scrape.ListingEntry, error) {
	if err := s.fetchLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	markup, err := s.fetcher.Fetch(ctx, s.opts.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	return scrape.ParseListing(markup, s.opts.ListingURL, s.opts.MaxFilms)
}

// extract fetches one detail page and runs the extraction engine over it.
func (s *Service) extract(ctx context.Context, entry scrape.ListingEntry) (*scrape.FilmRecord, error) {
	if err := s.fetchLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	markup, err := s.fetcher.Fetch(ctx, entry.SourceURL)
	if err != nil {
		return nil, err
	}
	return s.engine.Extract(markup, entry)
}

func (s *Service) publish(ctx context.Context, record *scrape.FilmRecord) error {
	if err := s.publishLimiter.Wait(ctx); err != nil {
		return err
	}
	return s.publisher.PublishFilm(ctx, record)
}

func (s *Service) setStatus(status SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *Service) failSync(ctx context.Context, start time.Time, runID string, runErr error) {
	s.setStatus(SyncStatus{
		RunID:     runID,
		LastRun:   start,
		ElapsedMs: int(time.Since(start).Milliseconds()),
		Error:     runErr.Error(),
	})
	s.logEvent(ctx, history.CreateInput{
		EventType: history.EventRunFailed,
		Data:      map[string]any{"runId": runID, "error": runErr.Error()},
	})
}

func (s *Service) logEvent(ctx context.Context, input history.CreateInput) {
	if s.historyService == nil {
		return
	}
	if _, err := s.historyService.Create(ctx, input); err != nil {
		s.logger.Warn().Err(err).Str("eventType", string(input.EventType)).Msg("failed to log history event")
	}
}
