package analytics

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/khanglvm/workflow-hub/internal/metrics"
	"github.com/khanglvm/workflow-hub/internal/storage"
)

const (
	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed.
	flushInterval = 50 * time.Millisecond
)

// Recorder persists search records.
type Recorder interface {
	RecordSearch(storage.SearchRecord) error
}

// Tracker records searches in the background with non-blocking writes.
type Tracker struct {
	recorder   Recorder
	logger     *zerolog.Logger
	eventQueue chan SearchEvent
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	enabled    bool
	mu         sync.RWMutex
}

// NewTracker creates a tracker and starts its background writer.
func NewTracker(r Recorder, logger *zerolog.Logger) *Tracker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	t := &Tracker{
		recorder:   r,
		logger:     logger,
		eventQueue: make(chan SearchEvent, eventQueueSize),
		stopChan:   make(chan struct{}),
		enabled:    r != nil,
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// Track enqueues a search event. If the queue is full the event is dropped.
func (t *Tracker) Track(event SearchEvent) {
	if !t.IsEnabled() {
		return
	}

	select {
	case t.eventQueue <- event:
	default:
		metrics.RecordAnalyticsDropped()
		t.logger.Warn().Str("search_id", event.SearchID).Msg("analytics queue full, dropping event")
	}
}

// Stop gracefully shuts down the tracker, flushing remaining events.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
}

// Disable disables tracking (events are ignored).
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Enable enables tracking when a recorder is configured.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = t.recorder != nil
}

// IsEnabled returns whether tracking is enabled.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// QueueSize returns the current number of events in the queue.
func (t *Tracker) QueueSize() int {
	return len(t.eventQueue)
}

// processEvents runs in the background, batching and flushing events.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]SearchEvent, 0, batchFlushSize)

	for {
		select {
		case event := <-t.eventQueue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = batch[:0]
			}

		case <-t.stopChan:
			// Drain whatever is still queued, then exit
			for {
				select {
				case event := <-t.eventQueue:
					batch = append(batch, event)
					if len(batch) >= batchFlushSize {
						t.flush(batch)
						batch = batch[:0]
					}
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to the recorder.
func (t *Tracker) flush(events []SearchEvent) {
	for _, event := range events {
		if err := t.recorder.RecordSearch(event.ToStorage()); err != nil {
			t.logger.Warn().Err(err).Str("search_id", event.SearchID).Msg("failed to record search")
		}
	}
}
