// Package departures turns raw departure feed text into ordered,
// concurrency-safe snapshots and selects the services shown on the board.
package departures

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mobil-koeln/moko-board/internal/models"
)

// Engine holds the current feed snapshot. Ingest replaces it wholesale;
// readers take a snapshot and keep using it for a consistent view.
type Engine struct {
	mu       sync.RWMutex
	snapshot *Snapshot

	// guarded by mu
	platform       string
	filterPlatform bool

	version  atomic.Uint64
	annotate bool
	now      func() time.Time
	logger   *log.Logger
}

// Option configures the Engine
type Option func(*Engine)

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock sets the clock that supplies today's date for ordering
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithCallingPointTimes enables the "(time)" suffix on calling points
func WithCallingPointTimes(enabled bool) Option {
	return func(e *Engine) {
		e.annotate = enabled
	}
}

// WithPlatform restricts the selection to one platform from the start
func WithPlatform(platform string) Option {
	return func(e *Engine) {
		if platform != "" {
			e.platform = platform
			e.filterPlatform = true
		}
	}
}

// New creates an engine with an empty snapshot
func New(opts ...Option) *Engine {
	e := &Engine{
		annotate: true,
		now:      time.Now,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snapshot = &Snapshot{annotate: e.annotate}
	return e
}

// Ingest parses raw feed text into a new snapshot and publishes it.
// On failure a *ParseError is returned and the current snapshot is kept.
func (e *Engine) Ingest(raw []byte) error {
	snap, err := e.parse(raw)
	if err != nil {
		e.logger.Warn("Rejected feed", "bytes", len(raw), "err", err)
		return err
	}

	e.mu.Lock()
	snap.version = e.version.Load() + 1
	e.snapshot = snap
	e.version.Store(snap.version)
	e.mu.Unlock()

	e.logger.Debug("Ingested feed",
		"version", snap.version,
		"services", snap.Len(),
		"location", snap.locationName,
		"hasMessage", snap.systemMessage != "")
	return nil
}

func (e *Engine) parse(raw []byte) (*Snapshot, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, &ParseError{Reason: "feed document is null"}
	}

	var board models.BoardResponse
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, &ParseError{Reason: "invalid JSON document", Err: err}
	}

	services := make([]models.Service, 0, len(board.TrainServices))
	for i := range board.TrainServices {
		svc, err := board.TrainServices[i].ToService()
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("service %d", i), Err: err}
		}
		services = append(services, *svc)
	}

	return newSnapshot(&board, services, e.now(), e.annotate), nil
}

// Snapshot returns the current snapshot
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Version returns the number of successful ingests
func (e *Engine) Version() uint64 {
	return e.version.Load()
}

// SelectPlatform restricts FindServices to departures from platform
func (e *Engine) SelectPlatform(platform string) {
	e.mu.Lock()
	e.platform = platform
	e.filterPlatform = true
	e.mu.Unlock()
	e.logger.Debug("Platform selected", "platform", platform)
}

// UnselectPlatform makes FindServices consider every platform again
func (e *Engine) UnselectPlatform() {
	e.mu.Lock()
	e.filterPlatform = false
	e.mu.Unlock()
	e.logger.Debug("Platform filter cleared")
}

// SelectedPlatform returns the selected platform and whether filtering is on
func (e *Engine) SelectedPlatform() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.platform, e.filterPlatform
}

// FindServices selects the next three departures from the current
// snapshot and returns that snapshot for reading their fields.
func (e *Engine) FindServices() (Selection, *Snapshot) {
	e.mu.RLock()
	snap := e.snapshot
	platform, filter := e.platform, e.filterPlatform
	e.mu.RUnlock()

	return snap.FindServices(platform, filter), snap
}
