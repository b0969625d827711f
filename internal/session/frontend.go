// internal/session/frontend.go
package session

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	apperrors "csv-chat/internal/common/errors"
	"csv-chat/internal/common/logger"
	"csv-chat/internal/common/metrics"
	"csv-chat/internal/common/observability"
	"csv-chat/internal/dataset"
	"csv-chat/internal/engine"
)

// FrontEnd is the query front-end: it owns session lookup, rejects empty
// questions before any network call, and otherwise passes (dataset,
// question) to the engine and the Result back unmodified.
type FrontEnd struct {
	store  Store
	engine engine.Engine
	log    logger.Logger
	obs    *observability.Observability

	// One blocking action at a time per session. Sessions do not share
	// state, so distinct sessions proceed concurrently.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFrontEnd wires the front-end with its session store and engine.
func NewFrontEnd(store Store, eng engine.Engine, log logger.Logger, obs *observability.Observability) *FrontEnd {
	return &FrontEnd{
		store:  store,
		engine: eng,
		log:    log.With(map[string]interface{}{"component": "frontend"}),
		obs:    obs,
		locks:  make(map[string]*sync.Mutex),
	}
}

// CreateSession starts a new empty session.
func (f *FrontEnd) CreateSession(ctx context.Context) (*Session, error) {
	s := New()
	if err := f.store.Put(ctx, s); err != nil {
		return nil, err
	}
	f.log.Info("session created", map[string]interface{}{"sessionId": s.ID})
	return s, nil
}

// GetSession returns a snapshot of the session or a SESSION_NOT_FOUND
// error. Snapshots are read-only views; they need no session lock.
func (f *FrontEnd) GetSession(ctx context.Context, id string) (*Session, error) {
	return f.store.Get(ctx, id)
}

// LoadDataset parses CSV input and installs it as the session's dataset.
// On failure the session keeps whatever dataset it had before.
func (f *FrontEnd) LoadDataset(ctx context.Context, sessionID, name string, r io.Reader) (*dataset.Dataset, error) {
	unlock := f.lockSession(sessionID)
	defer unlock()

	s, err := f.store.Get(ctx, sessionID)
	if err != nil {
		f.dropLockIfGone(sessionID, err)
		return nil, err
	}

	ds, err := dataset.Parse(name, r)
	if err != nil {
		metrics.DatasetLoadsFailed.WithLabelValues(name, string(apperrors.CodeOf(err))).Inc()
		f.log.Warn("dataset load failed", map[string]interface{}{
			"sessionId": sessionID,
			"source":    name,
			"error":     err.Error(),
		})
		return nil, err
	}

	s.Dataset = ds
	s.Touch()
	if err := f.store.Put(ctx, s); err != nil {
		return nil, err
	}

	metrics.DatasetsLoaded.WithLabelValues(name).Inc()
	f.log.Info("dataset loaded", map[string]interface{}{
		"sessionId": sessionID,
		"dataset":   ds.Name,
		"rows":      ds.RowCount(),
		"columns":   len(ds.Columns),
	})
	return ds, nil
}

// InstallDataset installs an already-loaded dataset into the session.
// Used by the directory watcher, which loads files itself.
func (f *FrontEnd) InstallDataset(ctx context.Context, sessionID string, ds *dataset.Dataset) error {
	unlock := f.lockSession(sessionID)
	defer unlock()

	s, err := f.store.Get(ctx, sessionID)
	if err != nil {
		f.dropLockIfGone(sessionID, err)
		return err
	}

	s.Dataset = ds
	s.Touch()
	if err := f.store.Put(ctx, s); err != nil {
		return err
	}

	metrics.DatasetsLoaded.WithLabelValues(ds.Name).Inc()
	f.log.Info("dataset installed", map[string]interface{}{
		"sessionId": sessionID,
		"dataset":   ds.Name,
		"rows":      ds.RowCount(),
	})
	return nil
}

// Ask answers a natural-language question against the session's dataset.
// Each call is a stateless one-shot request/response; prior questions are
// not carried into the engine call.
func (f *FrontEnd) Ask(ctx context.Context, sessionID, question string) (*engine.Result, error) {
	unlock := f.lockSession(sessionID)
	defer unlock()

	if strings.TrimSpace(question) == "" {
		// Fail fast: the external engine is never invoked.
		err := apperrors.NewEmptyQueryError()
		metrics.QueriesFailed.WithLabelValues(string(apperrors.ErrCodeEmptyQuery)).Inc()
		return nil, err
	}

	s, err := f.store.Get(ctx, sessionID)
	if err != nil {
		f.dropLockIfGone(sessionID, err)
		return nil, err
	}
	if s.Dataset == nil {
		return nil, apperrors.NewNoDatasetError(sessionID)
	}

	start := time.Now()
	result, err := f.engine.Ask(ctx, s.Dataset, question)
	duration := time.Since(start)

	metrics.EngineCallDuration.Observe(duration.Seconds())
	if f.obs != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		f.obs.RecordQueryProcessed(ctx, status)
		f.obs.RecordQueryDuration(ctx, duration, status)
	}

	if err != nil {
		metrics.QueriesFailed.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		f.log.Error("query failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return nil, err
	}

	s.Touch()
	if err := f.store.Put(ctx, s); err != nil {
		f.log.Warn("session touch failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}

	metrics.QueriesCompleted.WithLabelValues(string(result.Kind)).Inc()
	f.log.Info("query answered", map[string]interface{}{
		"sessionId": sessionID,
		"kind":      result.Kind,
		"duration":  duration.String(),
	})
	return result, nil
}

// lockSession serializes actions within one session.
func (f *FrontEnd) lockSession(id string) func() {
	f.mu.Lock()
	l, ok := f.locks[id]
	if !ok {
		l = &sync.Mutex{}
		f.locks[id] = l
	}
	f.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// dropLockIfGone forgets the lock for a session the store no longer has,
// so the lock map does not grow past the live session set.
func (f *FrontEnd) dropLockIfGone(id string, err error) {
	if apperrors.CodeOf(err) != apperrors.ErrCodeSessionNotFound {
		return
	}
	f.mu.Lock()
	delete(f.locks, id)
	f.mu.Unlock()
}
