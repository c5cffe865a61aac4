// Package core exposes the transactional service façade over the obracore
// domain: per-entity CRUD, cross-entity helpers, finance aggregation, the
// site-log creation saga, and the default rule set evaluated on every commit.
package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"obracore/internal/blob"
	"obracore/internal/infra/persistence/memory"
	"obracore/pkg/domain"
)

// BlobStore is the blob backend used for site log attachments.
type BlobStore = blob.Store

// Service exposes higher-level transactional CRUD operations for the domain.
type Service struct {
	store   domain.PersistentStore
	blobs   BlobStore
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder

	bundleMu sync.Mutex
	inflight map[string]struct{}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		clock:    systemClock{},
		logger:   noopLogger{},
		metrics:  noopMetricsRecorder{},
		tracer:   noopTracer{},
		audit:    noopAuditRecorder{},
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store with the
// given rules engine. A nil engine falls back to the default rule set.
func NewInMemoryService(engine *domain.RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// ErrNotFound is returned when a referenced entity does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// transact runs fn inside a store transaction with tracing, metrics, audit,
// and logging around it. entityID (optional) supplies the subject id for the
// audit entry after fn has run.
func (s *Service) transact(ctx context.Context, operation string, fn func(domain.Transaction) error, entityID func() string) (Result, error) {
	started := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	res, err := s.store.RunInTransaction(ctx, fn)
	duration := s.clock.Now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)

	entry := AuditEntry{Operation: operation, Status: AuditStatusSuccess, OccurredAt: started}
	if entityID != nil {
		entry.EntityID = entityID()
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		s.logger.Error("operation failed", "operation", operation, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", operation, "duration_ms", duration.Milliseconds())
	}
	s.audit.Record(ctx, entry)

	for _, v := range res.Violations {
		if v.Severity == SeverityWarn {
			s.logger.Warn("rule violation", "rule", v.Rule, "entity", v.Entity, "entity_id", v.EntityID, "message", v.Message)
		}
	}
	return res, err
}

// read runs fn against a read-only snapshot of the store.
func (s *Service) read(ctx context.Context, fn func(domain.TransactionView) error) error {
	return s.store.View(ctx, fn)
}

// sortByCreation orders entities newest first, id ascending on ties. All list
// operations share this ordering.
func sortByCreation[T any](items []T, base func(T) Base) []T {
	sort.Slice(items, func(i, j int) bool {
		bi, bj := base(items[i]), base(items[j])
		if !bi.CreatedAt.Equal(bj.CreatedAt) {
			return bi.CreatedAt.After(bj.CreatedAt)
		}
		return bi.ID < bj.ID
	})
	return items
}
