package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campusvote/internal/model"
	"campusvote/internal/repository"
)

const (
	auditBatchSize     = 10
	auditFlushInterval = 1 * time.Second
	auditQueueSize     = 100
)

// Auditor records vote attempts off the request path.
type Auditor interface {
	Record(ctx context.Context, attempt model.VoteAttempt)
}

// AuditLog batches vote attempts and writes them asynchronously.
type AuditLog struct {
	repo repository.VoteAttemptRepository

	mu     sync.RWMutex
	closed bool
	queue  chan model.VoteAttempt
	done   chan struct{}
}

// NewAuditLog creates the audit log and starts its worker. Close flushes it.
func NewAuditLog(repo repository.VoteAttemptRepository) *AuditLog {
	a := &AuditLog{
		repo:  repo,
		queue: make(chan model.VoteAttempt, auditQueueSize),
		done:  make(chan struct{}),
	}

	go a.worker(context.Background())

	return a
}

// worker drains the queue, writing every auditBatchSize entries or on each tick.
func (a *AuditLog) worker(ctx context.Context) {
	defer close(a.done)

	batch := make([]model.VoteAttempt, 0, auditBatchSize)
	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := a.repo.CreateBatch(ctx, batch); err != nil {
			slog.Error("vote audit flush failed", "entries", len(batch), "err", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case attempt, ok := <-a.queue:
			if !ok {
				// Queue closed, flush remaining entries
				flush()
				return
			}
			batch = append(batch, attempt)
			if len(batch) >= auditBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Record queues an attempt. When the queue is full the entry is written inline.
func (a *AuditLog) Record(ctx context.Context, attempt model.VoteAttempt) {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}

	select {
	case a.queue <- attempt:
	default:
		if err := a.repo.CreateBatch(ctx, []model.VoteAttempt{attempt}); err != nil {
			slog.Error("vote audit write failed", "voter", attempt.VoterID, "err", err)
		}
	}
}

// Close stops accepting entries and waits until queued ones are written.
func (a *AuditLog) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
}
