// Package audit ships audit entries to sinks off the request path.
package audit

import (
	"context"
	"sync"
	"time"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/model"
	"walletledger/internal/app/service"
)

// service.AuditLog interface implementation
var _ service.AuditLog = (*Dispatcher)(nil)

type Sink interface {
	Write(ctx context.Context, entries []model.AuditEntry) error
}

// Dispatcher buffers entries and hands them to sinks in batches from a single
// goroutine. Record never blocks: when the buffer is full the entry is dropped.
type Dispatcher struct {
	logger    logger.Logger
	sinks     []Sink
	entries   chan model.AuditEntry
	stopCh    chan struct{}
	done      sync.WaitGroup
	stopOnce  sync.Once
	batchSize int
	interval  time.Duration
}

func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		logger:    logger.Global().WithComponent("Audit.Dispatcher"),
		sinks:     sinks,
		entries:   make(chan model.AuditEntry, buffer),
		stopCh:    make(chan struct{}),
		batchSize: 100,
		interval:  time.Second,
	}
}

// Record implementation of interface service.AuditLog
func (d *Dispatcher) Record(ctx context.Context, e model.AuditEntry) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	select {
	case d.entries <- e:
	default:
		l := logger.Get(ctx, "Audit.Dispatcher")
		l.Warn().
			Str("action", e.Action).
			Str("user_id", e.UserID.String()).
			Msg("Audit buffer full, entry dropped")
	}
}

func (d *Dispatcher) Start() {
	d.done.Add(1)
	go func() {
		defer d.done.Done()

		t := time.NewTicker(d.interval)
		defer t.Stop()

		batch := make([]model.AuditEntry, 0, d.batchSize)
		for {
			select {
			case e := <-d.entries:
				batch = append(batch, e)
				if len(batch) >= d.batchSize {
					batch = d.flush(batch)
				}
			case <-t.C:
				batch = d.flush(batch)
			case <-d.stopCh:
				for {
					select {
					case e := <-d.entries:
						batch = append(batch, e)
					default:
						d.flush(batch)
						return
					}
				}
			}
		}
	}()
}

// Stop flushes buffered entries and waits for the sinks.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.logger.Debug().Msg("Dispatcher shutdown")
		close(d.stopCh)
	})
	d.done.Wait()
}

func (d *Dispatcher) flush(batch []model.AuditEntry) []model.AuditEntry {
	if len(batch) == 0 {
		return batch
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, s := range d.sinks {
		if err := s.Write(ctx, batch); err != nil {
			d.logger.Error().Err(err).Int("entries", len(batch)).Msg("Audit sink write failed")
		}
	}

	return batch[:0]
}

// LogSink writes entries to the application log.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(l logger.Logger) *LogSink {
	return &LogSink{logger: l.WithComponent("Audit")}
}

func (s *LogSink) Write(_ context.Context, entries []model.AuditEntry) error {
	for _, e := range entries {
		ev := s.logger.Info().
			Str("action", e.Action).
			Str("user_id", e.UserID.String()).
			Str("wallet_id", e.WalletID.String()).
			Time("at", e.At)
		for k, v := range e.Meta {
			ev = ev.Str(k, v)
		}
		ev.Msg("Audit")
	}
	return nil
}
