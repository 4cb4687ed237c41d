// Package syncer sweeps PENDING entries whose callback never arrived and
// settles them from the gateway status endpoint.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"net/http"
	"sync"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/model"
	"walletledger/internal/app/money"
	"walletledger/internal/app/service/webhook"
	"walletledger/internal/app/storage"
	"walletledger/pkg/gateway"
)

var ErrRetryableError = errors.New("retryable")

type Job func() error

// PaymentFetcher reads the settlement state of a payment.
type PaymentFetcher interface {
	GetPayment(ctx context.Context, in *gateway.GetPaymentRequest, out *gateway.PaymentResponse) error
}

type Reconciler interface {
	Apply(ctx context.Context, provider string, cb webhook.Callback, raw []byte) (*webhook.Result, error)
}

var (
	_ PaymentFetcher = (*gateway.Service)(nil)
	_ Reconciler     = (*webhook.Reconciler)(nil)
)

type Service struct {
	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
	logger   logger.Logger

	txs        storage.TransactionRepository
	gateway    PaymentFetcher
	reconciler Reconciler

	jobs     chan Job
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	now      func() time.Time

	fetchInterval time.Duration
	staleAfter    time.Duration
	batchSize     int
	jobTimeout    time.Duration
	retryDelay    time.Duration
}

type Option func(*Service)

func WithFetchInterval(d time.Duration) Option {
	return func(s *Service) {
		s.fetchInterval = d
	}
}

// WithStaleAfter sets how old a PENDING entry must be before it is polled.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) {
		s.staleAfter = d
	}
}

func WithBatchSize(n int) Option {
	return func(s *Service) {
		s.batchSize = n
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) {
		s.retryDelay = d
	}
}

func New(txs storage.TransactionRepository, gw PaymentFetcher, rec Reconciler, opts ...Option) *Service {
	s := &Service{
		logger:        logger.Global().WithComponent("PendingSync.Service"),
		inflight:      make(map[uuid.UUID]struct{}),
		txs:           txs,
		gateway:       gw,
		reconciler:    rec,
		jobs:          make(chan Job),
		stopCh:        make(chan struct{}),
		now:           time.Now,
		fetchInterval: 30 * time.Second,
		staleAfter:    5 * time.Minute,
		batchSize:     100,
		jobTimeout:    30 * time.Second,
		retryDelay:    time.Second,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *Service) Start(numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		s.wg.Add(1)
		go func(workerID int, l logger.Logger) {
			defer s.wg.Done()
			for {
				select {
				case <-s.stopCh:
					return
				case job := <-s.jobs:
					id := uuid.New()
					ll := l.With().Int("worker_id", workerID).Str("job_id", id.String()).Logger()
					ll.Debug().Msg("Running job")
					if err := job(); err != nil {
						if !errors.Is(err, ErrRetryableError) {
							ll.Warn().Err(err).Msg("Job failed")
							continue
						}
						ll.Error().Err(err).Msg("Job failed, retrying")
						go func() {
							select {
							case <-s.stopCh:
							case <-time.After(s.retryDelay):
								s.Run(job)
							}
						}()
						continue
					}
					ll.Debug().Msg("Job done")
				}
			}
		}(i, s.logger)
	}

	s.wg.Add(1)
	go func(l logger.Logger, fetchInterval time.Duration) {
		defer s.wg.Done()
		t := time.NewTimer(fetchInterval)
		for {
			select {
			case <-s.stopCh:
				t.Stop()
				return
			case <-t.C:
				l.Debug().Msg("Sweeping stale pending transactions")
				if _, err := s.Sweep(context.Background()); err != nil {
					l.Error().Err(err).Msg("Sweep failed")
				}
				t.Reset(fetchInterval)
			}
		}
	}(s.logger, s.fetchInterval)
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Debug().Msg("Service shutdown")
		close(s.stopCh)
	})
	s.wg.Wait()
}

// Run hands the job to a worker, dropping it once the service is stopped.
func (s *Service) Run(job Job) {
	select {
	case s.jobs <- job:
	case <-s.stopCh:
	}
}

// Sweep enqueues a status fetch for every stale PENDING entry not already
// being worked on and returns how many were enqueued.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	stale, err := s.txs.ListStalePending(ctx, s.now().Add(-s.staleAfter), s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale: %w", err)
	}

	n := 0
	for _, m := range stale {
		if !s.claim(m.ID) {
			continue
		}
		s.Run(s.release(m.ID, s.FetchPaymentStatus(m)))
		n++
	}

	return n, nil
}

func (s *Service) claim(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[id]; ok {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

// release drops the claim on id once job stops asking for a retry.
func (s *Service) release(id uuid.UUID, job Job) Job {
	return func() error {
		err := job()
		if !errors.Is(err, ErrRetryableError) {
			s.mu.Lock()
			delete(s.inflight, id)
			s.mu.Unlock()
		}
		return err
	}
}

// FetchPaymentStatus asks the gateway how the payment behind m settled and
// reconciles it the same way a callback would.
func (s *Service) FetchPaymentStatus(m *model.Transaction) Job {
	return func() error {
		l := s.logger.WithComponent("PendingSync.Job.FetchStatus")
		l = logger.Logger{Logger: l.With().
			Str("transaction_id", m.ID.String()).
			Str("provider", m.Provider).
			Str("external_ref", m.ExternalRef).
			Logger()}
		l.Debug().Msg("Fetching status")

		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		ctx = l.WithContext(ctx)

		now := s.now()

		in := &gateway.GetPaymentRequest{
			Provider:    m.Provider,
			ExternalRef: m.ExternalRef,
		}
		out := &gateway.PaymentResponse{}

		if err := s.gateway.GetPayment(ctx, in, out); err != nil {
			var re *gateway.RemoteError
			if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
				l.Warn().Msg("Payment unknown to gateway")
				return err
			}
			l.Error().Err(err).Msg("Status fetch failed")
			return fmt.Errorf("%w: %s", ErrRetryableError, err)
		}

		if out.Outcome == gateway.OutcomePending || out.Outcome == "" {
			l.Debug().Msg("Payment still pending")
			return nil
		}

		cb, err := callbackFor(m, out)
		if err != nil {
			return err
		}
		raw, _ := json.Marshal(out)

		res, err := s.reconciler.Apply(ctx, m.Provider, cb, raw)
		if err != nil {
			if isPermanent(err) {
				l.Warn().Err(err).Msg("Gateway status rejected")
				return err
			}
			l.Error().Err(err).Msg("Reconcile failed")
			return fmt.Errorf("%w: %s", ErrRetryableError, err)
		}

		l.Info().
			Bool("updated", res.Updated).
			Str("status", string(res.Transaction.Status)).
			Dur("duration", s.now().Sub(now)).
			Msg("Done fetching status")

		return nil
	}
}

// callbackFor builds the callback the gateway would have posted. Fields the
// status endpoint leaves out are taken from the entry itself.
func callbackFor(m *model.Transaction, out *gateway.PaymentResponse) (webhook.Callback, error) {
	cb := webhook.Callback{
		UserID:      m.UserID,
		Direction:   m.Direction,
		ExternalRef: m.ExternalRef,
		Amount:      money.Input(money.FormatMinorUnits(m.Amount)),
		Outcome:     webhook.Outcome(out.Outcome),
		Status:      out.Status,
	}

	if out.UserID != "" {
		id, err := uuid.Parse(out.UserID)
		if err != nil {
			return cb, apperr.ErrInvalidInput.With("user_id", out.UserID)
		}
		cb.UserID = id
	}
	if out.Direction != "" {
		cb.Direction = model.Direction(out.Direction)
	}
	if out.Amount != "" {
		cb.Amount = money.Input(out.Amount)
	}

	return cb, nil
}

func isPermanent(err error) bool {
	for _, target := range []error{
		apperr.ErrInvalidInput,
		apperr.ErrInvalidAmountFormat,
		apperr.ErrUserMismatch,
		apperr.ErrTypeMismatch,
		apperr.ErrAmountMismatch,
		apperr.ErrTransactionNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
