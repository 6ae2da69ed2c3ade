// Package scheduler runs periodic background jobs inside the server process.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidConfig  = errors.New("invalid scheduler configuration")
	ErrAlreadyRunning = errors.New("expiry sweep already in progress")
)

// QuotationExpirer expires submitted quotations whose validity has passed
type QuotationExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time, limit int) (int, error)
}

// ExpirySweeperConfig holds configuration for the quotation expiry sweeper
type ExpirySweeperConfig struct {
	// Interval is how often overdue quotations are looked up
	Interval time.Duration

	// BatchSize caps the quotations expired per lookup
	BatchSize int

	// MaxBatches caps the lookups of a single sweep
	MaxBatches int
}

// DefaultExpirySweeperConfig returns default sweeper configuration
func DefaultExpirySweeperConfig() ExpirySweeperConfig {
	return ExpirySweeperConfig{
		Interval:   5 * time.Minute,
		BatchSize:  100,
		MaxBatches: 50,
	}
}

// Validate checks the configuration
func (c ExpirySweeperConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	if c.MaxBatches <= 0 {
		return fmt.Errorf("%w: max batches must be positive", ErrInvalidConfig)
	}
	return nil
}

// ExpirySweeper periodically moves overdue quotations to expired
type ExpirySweeper struct {
	config  ExpirySweeperConfig
	expirer QuotationExpirer
	logger  *zap.Logger
	now     func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	sweeping  sync.Mutex
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(config ExpirySweeperConfig, expirer QuotationExpirer, logger *zap.Logger) (*ExpirySweeper, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpirySweeper{
		config:  config,
		expirer: expirer,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Start starts the sweep loop
func (s *ExpirySweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Quotation expiry sweeper started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)
	return nil
}

// Stop stops the sweep loop and waits for an in-flight sweep
func (s *ExpirySweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Quotation expiry sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *ExpirySweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *ExpirySweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("Quotation expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep expires overdue quotations, batch after batch, until a batch comes
// back short or MaxBatches is reached. It returns the number expired.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	if !s.sweeping.TryLock() {
		return 0, ErrAlreadyRunning
	}
	defer s.sweeping.Unlock()

	now := s.now()
	total := 0
	for range s.config.MaxBatches {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.expirer.ExpireOverdue(ctx, now, s.config.BatchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < s.config.BatchSize {
			break
		}
	}

	if total > 0 {
		s.logger.Info("Expired overdue quotations", zap.Int("count", total), zap.Time("as_of", now))
	}
	return total, nil
}
