package exchange

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/centavo/centavo/internal/utils"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// staleAfter is how old a snapshot may get before it is reported as stale.
const staleAfter = 24 * time.Hour

// Service owns the rate snapshot. A single background goroutine refreshes it
// on an interval; everything else only reads the latest snapshot under a
// read lock. It satisfies currency.RateSource.
type Service struct {
	client       Client
	clock        utils.Clock
	refreshEvery time.Duration

	mu       sync.RWMutex
	status   Status
	snapshot Snapshot
	lastErr  error

	stop     chan struct{}
	stopOnce sync.Once
}

func NewService(client Client, clock utils.Clock, refreshEvery time.Duration) *Service {
	if refreshEvery <= 0 {
		refreshEvery = time.Hour
	}
	return &Service{
		client:       client,
		clock:        clock,
		refreshEvery: refreshEvery,
		status:       StatusIdle,
		stop:         make(chan struct{}),
	}
}

// Start launches the background refresh loop. The first fetch happens
// immediately so the cache is warm shortly after boot.
func (s *Service) Start() {
	go s.run()
}

// Stop terminates the background loop. Safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Service) run() {
	if err := s.Refresh(context.Background()); err != nil {
		log.Warnf("initial exchange rate fetch failed: %v", err)
	}
	ticker := time.NewTicker(s.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(context.Background()); err != nil {
				log.Warnf("exchange rate refresh failed: %v", err)
			}
		case <-s.stop:
			return
		}
	}
}

// Refresh fetches a fresh snapshot. A failed fetch keeps the previous
// snapshot in place but flags it stale: old rates marked as such beat no
// rates at all.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusFetching {
		s.mu.Unlock()
		return nil
	}
	s.status = StatusFetching
	s.mu.Unlock()

	snapshot, err := s.client.FetchRates(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		if s.snapshot.FetchedAt.IsZero() {
			s.status = StatusError
		} else {
			s.status = StatusStale
		}
		return err
	}

	snapshot.FetchedAt = s.clock.Now()
	s.snapshot = snapshot
	s.status = StatusReady
	s.lastErr = nil
	log.Infof("exchange rates refreshed: %d currencies relative to %s", len(snapshot.Rates), snapshot.Base)
	return nil
}

// Current returns the latest snapshot together with its effective status.
// A ready snapshot older than the freshness window is reported as stale.
func (s *Service) Current() (Snapshot, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.effectiveStatus()
}

// Online reports whether fresh live rates are being served.
func (s *Service) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveStatus() == StatusReady
}

// LastError returns the error of the most recent failed fetch, if any.
func (s *Service) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Rate derives the from->to rate from the base-relative snapshot. Stale
// snapshots still serve rates; only a missing snapshot or unknown code
// returns ok=false.
func (s *Service) Rate(from string, to string) (decimal.Decimal, bool) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot.FetchedAt.IsZero() {
		return decimal.Zero, false
	}

	fromRate, ok := s.baseRate(from)
	if !ok {
		return decimal.Zero, false
	}
	toRate, ok := s.baseRate(to)
	if !ok {
		return decimal.Zero, false
	}
	if fromRate.IsZero() {
		return decimal.Zero, false
	}
	return toRate.Div(fromRate), true
}

// baseRate returns how many units of code one unit of the base buys.
// Callers must hold at least the read lock.
func (s *Service) baseRate(code string) (decimal.Decimal, bool) {
	if code == s.snapshot.Base {
		return decimal.NewFromInt(1), true
	}
	rate, ok := s.snapshot.Rates[code]
	return rate, ok
}

// effectiveStatus derives staleness from snapshot age. Callers must hold at
// least the read lock.
func (s *Service) effectiveStatus() Status {
	if s.status == StatusReady && s.clock.Now().Sub(s.snapshot.FetchedAt) > staleAfter {
		return StatusStale
	}
	return s.status
}
