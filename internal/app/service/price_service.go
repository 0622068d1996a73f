package service

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/pkg/metrics"
)

const ratesCacheKey = "fiat_rates"

// priceServiceImpl serves USD unit prices out of a stale-while-revalidate
// cache. A cold cache blocks on the first fetch; a stale cache answers
// immediately and refreshes in the background. Concurrent refreshes are
// coalesced into one upstream call.
type priceServiceImpl struct {
	quotes         port.QuoteClient
	logger         port.Logger
	ttl            time.Duration
	refreshTimeout time.Duration

	mu        sync.RWMutex
	prices    map[string]float64
	fetchedAt time.Time

	group      singleflight.Group
	rateCache  *gocache.Cache
	refreshing sync.Mutex
}

// NewPriceService creates a price service backed by the given quote provider.
func NewPriceService(
	quotes port.QuoteClient,
	ttl time.Duration,
	rateTTL time.Duration,
	refreshTimeout time.Duration,
	logger port.Logger,
) port.PriceService {
	return &priceServiceImpl{
		quotes:         quotes,
		logger:         logger,
		ttl:            ttl,
		refreshTimeout: refreshTimeout,
		rateCache:      gocache.New(rateTTL, 2*rateTTL),
	}
}

// snapshot returns the cached price table and whether it is populated/fresh.
func (s *priceServiceImpl) snapshot() (map[string]float64, bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	populated := s.prices != nil
	fresh := populated && time.Since(s.fetchedAt) < s.ttl
	return s.prices, populated, fresh
}

// refresh fetches a new price table from the provider. All concurrent callers
// share a single upstream request.
func (s *priceServiceImpl) refresh(ctx context.Context) (map[string]float64, error) {
	result, err, _ := s.group.Do("prices", func() (any, error) {
		prices, err := s.quotes.Prices(ctx)
		if err != nil {
			metrics.PriceRefreshes.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.PriceRefreshes.WithLabelValues("ok").Inc()

		s.mu.Lock()
		s.prices = prices
		s.fetchedAt = time.Now()
		s.mu.Unlock()

		s.logger.Debug("Refreshed price cache", "symbols", len(prices))
		return prices, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]float64), nil
}

// refreshInBackground kicks a detached refresh if one is not already running.
func (s *priceServiceImpl) refreshInBackground() {
	if !s.refreshing.TryLock() {
		return
	}
	go func() {
		defer s.refreshing.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()
		if _, err := s.refresh(ctx); err != nil {
			s.logger.Warn("Background price refresh failed", "error", err)
		}
	}()
}

// table returns a usable price table, blocking only when the cache has never
// been populated. Stale entries are served while a background refresh runs.
func (s *priceServiceImpl) table(ctx context.Context) map[string]float64 {
	prices, populated, fresh := s.snapshot()
	if fresh {
		return prices
	}

	if !populated {
		refreshed, err := s.refresh(ctx)
		if err != nil {
			// Zero prices; callers decide whether to substitute a fallback.
			s.logger.Warn("Initial price fetch failed, serving zero prices", "error", err)
			return nil
		}
		return refreshed
	}

	s.refreshInBackground()
	return prices
}

// GetPrice implements port.PriceService. Unknown symbols resolve to 0.
func (s *priceServiceImpl) GetPrice(ctx context.Context, symbol string) (float64, error) {
	prices := s.table(ctx)
	return prices[strings.ToUpper(symbol)], nil
}

// GetPrices implements port.PriceService.
func (s *priceServiceImpl) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	table := s.table(ctx)
	result := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		result[symbol] = table[strings.ToUpper(symbol)]
	}
	return result, nil
}

// Convert implements port.PriceService. A missing or failed rate lookup leaves
// the value unconverted rather than failing the caller.
func (s *priceServiceImpl) Convert(ctx context.Context, valueUSD float64, currency string) float64 {
	currency = strings.ToUpper(currency)
	if currency == "" || currency == "USD" || currency == "MOVE" {
		return valueUSD
	}

	rates := s.fiatRates(ctx)
	multiplier, ok := rates[currency]
	if !ok || multiplier <= 0 {
		return valueUSD
	}
	return valueUSD * multiplier
}

func (s *priceServiceImpl) fiatRates(ctx context.Context) map[string]float64 {
	if cached, ok := s.rateCache.Get(ratesCacheKey); ok {
		return cached.(map[string]float64)
	}

	result, err, _ := s.group.Do(ratesCacheKey, func() (any, error) {
		rates, err := s.quotes.Rates(ctx)
		if err != nil {
			return nil, err
		}
		s.rateCache.Set(ratesCacheKey, rates, gocache.DefaultExpiration)
		return rates, nil
	})
	if err != nil {
		s.logger.Warn("Fiat rate fetch failed", "error", err)
		return map[string]float64{"USD": 1, "MOVE": 1}
	}
	return result.(map[string]float64)
}
