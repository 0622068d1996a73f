package httpclient

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/pkg/metrics"
)

// coingeckoIDs maps token symbols to CoinGecko coin ids. Bridged variants
// share the id of their canonical asset.
var coingeckoIDs = map[string]string{
	"MOVE":   "movement",
	"USDT":   "tether",
	"USDT.E": "tether",
	"USDC":   "usd-coin",
	"USDC.E": "usd-coin",
	"ETH":    "ethereum",
	"WETH":   "weth",
	"BTC":    "bitcoin",
	"WBTC":   "wrapped-bitcoin",
}

// rateReferenceID is the coin whose eur/gbp quotes are used to derive fiat
// conversion multipliers relative to USD.
const rateReferenceID = "tether"

type quoteRow struct {
	USD float64 `json:"usd"`
	EUR float64 `json:"eur"`
	GBP float64 `json:"gbp"`
}

// quoteClientImpl is the fasthttp implementation of port.QuoteClient.
type quoteClientImpl struct {
	client     *fasthttp.Client
	baseURL    string
	timeout    time.Duration
	maxRetries int
	logger     *zap.Logger
}

// NewQuoteClient creates a new price-quote client against the CoinGecko
// simple-price API.
func NewQuoteClient(baseURL string, timeout time.Duration, maxRetries int, logger *zap.Logger) port.QuoteClient {
	return &quoteClientImpl{
		client:     &fasthttp.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		maxRetries: maxRetries,
		logger:     logger.Named("QuoteClient"),
	}
}

// fetch performs the batched simple-price lookup for every known coin id,
// retrying transport failures with exponential backoff.
func (c *quoteClientImpl) fetch(ctx context.Context) (map[string]quoteRow, error) {
	ids := make([]string, 0, len(coingeckoIDs))
	seen := make(map[string]struct{}, len(coingeckoIDs))
	for _, id := range coingeckoIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd,eur,gbp", c.baseURL, strings.Join(ids, ","))

	var rows map[string]quoteRow
	operation := func() error {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)
		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")

		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)

		started := time.Now()
		var err error
		if deadline, ok := ctx.Deadline(); ok {
			err = c.client.DoDeadline(req, resp, deadline)
		} else {
			err = c.client.DoTimeout(req, resp, c.timeout)
		}
		metrics.UpstreamDuration.WithLabelValues("quotes").Observe(time.Since(started).Seconds())

		if err != nil {
			metrics.UpstreamRequests.WithLabelValues("quotes", "error").Inc()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return backoff.Permanent(fmt.Errorf("quote request aborted: %w", ctxErr))
			}
			return fmt.Errorf("failed to execute request to %s: %w", url, err)
		}

		if resp.StatusCode() != fasthttp.StatusOK {
			metrics.UpstreamRequests.WithLabelValues("quotes", "error").Inc()
			return fmt.Errorf("quote request to %s failed with status %d", url, resp.StatusCode())
		}

		metrics.UpstreamRequests.WithLabelValues("quotes", "ok").Inc()

		rows = make(map[string]quoteRow)
		if err := json.Unmarshal(resp.Body(), &rows); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to unmarshal quote response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return rows, nil
}

// Prices implements port.QuoteClient.
func (c *quoteClientImpl) Prices(ctx context.Context) (map[string]float64, error) {
	rows, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(coingeckoIDs))
	for symbol, id := range coingeckoIDs {
		if row, ok := rows[id]; ok && row.USD > 0 {
			prices[symbol] = row.USD
		}
	}
	c.logger.Debug("Fetched quotes", zap.Int("priced", len(prices)))
	return prices, nil
}

// Rates implements port.QuoteClient. Multipliers are derived from the
// reference stablecoin's fiat quotes; USD and MOVE stay at 1.
func (c *quoteClientImpl) Rates(ctx context.Context) (map[string]float64, error) {
	rows, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	rates := map[string]float64{"USD": 1, "MOVE": 1}
	ref, ok := rows[rateReferenceID]
	if !ok || ref.USD <= 0 {
		return rates, nil
	}
	if ref.EUR > 0 {
		rates["EUR"] = ref.EUR / ref.USD
	}
	if ref.GBP > 0 {
		rates["GBP"] = ref.GBP / ref.USD
	}
	return rates, nil
}
