package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/domain/entity"
	"move_portfolio/internal/pkg/metrics"
)

// fullnodeClientImpl is the fasthttp implementation of port.FullnodeClient.
// Transaction paging is rate limited so a deep history scan does not hammer
// the public fullnode.
type fullnodeClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewFullnodeClient creates a new Movement fullnode REST client.
// pagesPerSecond bounds the account-transactions paging rate.
func NewFullnodeClient(baseURL string, timeout time.Duration, pagesPerSecond int, logger *zap.Logger) port.FullnodeClient {
	if pagesPerSecond <= 0 {
		pagesPerSecond = 10
	}
	return &fullnodeClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(pagesPerSecond), pagesPerSecond),
		logger:  logger.Named("FullnodeClient"),
	}
}

func (c *fullnodeClientImpl) get(ctx context.Context, url string, dest any) error {
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
	metrics.UpstreamDuration.WithLabelValues("fullnode").Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("fullnode", "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("fullnode request aborted: %w", ctxErr)
		}
		return fmt.Errorf("failed to execute request to %s: %w", url, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("fullnode", "error").Inc()
		c.logger.Warn("Fullnode request failed",
			zap.String("url", url),
			zap.Int("statusCode", resp.StatusCode()))
		return fmt.Errorf("fullnode request to %s failed with status %d", url, resp.StatusCode())
	}

	metrics.UpstreamRequests.WithLabelValues("fullnode", "ok").Inc()

	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("failed to unmarshal fullnode response from %s: %w", url, err)
	}
	return nil
}

// GetAccountResources implements port.FullnodeClient.
func (c *fullnodeClientImpl) GetAccountResources(ctx context.Context, address string) ([]entity.MoveResource, error) {
	var resources []entity.MoveResource
	url := fmt.Sprintf("%s/accounts/%s/resources", c.baseURL, address)
	if err := c.get(ctx, url, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// GetAccountTransactions implements port.FullnodeClient.
func (c *fullnodeClientImpl) GetAccountTransactions(ctx context.Context, address string, start, limit int) ([]entity.AccountTransaction, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fullnode request aborted: %w", err)
	}

	var txs []entity.AccountTransaction
	url := fmt.Sprintf("%s/accounts/%s/transactions?start=%d&limit=%d", c.baseURL, address, start, limit)
	if err := c.get(ctx, url, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
