package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/domain/entity"
	"move_portfolio/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Headers attached to every indexer call. The Origin header keeps the public
// indexer's allow-list happy.
const (
	indexerUserAgent = "MovementWallet/1.0"
	indexerOrigin    = "https://explorer.movementnetwork.xyz"
)

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   jsoniter.RawMessage `json:"data"`
	Errors []graphQLError      `json:"errors"`
}

// indexerClientImpl is the fasthttp implementation of port.IndexerClient.
type indexerClientImpl struct {
	client   *fasthttp.Client
	endpoint string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewIndexerClient creates a new Movement indexer client bound to one
// GraphQL endpoint.
func NewIndexerClient(endpoint string, timeout time.Duration, logger *zap.Logger) port.IndexerClient {
	return &indexerClientImpl{
		client:   &fasthttp.Client{},
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  timeout,
		logger:   logger.Named("IndexerClient"),
	}
}

// post executes a GraphQL document against the given endpoint and returns the
// raw response body. Context cancellation is reported as the context's error
// so callers can tell an abort from an upstream failure.
func (c *indexerClientImpl) post(ctx context.Context, endpoint, query string, variables map[string]any) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("User-Agent", indexerUserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Origin", indexerOrigin)
	req.SetBody(payload)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	started := time.Now()
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	metrics.UpstreamDuration.WithLabelValues("indexer").Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("indexer", "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("indexer request aborted: %w", ctxErr)
		}
		c.logger.Error("Failed to execute indexer request", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", endpoint, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("indexer", "error").Inc()
		c.logger.Error("Indexer request failed",
			zap.String("endpoint", endpoint),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return nil, fmt.Errorf("indexer request to %s failed with status %d", endpoint, resp.StatusCode())
	}

	metrics.UpstreamRequests.WithLabelValues("indexer", "ok").Inc()

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

// execute runs a query against the client's own endpoint and unmarshals the
// data payload into dest, surfacing GraphQL error envelopes as errors.
func (c *indexerClientImpl) execute(ctx context.Context, query string, variables map[string]any, dest any) error {
	body, err := c.post(ctx, c.endpoint, query, variables)
	if err != nil {
		return err
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal indexer response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("graphql errors: %s", strings.Join(msgs, ", "))
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal indexer data: %w", err)
	}
	return nil
}

// Forward implements port.IndexerClient for the proxy endpoint: the upstream
// body (including any GraphQL error envelope) is returned verbatim.
func (c *indexerClientImpl) Forward(ctx context.Context, endpoint, query string, variables map[string]any) ([]byte, error) {
	return c.post(ctx, endpoint, query, variables)
}

// GetFungibleAssets implements port.IndexerClient.
func (c *indexerClientImpl) GetFungibleAssets(ctx context.Context, userAddress string) ([]entity.FungibleAssetBalance, error) {
	var data struct {
		Balances []entity.FungibleAssetBalance `json:"current_fungible_asset_balances"`
	}
	if err := c.execute(ctx, getFungibleAssetsQuery, map[string]any{"userAddress": userAddress}, &data); err != nil {
		return nil, err
	}
	c.logger.Debug("Fetched fungible assets", zap.String("address", userAddress), zap.Int("count", len(data.Balances)))
	return data.Balances, nil
}

// GetMoveBalance implements port.IndexerClient. The direct asset-type query is
// tried first; an empty result or an error falls back to a symbol search over
// all assets. A nil result means the address holds no MOVE.
func (c *indexerClientImpl) GetMoveBalance(ctx context.Context, userAddress string) (*entity.FungibleAssetBalance, error) {
	var data struct {
		Balances []entity.FungibleAssetBalance `json:"current_fungible_asset_balances"`
	}
	err := c.execute(ctx, getMoveBalanceQuery, map[string]any{
		"userAddress": userAddress,
		"assetType":   entity.MoveAssetType,
	}, &data)
	if err == nil && len(data.Balances) > 0 {
		return &data.Balances[0], nil
	}
	if err != nil {
		c.logger.Warn("Direct MOVE balance query failed, falling back to asset search",
			zap.String("address", userAddress), zap.Error(err))
	}

	assets, fallbackErr := c.GetFungibleAssets(ctx, userAddress)
	if fallbackErr != nil {
		if err != nil {
			return nil, fmt.Errorf("move balance lookup failed: %w", err)
		}
		return nil, fallbackErr
	}

	for i := range assets {
		meta := assets[i].Metadata
		if meta == nil {
			continue
		}
		if strings.EqualFold(meta.Symbol, "MOVE") || strings.Contains(strings.ToLower(meta.Name), "move") {
			return &assets[i], nil
		}
	}
	return nil, nil
}

// GetActivities implements port.IndexerClient.
func (c *indexerClientImpl) GetActivities(ctx context.Context, ownerAddress string, limit int) ([]entity.FungibleAssetActivity, error) {
	var data struct {
		Activities []entity.FungibleAssetActivity `json:"fungible_asset_activities"`
	}
	variables := map[string]any{
		"ownerAddress": ownerAddress,
		"limit":        limit,
		"offset":       0,
	}
	if err := c.execute(ctx, getActivitiesQuery, variables, &data); err != nil {
		return nil, err
	}
	return data.Activities, nil
}

// GetOwnedObjects implements port.IndexerClient.
func (c *indexerClientImpl) GetOwnedObjects(ctx context.Context, ownerAddress string) ([]entity.MoveObject, error) {
	var data struct {
		Objects []entity.MoveObject `json:"current_objects"`
	}
	if err := c.execute(ctx, getUserObjectsQuery, map[string]any{"ownerAddress": ownerAddress}, &data); err != nil {
		return nil, err
	}
	return data.Objects, nil
}
