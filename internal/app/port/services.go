package port

import (
	"context"

	"move_portfolio/internal/domain/entity"
)

// PriceService serves best-effort USD unit prices with a stale-while-revalidate
// cache. Unknown symbols resolve to 0, not an error.
type PriceService interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
	GetPrices(ctx context.Context, symbols []string) (map[string]float64, error)
	// Convert applies the fiat conversion multiplier for the given display
	// currency (USD and MOVE are identity).
	Convert(ctx context.Context, valueUSD float64, currency string) float64
}

// RewardService reconstructs reward-claim history from the transaction log.
type RewardService interface {
	GetRewardHistory(ctx context.Context, userAddress string) (*entity.RewardHistory, error)
}

// PositionService aggregates protocol positions across storage namespaces.
type PositionService interface {
	GetPositions(ctx context.Context, userAddress string) ([]entity.ProtocolPosition, error)
}

// HistoryService reconstructs a balance time series from the activity log.
type HistoryService interface {
	GetBalanceHistory(ctx context.Context, userAddress string) (*entity.BalanceHistory, error)
}

// PortfolioService joins balances, assets and positions into one view.
type PortfolioService interface {
	GetPortfolio(ctx context.Context, userAddress string) (*entity.Portfolio, []entity.PortfolioError)
}
