package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"move_portfolio/internal/domain/entity"
)

type fakePortfolioIndexer struct {
	fakeIndexerClient
	moveBalance *entity.FungibleAssetBalance
	balErr      error
	assets      []entity.FungibleAssetBalance
	assetsErr   error
}

func (f *fakePortfolioIndexer) GetMoveBalance(ctx context.Context, userAddress string) (*entity.FungibleAssetBalance, error) {
	if f.balErr != nil {
		return nil, f.balErr
	}
	return f.moveBalance, nil
}

func (f *fakePortfolioIndexer) GetFungibleAssets(ctx context.Context, userAddress string) ([]entity.FungibleAssetBalance, error) {
	if f.assetsErr != nil {
		return nil, f.assetsErr
	}
	return f.assets, nil
}

type fakePositionService struct {
	positions []entity.ProtocolPosition
	err       error
}

func (f *fakePositionService) GetPositions(ctx context.Context, userAddress string) ([]entity.ProtocolPosition, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.positions, nil
}

func usdcBalance(amount string) entity.FungibleAssetBalance {
	return entity.FungibleAssetBalance{
		AssetType: "0xabc::usdc::USDC",
		Amount:    amount,
		Metadata: &entity.FungibleAssetMetadata{
			Name:     "USD Coin",
			Symbol:   "USDC",
			Decimals: 6,
		},
	}
}

func TestPortfolioServiceAggregatesSections(t *testing.T) {
	indexer := &fakePortfolioIndexer{
		moveBalance: &entity.FungibleAssetBalance{
			AssetType: entity.MoveAssetType,
			Amount:    "1000000000", // 10 MOVE
		},
		assets: []entity.FungibleAssetBalance{usdcBalance("25000000")}, // 25 USDC
	}
	positions := &fakePositionService{positions: []entity.ProtocolPosition{
		{Protocol: "Canopy Core", Type: entity.PositionVault, ValueUSD: 40},
	}}
	prices := &stubPriceService{prices: map[string]float64{"MOVE": 2.0, "USDC": 1.0}}
	svc := NewPortfolioService(indexer, positions, prices, nopLogger{})

	portfolio, errs := svc.GetPortfolio(context.Background(), testUser)
	require.Empty(t, errs)

	assert.InDelta(t, 10.0, portfolio.MoveBalance, 1e-9)
	assert.InDelta(t, 20.0, portfolio.MoveValueUSD, 1e-9)

	require.Len(t, portfolio.Assets, 1)
	usdc := portfolio.Assets[0]
	assert.Equal(t, "USDC", usdc.Symbol)
	assert.Equal(t, "25", usdc.FormattedBalance)
	assert.InDelta(t, 25.0, usdc.ValueUSD, 1e-9)

	assert.InDelta(t, 40.0, portfolio.TotalProtocolValue, 1e-9)
	// 20 (MOVE) + 25 (USDC) + 40 (protocols)
	assert.InDelta(t, 85.0, portfolio.NetWorthUSD, 1e-9)
}

func TestPortfolioServiceSectionFailuresAreIsolated(t *testing.T) {
	indexer := &fakePortfolioIndexer{
		balErr: errors.New("indexer down"),
		assets: []entity.FungibleAssetBalance{usdcBalance("1000000")},
	}
	positions := &fakePositionService{err: errors.New("fullnode down")}
	prices := &stubPriceService{prices: map[string]float64{"USDC": 1.0}}
	svc := NewPortfolioService(indexer, positions, prices, nopLogger{})

	portfolio, errs := svc.GetPortfolio(context.Background(), testUser)

	require.Len(t, errs, 2)
	sections := []string{errs[0].Section, errs[1].Section}
	assert.ElementsMatch(t, []string{"balance", "positions"}, sections)

	assert.Zero(t, portfolio.MoveBalance)
	require.Len(t, portfolio.Assets, 1)
	assert.InDelta(t, 1.0, portfolio.NetWorthUSD, 1e-9)
}

func TestPortfolioServiceNoMoveBalance(t *testing.T) {
	indexer := &fakePortfolioIndexer{}
	positions := &fakePositionService{}
	prices := &stubPriceService{prices: map[string]float64{"MOVE": 2.0}}
	svc := NewPortfolioService(indexer, positions, prices, nopLogger{})

	portfolio, errs := svc.GetPortfolio(context.Background(), testUser)
	require.Empty(t, errs)
	assert.Zero(t, portfolio.MoveBalance)
	assert.Zero(t, portfolio.NetWorthUSD)
	assert.Empty(t, portfolio.Assets)
}

func TestPortfolioServiceMalformedAmountsRenderAsZero(t *testing.T) {
	indexer := &fakePortfolioIndexer{
		moveBalance: &entity.FungibleAssetBalance{
			AssetType: entity.MoveAssetType,
			Amount:    "not-a-number",
		},
		assets: []entity.FungibleAssetBalance{usdcBalance("garbage")},
	}
	positions := &fakePositionService{}
	prices := &stubPriceService{prices: map[string]float64{"MOVE": 2.0, "USDC": 1.0}}
	svc := NewPortfolioService(indexer, positions, prices, nopLogger{})

	portfolio, errs := svc.GetPortfolio(context.Background(), testUser)
	require.Empty(t, errs)
	assert.Zero(t, portfolio.MoveBalance)
	require.Len(t, portfolio.Assets, 1)
	assert.Equal(t, "0", portfolio.Assets[0].FormattedBalance)
	assert.Zero(t, portfolio.Assets[0].ValueUSD)
}
