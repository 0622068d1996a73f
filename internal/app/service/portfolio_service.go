package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/domain/entity"
	"move_portfolio/internal/pkg/utils"
)

// portfolioServiceImpl joins wallet balances, fungible assets and protocol
// positions into one valued view. Sections fail independently: a dead
// upstream produces a PortfolioError for its section and an otherwise
// complete portfolio.
type portfolioServiceImpl struct {
	indexer   port.IndexerClient
	positions port.PositionService
	prices    port.PriceService
	logger    port.Logger
}

// NewPortfolioService creates a portfolio aggregation service.
func NewPortfolioService(
	indexer port.IndexerClient,
	positions port.PositionService,
	prices port.PriceService,
	logger port.Logger,
) port.PortfolioService {
	return &portfolioServiceImpl{
		indexer:   indexer,
		positions: positions,
		prices:    prices,
		logger:    logger,
	}
}

// GetPortfolio implements port.PortfolioService.
func (s *portfolioServiceImpl) GetPortfolio(ctx context.Context, userAddress string) (*entity.Portfolio, []entity.PortfolioError) {
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		sectionErrs []entity.PortfolioError

		moveBalance *entity.FungibleAssetBalance
		assets      []entity.FungibleAssetBalance
		positions   []entity.ProtocolPosition
	)

	fail := func(section string, err error) {
		s.logger.Warn("Portfolio section failed", "address", userAddress, "section", section, "error", err)
		mu.Lock()
		sectionErrs = append(sectionErrs, entity.PortfolioError{
			Address: userAddress,
			Section: section,
			Message: err.Error(),
		})
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		balance, err := s.indexer.GetMoveBalance(ctx, userAddress)
		if err != nil {
			fail("balance", err)
			return
		}
		moveBalance = balance
	}()
	go func() {
		defer wg.Done()
		fetched, err := s.indexer.GetFungibleAssets(ctx, userAddress)
		if err != nil {
			fail("assets", err)
			return
		}
		assets = fetched
	}()
	go func() {
		defer wg.Done()
		fetched, err := s.positions.GetPositions(ctx, userAddress)
		if err != nil {
			fail("positions", err)
			return
		}
		positions = fetched
	}()
	wg.Wait()

	portfolio := &entity.Portfolio{
		Address:           userAddress,
		ProtocolPositions: positions,
	}

	movePrice, _ := s.prices.GetPrice(ctx, "MOVE")
	if moveBalance != nil {
		amount, err := utils.RawToDecimal(moveBalance.Amount, entity.MoveDecimals)
		if err != nil {
			s.logger.Warn("Malformed MOVE balance", "address", userAddress, "amount", moveBalance.Amount)
			amount = decimal.Zero
		}
		portfolio.MoveBalance = amount.InexactFloat64()
		portfolio.MoveValueUSD = amount.Mul(decimal.NewFromFloat(movePrice)).InexactFloat64()
	}

	portfolio.Assets = s.valueAssets(ctx, assets)

	var assetsValue float64
	for _, asset := range portfolio.Assets {
		assetsValue += asset.ValueUSD
	}
	var protocolValue float64
	for _, pos := range positions {
		protocolValue += pos.ValueUSD
	}

	portfolio.TotalProtocolValue = protocolValue
	portfolio.NetWorthUSD = portfolio.MoveValueUSD + assetsValue + protocolValue

	return portfolio, sectionErrs
}

// valueAssets converts raw balance rows into display-ready holdings with
// prices attached.
func (s *portfolioServiceImpl) valueAssets(ctx context.Context, assets []entity.FungibleAssetBalance) []entity.TokenBalance {
	if len(assets) == 0 {
		return nil
	}

	symbols := make([]string, 0, len(assets))
	for i := range assets {
		symbols = append(symbols, assetSymbol(&assets[i]))
	}
	prices, err := s.prices.GetPrices(ctx, symbols)
	if err != nil {
		s.logger.Warn("Asset pricing failed", "error", err)
		prices = map[string]float64{}
	}

	balances := make([]entity.TokenBalance, 0, len(assets))
	for i := range assets {
		asset := &assets[i]
		symbol := symbols[i]
		decimals := uint8(entity.MoveDecimals)
		name := symbol
		var iconURI string
		if asset.Metadata != nil {
			decimals = asset.Metadata.Decimals
			name = asset.Metadata.Name
			iconURI = asset.Metadata.IconURI
		}

		amount, err := utils.RawToDecimal(asset.Amount, decimals)
		if err != nil {
			s.logger.Warn("Malformed asset amount", "assetType", asset.AssetType, "amount", asset.Amount)
			amount = decimal.Zero
		}
		price := prices[symbol]

		balances = append(balances, entity.TokenBalance{
			AssetType:        asset.AssetType,
			Symbol:           symbol,
			Name:             name,
			Decimals:         decimals,
			RawAmount:        asset.Amount,
			FormattedBalance: utils.FormatRawAmountOrZero(asset.Amount, decimals),
			IconURI:          iconURI,
			PriceUSD:         price,
			ValueUSD:         amount.Mul(decimal.NewFromFloat(price)).InexactFloat64(),
		})
	}
	return balances
}

func assetSymbol(asset *entity.FungibleAssetBalance) string {
	if asset.Metadata != nil && asset.Metadata.Symbol != "" {
		return asset.Metadata.Symbol
	}
	return symbolFromTypeTag(asset.AssetType)
}
