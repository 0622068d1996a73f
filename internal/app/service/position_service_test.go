package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"move_portfolio/internal/domain/entity"
)

type fakePositionFullnode struct {
	resourcesByAddr map[string][]entity.MoveResource
	errByAddr       map[string]error
}

func (f *fakePositionFullnode) GetAccountResources(ctx context.Context, address string) ([]entity.MoveResource, error) {
	if err := f.errByAddr[address]; err != nil {
		return nil, err
	}
	return f.resourcesByAddr[address], nil
}

func (f *fakePositionFullnode) GetAccountTransactions(ctx context.Context, address string, start, limit int) ([]entity.AccountTransaction, error) {
	return nil, nil
}

type fakeIndexerClient struct {
	objects []entity.MoveObject
	objErr  error
}

func (f *fakeIndexerClient) GetFungibleAssets(ctx context.Context, userAddress string) ([]entity.FungibleAssetBalance, error) {
	return nil, nil
}

func (f *fakeIndexerClient) GetMoveBalance(ctx context.Context, userAddress string) (*entity.FungibleAssetBalance, error) {
	return nil, nil
}

func (f *fakeIndexerClient) GetActivities(ctx context.Context, ownerAddress string, limit int) ([]entity.FungibleAssetActivity, error) {
	return nil, nil
}

func (f *fakeIndexerClient) GetOwnedObjects(ctx context.Context, ownerAddress string) ([]entity.MoveObject, error) {
	if f.objErr != nil {
		return nil, f.objErr
	}
	return f.objects, nil
}

func (f *fakeIndexerClient) Forward(ctx context.Context, endpoint, query string, variables map[string]any) ([]byte, error) {
	return nil, nil
}

type fakeRewardService struct {
	history *entity.RewardHistory
	err     error
}

func (f *fakeRewardService) GetRewardHistory(ctx context.Context, userAddress string) (*entity.RewardHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

type stubPriceService struct {
	prices map[string]float64
}

func (s *stubPriceService) GetPrice(ctx context.Context, symbol string) (float64, error) {
	return s.prices[symbol], nil
}

func (s *stubPriceService) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	out := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		out[sym] = s.prices[sym]
	}
	return out, nil
}

func (s *stubPriceService) Convert(ctx context.Context, valueUSD float64, currency string) float64 {
	return valueUSD
}

func newTestPositionService(fullnode *fakePositionFullnode, indexer *fakeIndexerClient, rewards *fakeRewardService) *positionServiceImpl {
	prices := &stubPriceService{prices: map[string]float64{"MOVE": 2.0}}
	svc := NewPositionService(fullnode, indexer, rewards, prices, 4, nopLogger{})
	return svc.(*positionServiceImpl)
}

func TestPositionServiceMergesSameProtocolTypeSymbol(t *testing.T) {
	fullnode := &fakePositionFullnode{
		resourcesByAddr: map[string][]entity.MoveResource{
			testUser: {
				{
					Type: "0xcanopy::multi_rewards::UserData",
					Data: map[string]any{"amount": "10000000000"},
				},
			},
			"0xobj1": {
				{
					Type: "0xcanopy::multi_rewards::StakePosition",
					Data: map[string]any{"amount": "5000000000"},
				},
			},
		},
	}
	indexer := &fakeIndexerClient{objects: []entity.MoveObject{{ObjectAddress: "0xobj1"}}}
	rewards := &fakeRewardService{history: &entity.RewardHistory{
		Summary: entity.RewardSummary{TotalMoveTokens: 1.5},
	}}
	svc := newTestPositionService(fullnode, indexer, rewards)

	positions, err := svc.GetPositions(context.Background(), testUser)
	require.NoError(t, err)

	require.Len(t, positions, 1)
	pos := positions[0]
	assert.Equal(t, "Canopy Staking", pos.Protocol)
	assert.Equal(t, entity.PositionStaking, pos.Type)
	assert.Equal(t, "MOVE", pos.AssetSymbol)
	assert.Equal(t, "15000000000", pos.Amount)
	assert.Equal(t, "150.0000", pos.AmountFormatted)
	assert.InDelta(t, 300.0, pos.ValueUSD, 1e-9)
	assert.InDelta(t, 3.0, pos.TotalClaimed, 1e-9)
}

func TestPositionServiceClassifiesVaultAndLending(t *testing.T) {
	fullnode := &fakePositionFullnode{
		resourcesByAddr: map[string][]entity.MoveResource{
			testUser: {
				{
					Type: canopyCoreVaults + "::vault::VaultToken<0x1::aptos_coin::AptosCoin>",
					Data: map[string]any{"value": "250000000"},
				},
			},
			"0xobj1": {
				{
					Type: "0xlb::lending::UserAccount",
					Data: map[string]any{"coin": map[string]any{"value": "100000000"}},
				},
			},
		},
	}
	indexer := &fakeIndexerClient{objects: []entity.MoveObject{{ObjectAddress: "0xobj1"}}}
	rewards := &fakeRewardService{err: errors.New("rewards down")}
	svc := newTestPositionService(fullnode, indexer, rewards)

	positions, err := svc.GetPositions(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	vault := positions[0]
	assert.Equal(t, "Canopy Core", vault.Protocol)
	assert.Equal(t, entity.PositionVault, vault.Type)
	assert.Equal(t, "MOVE", vault.AssetSymbol)
	assert.Equal(t, "2.5000", vault.AmountFormatted)

	lending := positions[1]
	assert.Equal(t, "LayerBank", lending.Protocol)
	assert.Equal(t, entity.PositionLending, lending.Type)
	assert.Equal(t, "1.0000", lending.AmountFormatted)
	assert.Equal(t, []string{"LayerBank Points"}, lending.Rewards)
}

func TestPositionServiceSumsNestedUserPools(t *testing.T) {
	fullnode := &fakePositionFullnode{
		resourcesByAddr: map[string][]entity.MoveResource{
			testUser: {
				{
					Type: "0xcanopy::multi_rewards::UserData",
					Data: map[string]any{
						"user_pools": map[string]any{
							"data": []any{
								map[string]any{"value": map[string]any{"stake_amount": "100000000"}},
								map[string]any{"value": map[string]any{"staked": "200000000"}},
							},
						},
					},
				},
			},
		},
	}
	svc := newTestPositionService(fullnode, &fakeIndexerClient{}, &fakeRewardService{})

	positions, err := svc.GetPositions(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "3.0000", positions[0].AmountFormatted)
}

func TestPositionServiceKeepsLoneSentinel(t *testing.T) {
	fullnode := &fakePositionFullnode{
		resourcesByAddr: map[string][]entity.MoveResource{
			testUser: {
				{
					Type: "0xcanopy::farming::Staker",
					Data: map[string]any{},
				},
			},
		},
	}
	svc := newTestPositionService(fullnode, &fakeIndexerClient{}, &fakeRewardService{})

	positions, err := svc.GetPositions(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, entity.UnknownAmount, positions[0].AmountFormatted)
	assert.Zero(t, positions[0].ValueUSD)
}

func TestPositionServiceNilRewardHistory(t *testing.T) {
	fullnode := &fakePositionFullnode{
		resourcesByAddr: map[string][]entity.MoveResource{
			testUser: {
				{
					Type: "0xcanopy::multi_rewards::UserData",
					Data: map[string]any{"amount": "10000000000"},
				},
			},
		},
	}
	// The reward service may return no history at all; the aggregation must
	// still produce positions with a zero claimed total.
	svc := newTestPositionService(fullnode, &fakeIndexerClient{}, &fakeRewardService{history: nil})

	positions, err := svc.GetPositions(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Zero(t, positions[0].TotalClaimed)
}

func TestSuppressUnknownsDropsSentinelWithRealSibling(t *testing.T) {
	positions := []entity.ProtocolPosition{
		{Protocol: "Canopy Staking", Type: entity.PositionStaking, AssetSymbol: "MOVE", AmountFormatted: "10.0000"},
		{Protocol: "Canopy Staking", Type: entity.PositionStaking, AssetSymbol: "stMOVE", AmountFormatted: entity.UnknownAmount},
		{Protocol: "LayerBank", Type: entity.PositionLending, AssetSymbol: "MOVE", AmountFormatted: entity.UnknownAmount},
	}

	filtered := suppressUnknowns(positions)
	require.Len(t, filtered, 2)
	assert.Equal(t, "10.0000", filtered[0].AmountFormatted)
	assert.Equal(t, "LayerBank", filtered[1].Protocol)
}

func TestPositionServiceDegradesOnUpstreamFailure(t *testing.T) {
	fullnode := &fakePositionFullnode{
		errByAddr: map[string]error{testUser: errors.New("fullnode down")},
		resourcesByAddr: map[string][]entity.MoveResource{
			"0xobj1": {
				{
					Type: "0xcanopy::farming::Staker",
					Data: map[string]any{"active_stake": "400000000"},
				},
			},
		},
	}
	indexer := &fakeIndexerClient{objects: []entity.MoveObject{{ObjectAddress: "0xobj1"}}}
	svc := newTestPositionService(fullnode, indexer, &fakeRewardService{})

	positions, err := svc.GetPositions(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "4.0000", positions[0].AmountFormatted)
}

func TestSymbolFromTypeTag(t *testing.T) {
	tests := []struct {
		typeTag string
		want    string
	}{
		{"0x1::aptos_coin::AptosCoin", "MOVE"},
		{"0xabc::vault::VaultToken<0x1::aptos_coin::AptosCoin>", "MOVE"},
		{"0xabc::tokens::WETH", "WETH"},
		{"", "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, symbolFromTypeTag(tt.typeTag), tt.typeTag)
	}
}
