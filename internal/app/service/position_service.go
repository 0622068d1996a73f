package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/domain/entity"
	"move_portfolio/internal/pkg/utils"
)

// canopyCoreVaults is the address of the Canopy core vault contract; any
// resource type tagged with it holds vault shares.
const canopyCoreVaults = "0x6a01d5761d43a5b5a0ccbfc42edf2d02c0611464aae99a2ea0e0d4819f0550b5"

const (
	protocolCanopyCore    = "Canopy Core"
	protocolCanopyStaking = "Canopy Staking"
	protocolLayerBank     = "LayerBank"
)

// Amount field aliases per position family, checked in order.
var (
	vaultAmountKeys   = []string{"value", "amount"}
	stakeDirectKeys   = []string{"amount", "active_stake", "stake", "balance", "staked", "value"}
	stakeObjectKeys   = []string{"amount", "staked_amount", "balance", "value", "active_stake", "staked", "deposited", "deposit", "coins"}
	lendingAmountKeys = []string{"amount", "balance", "share"}
	poolEntryKeys     = []string{"stake_amount", "amount", "staked", "balance", "value", "active_stake", "staked_amount", "deposited", "deposit", "coins", "stake"}
)

// positionServiceImpl aggregates protocol positions out of account-level and
// object-level resources.
type positionServiceImpl struct {
	fullnode      port.FullnodeClient
	indexer       port.IndexerClient
	rewards       port.RewardService
	prices        port.PriceService
	logger        port.Logger
	maxConcurrent int
}

// NewPositionService creates a position aggregation service.
func NewPositionService(
	fullnode port.FullnodeClient,
	indexer port.IndexerClient,
	rewards port.RewardService,
	prices port.PriceService,
	maxConcurrent int,
	logger port.Logger,
) port.PositionService {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &positionServiceImpl{
		fullnode:      fullnode,
		indexer:       indexer,
		rewards:       rewards,
		prices:        prices,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

type objectResources struct {
	object    entity.MoveObject
	resources []entity.MoveResource
}

// GetPositions implements port.PositionService. Every upstream branch
// degrades to an empty result so one dead collaborator cannot blank the
// whole table.
func (s *positionServiceImpl) GetPositions(ctx context.Context, userAddress string) ([]entity.ProtocolPosition, error) {
	var (
		wg        sync.WaitGroup
		resources []entity.MoveResource
		objects   []entity.MoveObject
		claimed   float64
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		res, err := s.fullnode.GetAccountResources(ctx, userAddress)
		if err != nil {
			s.logger.Warn("Account resource fetch failed", "address", userAddress, "error", err)
			return
		}
		resources = res
	}()
	go func() {
		defer wg.Done()
		objs, err := s.indexer.GetOwnedObjects(ctx, userAddress)
		if err != nil {
			s.logger.Warn("Owned object fetch failed", "address", userAddress, "error", err)
			return
		}
		objects = objs
	}()
	go func() {
		defer wg.Done()
		history, err := s.rewards.GetRewardHistory(ctx, userAddress)
		if err != nil {
			s.logger.Warn("Reward history fetch failed", "address", userAddress, "error", err)
			return
		}
		if history != nil {
			claimed = history.Summary.TotalMoveTokens
		}
	}()
	wg.Wait()

	resolved := s.resolveObjectResources(ctx, objects)

	var raw []entity.ProtocolPosition
	for i := range resources {
		raw = append(raw, s.classifyAccountResource(userAddress, &resources[i], claimed)...)
	}
	for _, or := range resolved {
		for i := range or.resources {
			raw = append(raw, s.classifyObjectResource(or.object.ObjectAddress, &or.resources[i], claimed)...)
		}
	}

	merged := mergePositions(raw)
	s.attachValues(ctx, merged)
	return suppressUnknowns(merged), nil
}

// resolveObjectResources loads each object's resources with bounded
// concurrency. A failed object contributes an empty set.
func (s *positionServiceImpl) resolveObjectResources(ctx context.Context, objects []entity.MoveObject) []objectResources {
	resolved := make([]objectResources, len(objects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, obj := range objects {
		i, obj := i, obj
		g.Go(func() error {
			res, err := s.fullnode.GetAccountResources(gctx, obj.ObjectAddress)
			if err != nil {
				s.logger.Warn("Object resource fetch failed", "object", obj.ObjectAddress, "error", err)
				res = nil
			}
			resolved[i] = objectResources{object: obj, resources: res}
			return nil
		})
	}
	_ = g.Wait()
	return resolved
}

func (s *positionServiceImpl) classifyAccountResource(userAddress string, resource *entity.MoveResource, claimed float64) []entity.ProtocolPosition {
	var positions []entity.ProtocolPosition
	resType := resource.Type

	if strings.Contains(resType, canopyCoreVaults) || strings.Contains(resType, "VaultToken") {
		amount := firstAmountField(resource.Data, vaultAmountKeys)
		if !amount.IsZero() {
			positions = append(positions, entity.ProtocolPosition{
				ID:              "vault-" + resType,
				Protocol:        protocolCanopyCore,
				Type:            entity.PositionVault,
				Asset:           resType,
				AssetSymbol:     symbolFromTypeTag(resType),
				Amount:          amount.String(),
				AmountFormatted: formatBaseUnits(amount),
			})
		}
	}

	if strings.Contains(resType, "multi_rewards::UserData") || strings.Contains(resType, "farming::Staker") {
		total := firstAmountField(resource.Data, stakeDirectKeys)
		total = total.Add(sumUserPools(resource.Data))

		positions = append(positions, entity.ProtocolPosition{
			ID:              fmt.Sprintf("staking-%s-%s", resType, userAddress),
			Protocol:        protocolCanopyStaking,
			Type:            entity.PositionStaking,
			Asset:           resType,
			AssetSymbol:     "MOVE",
			Amount:          total.String(),
			AmountFormatted: formatStakeAmount(total),
			TotalClaimed:    claimed,
		})
	}

	return positions
}

func (s *positionServiceImpl) classifyObjectResource(objectAddress string, resource *entity.MoveResource, claimed float64) []entity.ProtocolPosition {
	var positions []entity.ProtocolPosition
	resType := resource.Type

	if strings.Contains(strings.ToLower(resType), "layerbank") || strings.Contains(resType, "::lending::UserAccount") {
		amount := firstAmountField(resource.Data, lendingAmountKeys)
		if amount.IsZero() {
			amount = nestedCoinValue(resource.Data)
		}
		if !amount.IsZero() {
			positions = append(positions, entity.ProtocolPosition{
				ID:              "lb-" + objectAddress,
				Protocol:        protocolLayerBank,
				Type:            entity.PositionLending,
				Asset:           resType,
				AssetSymbol:     "MOVE",
				Amount:          amount.String(),
				AmountFormatted: formatBaseUnits(amount),
				Rewards:         []string{"LayerBank Points"},
			})
		}
	}

	if strings.Contains(resType, "::multi_rewards::") || strings.Contains(resType, "::farming::") {
		amount := firstAmountField(resource.Data, stakeObjectKeys)
		if !amount.IsZero() || strings.Contains(resType, "farming::Staker") {
			positions = append(positions, entity.ProtocolPosition{
				ID:              "staking-obj-" + objectAddress,
				Protocol:        protocolCanopyStaking,
				Type:            entity.PositionStaking,
				Asset:           resType,
				AssetSymbol:     "MOVE",
				Amount:          amount.String(),
				AmountFormatted: formatStakeAmount(amount),
				TotalClaimed:    claimed,
			})
		}
	}

	if strings.Contains(resType, canopyCoreVaults) || strings.Contains(resType, "VaultToken") {
		amount := firstAmountField(resource.Data, vaultAmountKeys)
		if !amount.IsZero() {
			positions = append(positions, entity.ProtocolPosition{
				ID:              "vault-obj-" + objectAddress,
				Protocol:        protocolCanopyCore,
				Type:            entity.PositionVault,
				Asset:           resType,
				AssetSymbol:     symbolFromTypeTag(resType),
				Amount:          amount.String(),
				AmountFormatted: formatBaseUnits(amount),
			})
		}
	}

	return positions
}

// mergePositions de-duplicates by (protocol, type, symbol), summing raw
// amounts and claimed totals. First-seen order is preserved.
func mergePositions(positions []entity.ProtocolPosition) []entity.ProtocolPosition {
	var merged []entity.ProtocolPosition
	index := make(map[string]int)

	for _, pos := range positions {
		key := fmt.Sprintf("%s-%s-%s", pos.Protocol, pos.Type, pos.AssetSymbol)
		at, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, pos)
			continue
		}

		existing := &merged[at]
		total := utils.DisplayToDecimal(existing.Amount).Add(utils.DisplayToDecimal(pos.Amount))
		if total.IsPositive() {
			existing.Amount = total.String()
			existing.AmountFormatted = formatStakeAmount(total)
		}
		existing.TotalClaimed += pos.TotalClaimed
		if len(existing.Rewards) == 0 {
			existing.Rewards = pos.Rewards
		}
	}
	return merged
}

// attachValues prices each position off its display amount.
func (s *positionServiceImpl) attachValues(ctx context.Context, positions []entity.ProtocolPosition) {
	for i := range positions {
		if !positions[i].HasKnownAmount() {
			continue
		}
		price, err := s.prices.GetPrice(ctx, positions[i].AssetSymbol)
		if err != nil || price <= 0 {
			continue
		}
		amount := utils.DisplayToDecimal(positions[i].AmountFormatted)
		positions[i].ValueUSD = amount.Mul(decimal.NewFromFloat(price)).InexactFloat64()
	}
}

// suppressUnknowns drops sentinel rows when the same protocol already has a
// row with a resolved amount. A lone sentinel is kept as evidence that the
// position exists.
func suppressUnknowns(positions []entity.ProtocolPosition) []entity.ProtocolPosition {
	known := make(map[string]bool)
	for _, pos := range positions {
		if pos.HasKnownAmount() {
			known[pos.Protocol] = true
		}
	}

	filtered := positions[:0]
	for _, pos := range positions {
		if !pos.HasKnownAmount() && known[pos.Protocol] {
			continue
		}
		filtered = append(filtered, pos)
	}
	return filtered
}

// symbolFromTypeTag derives a display symbol from the last segment of a Move
// type tag.
func symbolFromTypeTag(typeTag string) string {
	parts := strings.Split(typeTag, "::")
	base := parts[len(parts)-1]
	if base == "" {
		return "UNKNOWN"
	}
	if strings.Contains(strings.ToLower(base), "aptoscoin") {
		return "MOVE"
	}
	return base
}

// firstAmountField returns the first alias present in data as a decimal.
// String and numeric encodings are both accepted; anything else reads as 0.
func firstAmountField(data map[string]any, keys []string) decimal.Decimal {
	for _, key := range keys {
		value, ok := data[key]
		if !ok || value == nil {
			continue
		}
		if d, ok := decimalFromAny(value); ok {
			return d
		}
	}
	return decimal.Zero
}

func nestedCoinValue(data map[string]any) decimal.Decimal {
	coin, ok := data["coin"].(map[string]any)
	if !ok {
		return decimal.Zero
	}
	if d, ok := decimalFromAny(coin["value"]); ok {
		return d
	}
	return decimal.Zero
}

// sumUserPools sums staked amounts across a nested user_pools table.
func sumUserPools(data map[string]any) decimal.Decimal {
	total := decimal.Zero
	pools, ok := data["user_pools"].(map[string]any)
	if !ok {
		return total
	}
	entries, ok := pools["data"].([]any)
	if !ok {
		return total
	}

	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		value, ok := entry["value"].(map[string]any)
		if !ok {
			continue
		}
		total = total.Add(firstAmountField(value, poolEntryKeys))
	}
	return total
}

func decimalFromAny(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(v), true
	case int64:
		return decimal.NewFromInt(v), true
	}
	return decimal.Zero, false
}

// formatBaseUnits renders a raw base-unit amount with four decimals.
func formatBaseUnits(amount decimal.Decimal) string {
	return amount.Shift(-entity.MoveDecimals).StringFixed(4)
}

// formatStakeAmount renders a staking amount, keeping the unknown sentinel
// for unresolved sizes.
func formatStakeAmount(amount decimal.Decimal) string {
	if amount.IsZero() {
		return entity.UnknownAmount
	}
	return formatBaseUnits(amount)
}
