package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/domain/entity"
	"move_portfolio/internal/pkg/utils"
)

const (
	historyActivityLimit = 2000
	historyWindowMonths  = 6
)

var withdrawKeywords = []string{"withdraw", "burn", "fee", "debit", "gas"}

// historyServiceImpl rebuilds a balance time series for the native token by
// replaying the activity log around the current balance. The chain exposes no
// point-in-time balance queries, so the series is reconstructed: a backward
// pass derives the starting balance, a forward pass replays each activity as
// a step in the chart.
type historyServiceImpl struct {
	indexer port.IndexerClient
	logger  port.Logger
	now     func() time.Time
}

// NewHistoryService creates a balance history service.
func NewHistoryService(indexer port.IndexerClient, logger port.Logger) port.HistoryService {
	return &historyServiceImpl{
		indexer: indexer,
		logger:  logger,
		now:     time.Now,
	}
}

// GetBalanceHistory implements port.HistoryService.
func (s *historyServiceImpl) GetBalanceHistory(ctx context.Context, userAddress string) (*entity.BalanceHistory, error) {
	activities, err := s.indexer.GetActivities(ctx, userAddress, historyActivityLimit)
	if err != nil {
		return nil, err
	}

	moveBalance, err := s.indexer.GetMoveBalance(ctx, userAddress)
	if err != nil {
		return nil, err
	}
	if moveBalance == nil {
		return &entity.BalanceHistory{
			Address:   userAddress,
			AssetType: entity.MoveAssetType,
		}, nil
	}

	currentBalance := rawToFloat(moveBalance.Amount)
	targetAssetType := moveBalance.AssetType

	now := s.now()
	windowStart := now.AddDate(0, -historyWindowMonths, 0)

	filtered := filterTargetActivities(activities, targetAssetType)
	sort.SliceStable(filtered, func(i, j int) bool {
		return parseActivityTime(filtered[i].TransactionTimestamp).
			Before(parseActivityTime(filtered[j].TransactionTimestamp))
	})

	history := &entity.BalanceHistory{
		Address:   userAddress,
		AssetType: targetAssetType,
	}

	if len(filtered) == 0 {
		history.Points = []entity.BalanceHistoryPoint{
			{Timestamp: windowStart, Balance: currentBalance},
			{Timestamp: now, Balance: currentBalance},
		}
		return history, nil
	}

	// Backward pass: undo each activity, newest first, to find the balance
	// at the start of the window.
	startBalance := currentBalance
	for i := len(filtered) - 1; i >= 0; i-- {
		amount := rawToFloat(filtered[i].Amount)
		if isWithdraw(filtered[i].Type) {
			startBalance += amount
		} else {
			startBalance -= amount
		}
	}

	// The opening point sits at the window start, unless an older activity
	// survived the fetch; then it moves back so timestamps never decrease.
	seriesStart := windowStart
	if first := parseActivityTime(filtered[0].TransactionTimestamp).Add(-2 * time.Millisecond); first.Before(seriesStart) {
		seriesStart = first
	}

	running := clampZero(startBalance)
	points := []entity.BalanceHistoryPoint{
		{Timestamp: seriesStart, Balance: running},
	}

	// Forward pass: a flat point one millisecond before each activity keeps
	// the chart stepped instead of sloped.
	for i := range filtered {
		at := parseActivityTime(filtered[i].TransactionTimestamp)
		amount := rawToFloat(filtered[i].Amount)

		points = append(points, entity.BalanceHistoryPoint{
			Timestamp: at.Add(-time.Millisecond),
			Balance:   clampZero(running),
		})

		if isWithdraw(filtered[i].Type) {
			running -= amount
		} else {
			running += amount
		}

		points = append(points, entity.BalanceHistoryPoint{
			Timestamp: at,
			Balance:   clampZero(running),
			Boundary:  true,
		})
	}

	// Pin the series to the balance the indexer actually reports now.
	points = append(points, entity.BalanceHistoryPoint{
		Timestamp: now,
		Balance:   currentBalance,
	})

	history.Points = points
	return history, nil
}

// filterTargetActivities keeps activities for the target asset: an exact
// case-insensitive type match when known, otherwise native-coin heuristics.
func filterTargetActivities(activities []entity.FungibleAssetActivity, targetAssetType string) []entity.FungibleAssetActivity {
	target := strings.ToLower(targetAssetType)
	var filtered []entity.FungibleAssetActivity
	for _, activity := range activities {
		activityType := strings.ToLower(activity.AssetType)
		if target != "" && activityType == target {
			filtered = append(filtered, activity)
			continue
		}
		if strings.Contains(activityType, "aptos_coin") || strings.Contains(activityType, "move") {
			filtered = append(filtered, activity)
		}
	}
	return filtered
}

// isWithdraw classifies an activity type tag. Anything not explicitly a
// withdrawal counts as a deposit.
func isWithdraw(activityType string) bool {
	lower := strings.ToLower(activityType)
	for _, keyword := range withdrawKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func rawToFloat(raw string) float64 {
	d, err := utils.RawToDecimal(raw, entity.MoveDecimals)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// parseActivityTime parses indexer timestamps, which come without a zone and
// are UTC by convention.
func parseActivityTime(value string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02 15:04:05.999999",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
