package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"move_portfolio/internal/app/port"
	"move_portfolio/internal/domain/entity"
	"move_portfolio/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	rewardEventSuffix = "::multi_rewards::RewardClaimedEvent"
	moveBaseUnits     = 1e8
	recentClaimsLimit = 10
)

// Field aliases seen across contract versions. Order matters: the first
// present key wins.
var (
	rewardUserKeys   = []string{"user", "claimer", "account"}
	rewardTokenKeys  = []string{"reward_token", "token", "reward_type"}
	rewardAmountKeys = []string{"reward_amount", "amount", "value"}
	rewardPoolKeys   = []string{"pool_address", "pool", "staking_pool"}
)

// rewardServiceImpl reconstructs reward-claim history by replaying the
// account's transaction log and filtering claim events emitted by the
// rewards contract.
type rewardServiceImpl struct {
	fullnode  port.FullnodeClient
	logger    port.Logger
	eventType string
	pageSize  int
	maxPages  int
}

// NewRewardService creates a reward service bound to one rewards contract.
func NewRewardService(fullnode port.FullnodeClient, contractAddress string, pageSize, maxPages int, logger port.Logger) port.RewardService {
	return &rewardServiceImpl{
		fullnode:  fullnode,
		logger:    logger,
		eventType: contractAddress + rewardEventSuffix,
		pageSize:  pageSize,
		maxPages:  maxPages,
	}
}

// GetRewardHistory implements port.RewardService. The harvest walks forward
// through the transaction log; a page error keeps whatever was already
// collected and marks the result truncated.
func (s *rewardServiceImpl) GetRewardHistory(ctx context.Context, userAddress string) (*entity.RewardHistory, error) {
	claims, truncated := s.harvest(ctx, userAddress)
	history := s.summarize(userAddress, claims)
	history.Truncated = truncated
	return history, nil
}

func (s *rewardServiceImpl) harvest(ctx context.Context, userAddress string) ([]entity.RewardClaim, bool) {
	var claims []entity.RewardClaim
	truncated := false

	start := 0
	for page := 0; page < s.maxPages; page++ {
		txs, err := s.fullnode.GetAccountTransactions(ctx, userAddress, start, s.pageSize)
		if err != nil {
			s.logger.Warn("Transaction page fetch failed, keeping partial history",
				"address", userAddress, "start", start, "error", err)
			truncated = true
			break
		}

		for i := range txs {
			claims = append(claims, s.extractClaims(userAddress, &txs[i])...)
		}

		if len(txs) < s.pageSize {
			break
		}
		start += len(txs)
		if page == s.maxPages-1 {
			truncated = true
		}
	}

	return claims, truncated
}

// extractClaims pulls the user's claim events out of one transaction.
// Malformed events are counted and skipped rather than failing the harvest.
func (s *rewardServiceImpl) extractClaims(userAddress string, tx *entity.AccountTransaction) []entity.RewardClaim {
	var claims []entity.RewardClaim
	for _, event := range tx.Events {
		if event.Type != s.eventType {
			continue
		}

		data, err := normalizeEventData(event.Data)
		if err != nil {
			metrics.RewardEventsSkipped.Inc()
			s.logger.Warn("Skipping malformed reward event",
				"version", tx.Version, "sequence", event.SequenceNumber, "error", err)
			continue
		}

		// Attribution is an exact match: addresses are canonical lowercase
		// on chain, so a differently-cased claimer is a different value.
		claimer, ok := firstStringField(data, rewardUserKeys)
		if !ok || claimer != userAddress {
			continue
		}

		amount, ok := firstStringField(data, rewardAmountKeys)
		if !ok {
			metrics.RewardEventsSkipped.Inc()
			s.logger.Warn("Reward event has no amount field",
				"version", tx.Version, "sequence", event.SequenceNumber)
			continue
		}
		parsed, err := strconv.ParseInt(amount, 10, 64)
		if err != nil || parsed < 0 {
			metrics.RewardEventsSkipped.Inc()
			s.logger.Warn("Reward event amount is not a base-unit integer",
				"version", tx.Version, "amount", amount)
			continue
		}

		token, _ := firstStringField(data, rewardTokenKeys)
		if token == "" {
			token = "unknown"
		}
		pool, _ := firstStringField(data, rewardPoolKeys)
		if pool == "" {
			pool = "unknown"
		}

		claims = append(claims, entity.RewardClaim{
			PoolAddress:        pool,
			RewardToken:        token,
			RewardAmount:       amount,
			RewardAmountParsed: parsed,
			SequenceNumber:     event.SequenceNumber,
			TransactionVersion: tx.Version,
			TransactionHash:    tx.Hash,
			TimestampMicros:    parseMicros(tx.Timestamp),
			EventType:          event.Type,
		})
	}
	return claims
}

func (s *rewardServiceImpl) summarize(userAddress string, claims []entity.RewardClaim) *entity.RewardHistory {
	totals := make(map[string]int64)
	pools := make(map[string]entity.PoolBreakdown)
	var totalMove float64

	for _, claim := range claims {
		totals[claim.RewardToken] += claim.RewardAmountParsed
		move := float64(claim.RewardAmountParsed) / moveBaseUnits
		totalMove += move

		breakdown := pools[claim.PoolAddress]
		breakdown.Count++
		breakdown.Total += claim.RewardAmountParsed
		breakdown.TotalMove += move
		pools[claim.PoolAddress] = breakdown
	}

	var average float64
	if len(claims) > 0 {
		average = totalMove / float64(len(claims))
	}

	recent := claims
	if len(recent) > recentClaimsLimit {
		recent = recent[len(recent)-recentClaimsLimit:]
	}
	recent = lo.Reverse(append([]entity.RewardClaim(nil), recent...))
	for i := range recent {
		recent[i].MoveAmount = float64(recent[i].RewardAmountParsed) / moveBaseUnits
		recent[i].Date = microsToISO(recent[i].TimestampMicros)
	}

	return &entity.RewardHistory{
		UserAddress:  userAddress,
		TotalRewards: totals,
		ClaimHistory: claims,
		Summary: entity.RewardSummary{
			TotalClaims:        len(claims),
			TotalMoveTokens:    totalMove,
			AverageClaimAmount: average,
			PoolBreakdown:      pools,
			RecentClaims:       recent,
		},
	}
}

// normalizeEventData decodes event payloads that arrive either as a JSON
// object or as a JSON-encoded string containing an object.
func normalizeEventData(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty event data")
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err == nil {
		return data, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("event data is neither object nor string")
	}
	if err := json.Unmarshal([]byte(encoded), &data); err != nil {
		return nil, fmt.Errorf("string-encoded event data is not an object: %w", err)
	}
	return data, nil
}

// firstStringField returns the first alias present in data, rendered as a
// string. Object values are unwrapped through their "inner" field, which is
// how Move object handles are serialized.
func firstStringField(data map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		value, ok := data[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			return v, true
		case map[string]any:
			if inner, ok := v["inner"].(string); ok {
				return inner, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}

func parseMicros(timestamp string) int64 {
	micros, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return 0
	}
	return micros
}

func microsToISO(micros int64) string {
	if micros <= 0 {
		return ""
	}
	return time.UnixMilli(micros / 1000).UTC().Format("2006-01-02T15:04:05.000Z")
}
