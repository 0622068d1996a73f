package service

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"move_portfolio/internal/domain/entity"
)

const (
	testContract = "0x113a1769acc5ce21b5ece6f9533eef6dd34c758911fa5235124c87ff1298633b"
	testUser     = "0xabc0000000000000000000000000000000000000000000000000000000000001"
)

type fakeFullnodeClient struct {
	pages     [][]entity.AccountTransaction
	pageErrAt int // 1-based page index that errors; 0 means never
	calls     int
	resources []entity.MoveResource
	resErr    error
}

func (f *fakeFullnodeClient) GetAccountResources(ctx context.Context, address string) ([]entity.MoveResource, error) {
	if f.resErr != nil {
		return nil, f.resErr
	}
	return f.resources, nil
}

func (f *fakeFullnodeClient) GetAccountTransactions(ctx context.Context, address string, start, limit int) ([]entity.AccountTransaction, error) {
	f.calls++
	if f.pageErrAt > 0 && f.calls == f.pageErrAt {
		return nil, errors.New("fullnode unavailable")
	}
	if f.calls > len(f.pages) {
		return nil, nil
	}
	return f.pages[f.calls-1], nil
}

func claimTx(version string, micros int64, eventType string, data string) entity.AccountTransaction {
	return entity.AccountTransaction{
		Version:   version,
		Hash:      "0xhash" + version,
		Timestamp: fmt.Sprintf("%d", micros),
		Events: []entity.ChainEvent{
			{Type: eventType, SequenceNumber: "0", Data: stdjson.RawMessage(data)},
		},
	}
}

func TestRewardServiceReconstructsClaims(t *testing.T) {
	eventType := testContract + "::multi_rewards::RewardClaimedEvent"
	pages := [][]entity.AccountTransaction{{
		claimTx("100", 1700000000000000, eventType,
			`{"user":"`+testUser+`","reward_token":"0xpoolcoin","reward_amount":"100000000","pool_address":"0xpool1"}`),
		// Aliased field names with an object-wrapped token handle.
		claimTx("101", 1700000100000000, eventType,
			`{"claimer":"`+testUser+`","token":{"inner":"0xpoolcoin"},"amount":"50000000","pool":"0xpool1"}`),
		// String-encoded payload, different pool.
		claimTx("102", 1700000200000000, eventType,
			`"{\"account\":\"`+testUser+`\",\"reward_type\":\"0xother\",\"value\":\"200000000\",\"pool_address\":\"0xpool2\"}"`),
		// Someone else's claim is ignored.
		claimTx("103", 1700000300000000, eventType,
			`{"user":"0xdef","reward_token":"0xpoolcoin","reward_amount":"900000000","pool_address":"0xpool1"}`),
		// Unrelated event type is ignored.
		claimTx("104", 1700000400000000, "0x1::coin::DepositEvent", `{"amount":"1"}`),
		// Malformed amount is skipped, not fatal.
		claimTx("105", 1700000500000000, eventType,
			`{"user":"`+testUser+`","reward_token":"0xpoolcoin","reward_amount":"not-a-number","pool_address":"0xpool1"}`),
	}}
	fullnode := &fakeFullnodeClient{pages: pages}
	svc := NewRewardService(fullnode, testContract, 100, 20, nopLogger{})

	history, err := svc.GetRewardHistory(context.Background(), testUser)
	require.NoError(t, err)

	require.Len(t, history.ClaimHistory, 3)
	assert.False(t, history.Truncated)
	assert.Equal(t, int64(150000000), history.TotalRewards["0xpoolcoin"])
	assert.Equal(t, int64(200000000), history.TotalRewards["0xother"])

	assert.Equal(t, 3, history.Summary.TotalClaims)
	assert.InDelta(t, 3.5, history.Summary.TotalMoveTokens, 1e-9)
	assert.InDelta(t, 3.5/3, history.Summary.AverageClaimAmount, 1e-9)

	pool1 := history.Summary.PoolBreakdown["0xpool1"]
	assert.Equal(t, 2, pool1.Count)
	assert.Equal(t, int64(150000000), pool1.Total)
	assert.InDelta(t, 1.5, pool1.TotalMove, 1e-9)

	// Recent claims are newest first and carry display fields.
	require.Len(t, history.Summary.RecentClaims, 3)
	newest := history.Summary.RecentClaims[0]
	assert.Equal(t, "102", newest.TransactionVersion)
	assert.InDelta(t, 2.0, newest.MoveAmount, 1e-9)
	assert.Equal(t, "2023-11-14T22:16:40.000Z", newest.Date)
}

func TestRewardServiceAttributionIsCaseSensitive(t *testing.T) {
	eventType := testContract + "::multi_rewards::RewardClaimedEvent"
	upper := "0xABC0000000000000000000000000000000000000000000000000000000000001"
	pages := [][]entity.AccountTransaction{{
		claimTx("1", 1700000000000000, eventType,
			`{"user":"`+upper+`","reward_token":"0xt","reward_amount":"100000000","pool_address":"0xp"}`),
	}}
	fullnode := &fakeFullnodeClient{pages: pages}
	svc := NewRewardService(fullnode, testContract, 100, 20, nopLogger{})

	history, err := svc.GetRewardHistory(context.Background(), testUser)
	require.NoError(t, err)

	// A differently-cased claimer address is not this user's claim.
	assert.Empty(t, history.ClaimHistory)
	assert.Zero(t, history.Summary.TotalClaims)
}

func TestRewardServiceRecentClaimsCappedAtTen(t *testing.T) {
	eventType := testContract + "::multi_rewards::RewardClaimedEvent"
	var txs []entity.AccountTransaction
	for i := 0; i < 15; i++ {
		txs = append(txs, claimTx(fmt.Sprintf("%d", i), int64(1700000000000000+i),
			eventType,
			`{"user":"`+testUser+`","reward_token":"0xt","reward_amount":"100000000","pool_address":"0xp"}`))
	}
	fullnode := &fakeFullnodeClient{pages: [][]entity.AccountTransaction{txs}}
	svc := NewRewardService(fullnode, testContract, 100, 20, nopLogger{})

	history, err := svc.GetRewardHistory(context.Background(), testUser)
	require.NoError(t, err)

	assert.Len(t, history.ClaimHistory, 15)
	require.Len(t, history.Summary.RecentClaims, 10)
	assert.Equal(t, "14", history.Summary.RecentClaims[0].TransactionVersion)
	assert.Equal(t, "5", history.Summary.RecentClaims[9].TransactionVersion)
}

func TestRewardServicePageErrorKeepsPartialHistory(t *testing.T) {
	eventType := testContract + "::multi_rewards::RewardClaimedEvent"
	fullPage := make([]entity.AccountTransaction, 2)
	for i := range fullPage {
		fullPage[i] = claimTx(fmt.Sprintf("%d", i), int64(1700000000000000+i),
			eventType,
			`{"user":"`+testUser+`","reward_token":"0xt","reward_amount":"100000000","pool_address":"0xp"}`)
	}
	fullnode := &fakeFullnodeClient{
		pages:     [][]entity.AccountTransaction{fullPage},
		pageErrAt: 2,
	}
	svc := NewRewardService(fullnode, testContract, 2, 20, nopLogger{})

	history, err := svc.GetRewardHistory(context.Background(), testUser)
	require.NoError(t, err)

	assert.Len(t, history.ClaimHistory, 2)
	assert.True(t, history.Truncated)
}

func TestRewardServiceStopsAtPageCap(t *testing.T) {
	eventType := testContract + "::multi_rewards::RewardClaimedEvent"
	page := []entity.AccountTransaction{
		claimTx("1", 1700000000000000, eventType,
			`{"user":"`+testUser+`","reward_token":"0xt","reward_amount":"100000000","pool_address":"0xp"}`),
		claimTx("2", 1700000000000001, eventType,
			`{"user":"`+testUser+`","reward_token":"0xt","reward_amount":"100000000","pool_address":"0xp"}`),
	}
	fullnode := &fakeFullnodeClient{pages: [][]entity.AccountTransaction{page, page, page, page}}
	svc := NewRewardService(fullnode, testContract, 2, 3, nopLogger{})

	history, err := svc.GetRewardHistory(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 3, fullnode.calls)
	assert.Len(t, history.ClaimHistory, 6)
	assert.True(t, history.Truncated)
}

func TestRewardServiceEmptyHistory(t *testing.T) {
	fullnode := &fakeFullnodeClient{}
	svc := NewRewardService(fullnode, testContract, 100, 20, nopLogger{})

	history, err := svc.GetRewardHistory(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, testUser, history.UserAddress)
	assert.Empty(t, history.ClaimHistory)
	assert.Empty(t, history.TotalRewards)
	assert.Zero(t, history.Summary.TotalClaims)
	assert.Zero(t, history.Summary.AverageClaimAmount)
	assert.Empty(t, history.Summary.RecentClaims)
	assert.False(t, history.Truncated)
}
