package entity

// RewardClaim is a single reward-claim event attributed to a user, derived
// read-only from the transaction log.
type RewardClaim struct {
	PoolAddress        string  `json:"poolAddress"`
	RewardToken        string  `json:"rewardToken"`
	RewardAmount       string  `json:"rewardAmount"`
	RewardAmountParsed int64   `json:"rewardAmountParsed"`
	SequenceNumber     string  `json:"sequenceNumber"`
	TransactionVersion string  `json:"transactionVersion"`
	TransactionHash    string  `json:"transactionHash"`
	TimestampMicros    int64   `json:"timestampMicros"`
	EventType          string  `json:"eventType"`
	MoveAmount         float64 `json:"moveAmount,omitempty"`
	Date               string  `json:"date,omitempty"`
}

// PoolBreakdown aggregates claims against one reward pool.
type PoolBreakdown struct {
	Count     int     `json:"count"`
	Total     int64   `json:"total"`
	TotalMove float64 `json:"totalMove"`
}

// RewardSummary aggregates a user's reward claims.
type RewardSummary struct {
	TotalClaims        int                      `json:"totalClaims"`
	TotalMoveTokens    float64                  `json:"totalMoveTokens"`
	AverageClaimAmount float64                  `json:"averageClaimAmount"`
	PoolBreakdown      map[string]PoolBreakdown `json:"poolBreakdown"`
	RecentClaims       []RewardClaim            `json:"recentClaims"`
}

// RewardHistory is the full reward view for one address. Truncated is set
// when the transaction harvest hit its hard page cap, meaning older claims
// may be missing.
type RewardHistory struct {
	UserAddress  string           `json:"userAddress"`
	TotalRewards map[string]int64 `json:"totalRewards"`
	ClaimHistory []RewardClaim    `json:"claimHistory"`
	Summary      RewardSummary    `json:"summary"`
	Truncated    bool             `json:"truncated,omitempty"`
}
