package entity

// PositionType classifies how a protocol holds the user's funds.
type PositionType string

const (
	PositionVault   PositionType = "vault"
	PositionStaking PositionType = "staking"
	PositionLending PositionType = "lending"
	PositionLooping PositionType = "looping"
	PositionHolding PositionType = "holding"
)

// UnknownAmount is the sentinel display value for positions whose size could
// not be read from any known resource field.
const UnknownAmount = "?.??"

// ProtocolPosition is one de-duplicated protocol position with its valuation.
type ProtocolPosition struct {
	ID              string       `json:"id"`
	Protocol        string       `json:"protocol"`
	Type            PositionType `json:"type"`
	Asset           string       `json:"asset"`
	AssetSymbol     string       `json:"assetSymbol"`
	Amount          string       `json:"amount"`
	AmountFormatted string       `json:"amountFormatted"`
	ValueUSD        float64      `json:"valueUSD"`
	Rewards         []string     `json:"rewards,omitempty"`
	TotalClaimed    float64      `json:"totalClaimed,omitempty"`
}

// HasKnownAmount reports whether the position's size was resolved.
func (p ProtocolPosition) HasKnownAmount() bool {
	return p.AmountFormatted != UnknownAmount
}
