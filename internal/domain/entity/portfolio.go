package entity

// Portfolio is the aggregated wallet view for one address.
type Portfolio struct {
	Address            string             `json:"address"`
	NetWorthUSD        float64            `json:"netWorthUSD"`
	MoveBalance        float64            `json:"moveBalance"`
	MoveValueUSD       float64            `json:"moveValueUSD"`
	Assets             []TokenBalance     `json:"assets"`
	ProtocolPositions  []ProtocolPosition `json:"protocolPositions"`
	TotalProtocolValue float64            `json:"totalProtocolValue"`
}

// PortfolioError describes a non-fatal failure while assembling a portfolio
// section; the rest of the view is still served.
type PortfolioError struct {
	Address string `json:"address,omitempty"`
	Section string `json:"section"`
	Message string `json:"message"`
}
