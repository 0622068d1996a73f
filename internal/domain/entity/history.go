package entity

import "time"

// BalanceHistoryPoint is one sample in a reconstructed balance series.
// Boundary marks points that sit exactly on a transaction.
type BalanceHistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Balance   float64   `json:"balance"`
	Boundary  bool      `json:"boundary"`
}

// BalanceHistory is the chart-ready series for one address and one asset.
type BalanceHistory struct {
	Address   string                `json:"address"`
	AssetType string                `json:"assetType"`
	Points    []BalanceHistoryPoint `json:"points"`
}
