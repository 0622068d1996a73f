package entity

// MoveAssetType is the canonical coin type of the network's native token.
const MoveAssetType = "0x1::aptos_coin::AptosCoin"

// MoveDecimals is the number of base-unit decimals of the native MOVE token.
const MoveDecimals = 8

// FungibleAssetMetadata describes a fungible asset as reported by the indexer.
type FungibleAssetMetadata struct {
	TokenStandard string `json:"token_standard"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Decimals      uint8  `json:"decimals"`
	IconURI       string `json:"icon_uri"`
	ProjectURI    string `json:"project_uri"`
	AssetType     string `json:"asset_type"`
}

// FungibleAssetBalance is a raw current-balance row from the indexer.
type FungibleAssetBalance struct {
	AssetType                string                 `json:"asset_type"`
	Amount                   string                 `json:"amount"`
	LastTransactionTimestamp string                 `json:"last_transaction_timestamp"`
	OwnerAddress             string                 `json:"owner_address"`
	StorageID                string                 `json:"storage_id"`
	IsFrozen                 bool                   `json:"is_frozen"`
	IsPrimary                bool                   `json:"is_primary"`
	TokenStandard            string                 `json:"token_standard"`
	Metadata                 *FungibleAssetMetadata `json:"metadata"`
}

// TokenBalance is the display-ready view of one fungible asset holding.
type TokenBalance struct {
	AssetType        string  `json:"assetType"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Decimals         uint8   `json:"decimals"`
	RawAmount        string  `json:"rawAmount"`
	FormattedBalance string  `json:"formattedBalance"`
	IconURI          string  `json:"iconUri,omitempty"`
	PriceUSD         float64 `json:"priceUSD"`
	ValueUSD         float64 `json:"valueUSD"`
}
