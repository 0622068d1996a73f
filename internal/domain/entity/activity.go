package entity

import "encoding/json"

// FungibleAssetActivity is one debit/credit row from the indexer activity log.
type FungibleAssetActivity struct {
	TransactionVersion   string `json:"transaction_version"`
	TransactionTimestamp string `json:"transaction_timestamp"`
	Amount               string `json:"amount"`
	AssetType            string `json:"asset_type"`
	Type                 string `json:"type"`
	OwnerAddress         string `json:"owner_address"`
	IsTransactionSuccess bool   `json:"is_transaction_success"`
}

// AccountTransaction is one committed transaction from the fullnode
// account-transactions endpoint. Only the fields the reward pipeline
// needs are decoded.
type AccountTransaction struct {
	Version   string         `json:"version"`
	Hash      string         `json:"hash"`
	Timestamp string         `json:"timestamp"`
	Events    []ChainEvent   `json:"events"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// ChainEvent is an event attached to a transaction. Data is kept raw until
// normalized: upstream sometimes delivers it as an object and sometimes as a
// JSON-encoded string.
type ChainEvent struct {
	Type           string          `json:"type"`
	SequenceNumber string          `json:"sequence_number"`
	Data           json.RawMessage `json:"data"`
}

// MoveObject is an on-chain object owned by an account.
type MoveObject struct {
	ObjectAddress          string `json:"object_address"`
	OwnerAddress           string `json:"owner_address"`
	LastTransactionVersion string `json:"last_transaction_version"`
}

// MoveResource is one resource stored under an account or object address.
type MoveResource struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}
