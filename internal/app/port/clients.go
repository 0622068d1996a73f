package port

import (
	"context"

	"move_portfolio/internal/domain/entity"
)

// IndexerClient defines the interface for querying the Movement GraphQL indexer.
type IndexerClient interface {
	// GetFungibleAssets returns all non-zero fungible asset balances for an address.
	GetFungibleAssets(ctx context.Context, userAddress string) ([]entity.FungibleAssetBalance, error)

	// GetMoveBalance returns the native MOVE balance row, or nil when the
	// address holds none. It falls back to a symbol search when the direct
	// asset-type query comes back empty.
	GetMoveBalance(ctx context.Context, userAddress string) (*entity.FungibleAssetBalance, error)

	// GetActivities returns the most recent fungible asset activities for an
	// address, newest first.
	GetActivities(ctx context.Context, ownerAddress string, limit int) ([]entity.FungibleAssetActivity, error)

	// GetOwnedObjects returns all on-chain objects owned by an address.
	GetOwnedObjects(ctx context.Context, ownerAddress string) ([]entity.MoveObject, error)

	// Forward posts an arbitrary GraphQL document to the given endpoint and
	// returns the upstream response body verbatim.
	Forward(ctx context.Context, endpoint, query string, variables map[string]any) ([]byte, error)
}

// FullnodeClient defines the interface for the Movement fullnode REST API.
type FullnodeClient interface {
	// GetAccountResources returns all resources stored under an address.
	GetAccountResources(ctx context.Context, address string) ([]entity.MoveResource, error)

	// GetAccountTransactions returns one page of committed transactions for
	// an address, oldest first within the page.
	GetAccountTransactions(ctx context.Context, address string, start, limit int) ([]entity.AccountTransaction, error)
}

// QuoteClient defines the interface for the external price-quote provider.
// Prices returns symbol -> USD unit price; Rates returns fiat conversion
// multipliers relative to USD (e.g. "EUR" -> 0.92).
type QuoteClient interface {
	Prices(ctx context.Context) (map[string]float64, error)
	Rates(ctx context.Context) (map[string]float64, error)
}
