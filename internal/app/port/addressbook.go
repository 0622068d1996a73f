package port

import (
	"context"

	"move_portfolio/internal/domain/entity"
)

// AddressBookStore persists user-labelled wallet addresses.
type AddressBookStore interface {
	Add(ctx context.Context, username, address string) (*entity.AddressBookEntry, error)
	List(ctx context.Context) ([]entity.AddressBookEntry, error)
	Update(ctx context.Context, id int64, username, address string) (*entity.AddressBookEntry, error)
	Delete(ctx context.Context, id int64) error
}
