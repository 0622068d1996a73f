package entity

import "time"

// AddressBookEntry is a user-assigned label for a wallet address.
// IDs are assigned by the store on insert.
type AddressBookEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}
