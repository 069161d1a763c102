package store

import "github.com/oklog/ulid/v2"

// NewID returns a ULID string for tickets and journal entries. IDs created
// later in the same process sort after earlier ones, which the list queries
// rely on as a tiebreaker between rows with equal timestamps.
func NewID() string {
	return ulid.Make().String()
}
