package store

import "time"

// TicketFilter narrows ListTickets. Empty fields match everything.
type TicketFilter struct {
	AgentOwner string
	AgentID    string
	Organizer  string
	EventID    string
	TierID     string
	From       *time.Time
	To         *time.Time
}

// EntryFilter narrows ListEntries. Empty fields match everything.
type EntryFilter struct {
	Account string
	Type    string
	RefType string
	RefID   string
	From    *time.Time
	To      *time.Time
}

const defaultLimit = 50

func normalizeLimit(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
