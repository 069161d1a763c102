package store

import (
	"context"

	"pulse-ledger/internal/ledger"

	"github.com/jackc/pgx/v5"
)

// Commit writes cs in one transaction. A stale version rolls everything back
// with ErrConflict. On success the versions in cs are advanced to what is now
// stored and every entry has an ID.
func (s *Store) Commit(ctx context.Context, cs *ledger.Changeset) error {
	if cs == nil || cs.Empty() {
		return nil
	}
	assignEntryIDs(cs)
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, a := range cs.Agents {
		if a.Version == 0 {
			err = insertAgent(ctx, tx, a)
		} else {
			err = updateAgent(ctx, tx, a)
		}
		if err != nil {
			return err
		}
	}
	for _, e := range cs.Escrows {
		if e.Version == 0 {
			err = insertEscrow(ctx, tx, e)
		} else {
			err = updateEscrow(ctx, tx, e)
		}
		if err != nil {
			return err
		}
	}
	for _, e := range cs.Events {
		if e.Version == 0 {
			err = insertEvent(ctx, tx, e)
		} else {
			err = updateEvent(ctx, tx, e)
		}
		if err != nil {
			return err
		}
	}
	for _, t := range cs.Tiers {
		if t.Version == 0 {
			err = insertTier(ctx, tx, t)
		} else {
			err = updateTier(ctx, tx, t)
		}
		if err != nil {
			return err
		}
	}
	for _, t := range cs.Tallies {
		if t.Version == 0 {
			err = insertTally(ctx, tx, t)
		} else {
			err = updateTally(ctx, tx, t)
		}
		if err != nil {
			return err
		}
	}
	for _, t := range cs.Tickets {
		if err := insertTicket(ctx, tx, t); err != nil {
			return err
		}
	}
	for _, e := range cs.Entries {
		if err := insertEntry(ctx, tx, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	advanceVersions(cs)
	return nil
}

func assignEntryIDs(cs *ledger.Changeset) {
	for i := range cs.Entries {
		if cs.Entries[i].ID == "" {
			cs.Entries[i].ID = NewID()
		}
	}
}

func advanceVersions(cs *ledger.Changeset) {
	for i := range cs.Agents {
		cs.Agents[i].Version++
	}
	for i := range cs.Escrows {
		cs.Escrows[i].Version++
	}
	for i := range cs.Events {
		cs.Events[i].Version++
	}
	for i := range cs.Tiers {
		cs.Tiers[i].Version++
	}
	for i := range cs.Tallies {
		cs.Tallies[i].Version++
	}
}
