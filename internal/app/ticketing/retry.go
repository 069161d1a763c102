package ticketing

import (
	"context"
	"errors"
	"time"

	"pulse-ledger/internal/ledger"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// attemptFunc reads current state and returns what to write. A nil or empty
// changeset means there is nothing to commit.
type attemptFunc func(ctx context.Context) (*ledger.Changeset, error)

// commit runs attempt and commits its changeset, starting over from fresh
// reads whenever the commit loses an optimistic race. Validation errors end
// the loop at once. After MaxRetries lost races the conflict is returned.
func (s *Service) commit(ctx context.Context, op string, attempt attemptFunc) (attempts int, err error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryInitial
	b.MaxInterval = 20 * s.cfg.RetryInitial
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxRetries)), ctx)

	operation := func() error {
		attempts++
		cs, err := attempt(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if cs == nil || cs.Empty() {
			return nil
		}
		err = s.store.Commit(ctx, cs)
		if err == nil || errors.Is(err, ledger.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, next time.Duration) {
		metricCommitConflicts.Add(1)
		log.Debug().Err(err).Str("op", op).Int("attempt", attempts).Dur("next_retry_in", next).Msg("commit_conflict")
	}

	err = backoff.RetryNotify(operation, policy, notify)
	if errors.Is(err, ledger.ErrConflict) {
		metricCommitExhausted.Add(1)
		log.Warn().Str("op", op).Int("attempts", attempts).Msg("commit_retries_exhausted")
	}
	return attempts, err
}
