package dal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
)

// ErrLocked is returned when another holder owns the lock
var ErrLocked = errors.New("lock is held")

// UnlockFunc releases a lock obtained from a Locker
type UnlockFunc func(ctx context.Context) error

// Locker provides named, expiring locks for one-off jobs like seeding
type Locker interface {
	Lock(ctx context.Context, name, owner string, ttl time.Duration) (UnlockFunc, error)
}

type lockDoc struct {
	Owner     string    `json:"lockedBy"`
	LockedAt  time.Time `json:"lockedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func lockKey(name string) string {
	return "lock::" + name
}

// Lock inserts a lock document that the server expires after ttl. Insert
// fails when the document exists, which makes acquisition atomic.
func (s *CouchbaseStore) Lock(ctx context.Context, name, owner string, ttl time.Duration) (UnlockFunc, error) {
	key := lockKey(name)
	now := time.Now().UTC()

	_, err := s.counters.Insert(key, lockDoc{
		Owner:     owner,
		LockedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, &gocb.InsertOptions{Expiry: ttl, Context: ctx})
	if errors.Is(err, gocb.ErrDocumentExists) {
		var held lockDoc
		if res, getErr := s.counters.Get(key, &gocb.GetOptions{Context: ctx}); getErr == nil {
			_ = res.Content(&held)
		}
		log.Warn().
			Str("lock", name).
			Str("held_by", held.Owner).
			Time("expires_at", held.ExpiresAt).
			Msg("Lock already held")
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create lock document: %w", err)
	}

	log.Info().Str("lock", name).Str("owner", owner).Msg("Lock acquired")

	return func(ctx context.Context) error {
		_, err := s.counters.Remove(key, &gocb.RemoveOptions{Context: ctx})
		if err != nil && !errors.Is(err, gocb.ErrDocumentNotFound) {
			return fmt.Errorf("failed to remove lock document: %w", err)
		}
		log.Info().Str("lock", name).Msg("Lock released")
		return nil
	}, nil
}

var (
	_ Store  = (*CouchbaseStore)(nil)
	_ Locker = (*CouchbaseStore)(nil)
)
