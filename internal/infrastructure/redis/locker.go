package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/evetrack/corphangar/internal/application/sync"
	"github.com/evetrack/corphangar/internal/domain"
)

var _ sync.Locker = (*Locker)(nil)

// Locker lease distribuido por corporación sobre Redis. El TTL acota el lease
// para que un worker caído no bloquee syncs futuros: el lock expira solo.
type Locker struct {
	locker *redislock.Client
}

// NewLocker construye el locker sobre un cliente Redis.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{locker: redislock.New(client)}
}

// Obtain toma el lease de la corporación. Si otro worker ya lo tiene devuelve
// domain.ErrSyncInProgress.
func (l *Locker) Obtain(ctx context.Context, corporationID int64, ttl time.Duration) (sync.Lease, error) {
	key := fmt.Sprintf("corphangar:sync:%d", corporationID)
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: corporación %d", domain.ErrSyncInProgress, corporationID)
	}
	if err != nil {
		return nil, fmt.Errorf("obteniendo lease de sync: %w", err)
	}
	return &lease{lock: lock}, nil
}

type lease struct {
	lock *redislock.Lock
}

// Release libera el lease. Si ya expiró por TTL no es un error para el llamador.
func (l *lease) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
