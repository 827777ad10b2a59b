package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	reservationserrors "stowaway/internal/reservations/errors"

	"github.com/stretchr/testify/assert"
)

func TestRetryUntil(t *testing.T) {
	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		err := retryUntil(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("busy when wait elapses", func(t *testing.T) {
		calls := 0
		err := retryUntil(context.Background(), 20*time.Millisecond, 5*time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return false, nil
		})
		assert.ErrorIs(t, err, reservationserrors.ErrLockBusy)
		assert.GreaterOrEqual(t, calls, 2)
	})

	t.Run("attempt error stops immediately", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := retryUntil(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := retryUntil(ctx, time.Second, 50*time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
