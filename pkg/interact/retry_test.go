// pkg/interact/retry_test.go
package interact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRetryReturnsFirstSuccess(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BackoffMax: time.Millisecond}
	calls := 0

	v, err := Retry(context.Background(), zaptest.NewLogger(t), policy, func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestRetryReturnsLastErrorUnmodified(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BackoffMax: time.Millisecond}
	first := errors.New("first")
	last := errors.New("last")
	errs := []error{first, first, last}
	calls := 0

	_, err := Retry(context.Background(), zaptest.NewLogger(t), policy, func() (string, error) {
		err := errs[calls]
		calls++
		return "", err
	})

	assert.Equal(t, 3, calls)
	assert.Same(t, last, err, "the combinator must not wrap or replace the error")
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BackoffMin: 10 * time.Millisecond, BackoffMax: 20 * time.Millisecond}
	boom := errors.New("boom")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	_, err := Retry(ctx, zaptest.NewLogger(t), policy, func() (int, error) {
		calls++
		return 0, boom
	})

	assert.Equal(t, 1, calls, "cancellation ends the budget at the next backoff")
	assert.Same(t, boom, err)
}

func TestDoWrapsVoidOperations(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, BackoffMax: time.Millisecond}
	calls := 0

	err := Do(context.Background(), zaptest.NewLogger(t), policy, func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestInteractorDoUsesDefaultPolicy(t *testing.T) {
	driver := &fakeDriver{}
	in := newTestInteractor(t, driver)
	boom := errors.New("boom")
	calls := 0

	err := in.Do(context.Background(), func() error {
		calls++
		return boom
	})

	assert.Same(t, boom, err)
	assert.Equal(t, 3, calls, "the interactor's configured attempt budget applies")
	assert.Empty(t, driver.screenshots(), "the combinator never snapshots")
}
