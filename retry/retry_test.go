package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jetsonhacks/install-deep-stream/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := retry.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, retry.Delay(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoMaxRetries(t *testing.T) {
	attempts := 0
	err := retry.Do(context.Background(), func() error {
		attempts++
		return errors.New("persistent")
	}, retry.Delay(time.Millisecond), retry.MaxRetries(4))
	require.Error(t, err)
	assert.Equal(t, 4, attempts)
}

func TestDoAbort(t *testing.T) {
	attempts := 0
	err := retry.Do(context.Background(), func() error {
		attempts++
		return retry.ErrAbort
	}, retry.Delay(time.Millisecond))
	require.ErrorIs(t, err, retry.ErrAbort)
	assert.Equal(t, 1, attempts)
}

func TestDoCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry.Do(ctx, func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestGet(t *testing.T) {
	attempts := 0
	result, err := retry.Get(context.Background(), func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("transient")
		}
		return "hello", nil
	}, retry.Delay(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}
