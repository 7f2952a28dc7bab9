package plumbing_test

import (
	"errors"
	"testing"

	"github.com/jetsonhacks/install-deep-stream/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRegisterAndGet(t *testing.T) {
	p := plumbing.NewProvider[int, string](nil)

	p.Register(func(_ int) (string, bool) {
		return "", false
	})
	p.Register(func(i int) (string, bool) {
		return "value", true
	})

	value, err := p.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "value", value)
}

func TestProviderNoFactory(t *testing.T) {
	fallbackErr := errors.New("no factory available")
	p := plumbing.NewProvider[int, string](fallbackErr)

	value, err := p.Get(1)
	require.ErrorIs(t, err, fallbackErr)
	assert.Empty(t, value)
}

type mockProvider[T any] struct {
	value T
	err   error
	calls int
}

func (m *mockProvider[T]) Get(_ int) (T, error) {
	m.calls++
	return m.value, m.err
}

func TestLazyService(t *testing.T) {
	mock := &mockProvider[int]{value: 42}
	ls := plumbing.NewLazyService[int, int](mock, 0)

	value, err := ls.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	value, err = ls.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 1, mock.calls, "lazy initialization should not call the provider multiple times")
}

func TestLazyServiceWithError(t *testing.T) {
	expectedErr := errors.New("error")
	mock := &mockProvider[int]{err: expectedErr}
	ls := plumbing.NewLazyService[int, int](mock, 0)

	_, err := ls.Get()
	assert.ErrorIs(t, err, expectedErr)

	_, err = ls.Get()
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 1, mock.calls, "lazy initialization should not call the provider multiple times")
}
