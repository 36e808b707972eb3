package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/panelengine/internal/model"
)

type countingHandler struct{}

func (countingHandler) Process(context.Context, model.TaskRow) error { return nil }

func TestRegistry_ResolveIsLazyAndCached(t *testing.T) {
	r := NewRegistry()
	built := 0
	r.Register(model.KindDomain, func() (Handler, error) {
		built++
		return countingHandler{}, nil
	})

	assert.Equal(t, 0, built)

	h1, err := r.Resolve(model.KindDomain)
	require.NoError(t, err)
	h2, err := r.Resolve(model.KindDomain)
	require.NoError(t, err)

	assert.Equal(t, 1, built)
	assert.Equal(t, h1, h2)
}

func TestRegistry_UnknownKind(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve(model.KindDomain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")

	_, err = r.ResolveBatch(model.KindIPAddress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no batch handler registered")
}

func TestRegistry_ConstructorError(t *testing.T) {
	r := NewRegistry()
	r.Register(model.KindMailAccount, func() (Handler, error) {
		return nil, errors.New("listener port in use")
	})

	_, err := r.Resolve(model.KindMailAccount)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "construct mail_account handler")
}
