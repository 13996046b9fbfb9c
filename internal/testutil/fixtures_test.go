package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeview/internal/canon"
)

func TestNewMemoryCAS(t *testing.T) {
	cas, backend := NewMemoryCAS(t)

	_, err := cas.Put(context.Background(), canon.String("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Writes())
}

func TestToyIsDeterministic(t *testing.T) {
	r1, s1 := Toy(t)
	r2, s2 := Toy(t)
	assert.Equal(t, s1.Trains, s2.Trains)
	assert.Equal(t, r1.Data[10], r2.Data[10])
	assert.Equal(t, []int{1, 2, 3}, s1.UnitIDs())
}
