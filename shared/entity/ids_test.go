package entity_test

import (
	"testing"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/stretchr/testify/require"
)

func TestIDGeneratorReservesZero(t *testing.T) {
	g := entity.NewIDGenerator()
	require.Equal(t, entity.NetID(1), g.Next())
	require.Equal(t, entity.NetID(2), g.Next())
	require.NotEqual(t, entity.ScoreNetID, g.Next())
}

func TestPlayerIndexAllocatorNeverRecycles(t *testing.T) {
	var a entity.PlayerIndexAllocator
	require.Equal(t, entity.PlayerIndex(0), a.Next())
	require.Equal(t, entity.PlayerIndex(1), a.Next())
	require.Equal(t, entity.PlayerIndex(2), a.Next())
}
