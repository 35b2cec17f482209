package transport_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexokonski/fixedtick/transport"
)

func TestHeartbeatTimerFiresOnInterval(t *testing.T) {
	h := transport.NewHeartbeatTimer(100 * time.Millisecond)

	require.False(t, h.Tick(60*time.Millisecond))
	require.True(t, h.Tick(60*time.Millisecond))
	require.False(t, h.Tick(60*time.Millisecond))
}
