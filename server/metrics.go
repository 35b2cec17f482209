package server

import "github.com/VictoriaMetrics/metrics"

// Metrics holds the process metrics exposed by the server, following the
// pattern of a private *metrics.Set plus typed counter/histogram fields
// constructed against it. Exposition (WritePrometheus) is the cmd layer's
// job; this type only owns the set and its instruments.
type Metrics struct {
	set *metrics.Set

	ticksRun            *metrics.Counter
	inputsConsumed      *metrics.Counter
	snapshotsSent       *metrics.Counter
	bytesSent           *metrics.Counter
	packetsDroppedDecode *metrics.Counter
	connectionsAccepted *metrics.Counter
	disconnectsIdle     *metrics.Counter
	bricksDestroyed     *metrics.Counter
	bufferStarvations   *metrics.Counter
	tickDuration        *metrics.Histogram
}

func NewMetrics() *Metrics {
	set := metrics.NewSet()
	return &Metrics{
		set:                  set,
		ticksRun:             set.NewCounter(`fixedtick_server_ticks_total`),
		inputsConsumed:       set.NewCounter(`fixedtick_server_inputs_consumed_total`),
		snapshotsSent:        set.NewCounter(`fixedtick_server_snapshots_sent_total`),
		bytesSent:            set.NewCounter(`fixedtick_server_bytes_sent_total`),
		packetsDroppedDecode: set.NewCounter(`fixedtick_server_packets_dropped_total{reason="decode"}`),
		connectionsAccepted:  set.NewCounter(`fixedtick_server_connections_accepted_total`),
		disconnectsIdle:      set.NewCounter(`fixedtick_server_disconnects_total{reason="idle_timeout"}`),
		bricksDestroyed:      set.NewCounter(`fixedtick_server_bricks_destroyed_total`),
		bufferStarvations:    set.NewCounter(`fixedtick_server_input_buffer_starvations_total`),
		tickDuration:         set.NewHistogram(`fixedtick_server_tick_duration_seconds`),
	}
}

// Set returns the underlying metrics.Set for HTTP exposition
// (set.WritePrometheus) by the cmd layer.
func (m *Metrics) Set() *metrics.Set {
	return m.set
}
