package client

import "github.com/VictoriaMetrics/metrics"

// Metrics mirrors server.Metrics' shape on the client side: a private set
// plus typed instruments, with exposition left to the cmd layer.
type Metrics struct {
	set *metrics.Set

	snapshotsReceived    *metrics.Counter
	packetsDroppedDecode *metrics.Counter
	mispredictions       *metrics.Counter
	bufferStarvations    *metrics.Counter
	inputsSent           *metrics.Counter
	rttSeconds           *metrics.Histogram
}

func NewMetrics() *Metrics {
	set := metrics.NewSet()
	return &Metrics{
		set:                  set,
		snapshotsReceived:    set.NewCounter(`fixedtick_client_snapshots_received_total`),
		packetsDroppedDecode: set.NewCounter(`fixedtick_client_packets_dropped_total{reason="decode"}`),
		mispredictions:       set.NewCounter(`fixedtick_client_mispredictions_total`),
		bufferStarvations:    set.NewCounter(`fixedtick_client_snapshot_buffer_starvations_total`),
		inputsSent:           set.NewCounter(`fixedtick_client_inputs_sent_total`),
		rttSeconds:           set.NewHistogram(`fixedtick_client_rtt_seconds`),
	}
}

func (m *Metrics) Set() *metrics.Set {
	return m.set
}
