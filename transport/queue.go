package transport

import (
	"net"
	"sort"
	"time"
)

// packet is one queued datagram awaiting send or delivery.
type packet struct {
	addr    net.Addr
	payload []byte
}

// delayQueue holds packets alongside a parallel, sorted-by-release-time
// slice of release instants, mirroring the source's VecDeque<Message> +
// VecDeque<Instant> pair. Keeping release times sorted (insertion via
// binary search) means earliest-first order is preserved even though
// packets are appended in arbitrary roll order.
//
// Entries with no simulated delay (profile unset) never get a release-time
// entry at all: releaseTimes stays empty and every packet is immediately
// ready, matching the zero-overhead behavior of an unset profile.
type delayQueue struct {
	packets      []packet
	releaseTimes []time.Time // parallel to packets only when simActive
	simActive    bool
}

func newDelayQueue(simActive bool) *delayQueue {
	return &delayQueue{simActive: simActive}
}

// push inserts a packet. When simulated delay is inactive, packets are
// simply appended (release order is arrival order). When active, both
// packets and releaseTimes are inserted at the same sorted position so an
// earlier-rolled delay for a later-arriving packet can jump ahead of one
// already queued, while keeping the two slices parallel by index (stable
// insert via sort.Search, which returns the first position whose release
// time is after releaseAt, so ties preserve arrival order).
func (q *delayQueue) push(addr net.Addr, payload []byte, releaseAt time.Time) {
	p := packet{addr: addr, payload: payload}
	if !q.simActive {
		q.packets = append(q.packets, p)
		return
	}

	pos := sort.Search(len(q.releaseTimes), func(i int) bool {
		return q.releaseTimes[i].After(releaseAt)
	})

	q.releaseTimes = append(q.releaseTimes, time.Time{})
	copy(q.releaseTimes[pos+1:], q.releaseTimes[pos:])
	q.releaseTimes[pos] = releaseAt

	q.packets = append(q.packets, packet{})
	copy(q.packets[pos+1:], q.packets[pos:])
	q.packets[pos] = p
}

func (q *delayQueue) len() int {
	return len(q.packets)
}

// drain removes and returns every packet whose release time has arrived
// (always true when simActive is false) and that satisfies filter, in
// original order.
func (q *delayQueue) drain(now time.Time, filter func(packet) bool) []packet {
	var drained []packet
	i := 0
	for i < len(q.packets) {
		ready := !q.simActive || !now.Before(q.releaseTimes[i])
		if ready && filter(q.packets[i]) {
			drained = append(drained, q.packets[i])
			q.packets = append(q.packets[:i], q.packets[i+1:]...)
			if q.simActive {
				q.releaseTimes = append(q.releaseTimes[:i], q.releaseTimes[i+1:]...)
			}
		} else {
			i++
		}
	}
	return drained
}
