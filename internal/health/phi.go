/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package health scores follower liveness from the heartbeat-send
// timestamps the Followers table already records, using a phi-accrual
// detector. It is an enrichment layer for the admin surface's follower
// listing (SPEC_FULL.md §4.F); nothing in the control or data plane
// depends on it.
package health

import (
	"math"
	"sync"
)

// detector is one peer's phi-accrual failure detector, tracking the
// inter-arrival interval of successive heartbeat-request sends to it.
type detector struct {
	mu sync.RWMutex

	intervalsMs  []float64
	lastSeenSend int64 // last distinct Followers[peer] timestamp observed
	mean         float64
	variance     float64

	threshold  float64
	minSamples int
	maxSamples int
}

func newDetector(threshold float64, minSamples, maxSamples int) *detector {
	return &detector{
		intervalsMs: make([]float64, 0, maxSamples),
		threshold:   threshold,
		minSamples:  minSamples,
		maxSamples:  maxSamples,
	}
}

// observe folds in a newly-seen heartbeat-send timestamp (nanoseconds). It
// is a no-op if sendNano equals the last one seen (the admin surface may
// poll far more often than heartbeats fire).
func (d *detector) observe(sendNano int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if sendNano == d.lastSeenSend {
		return
	}
	if d.lastSeenSend != 0 {
		interval := float64(sendNano-d.lastSeenSend) / 1e6
		d.intervalsMs = append(d.intervalsMs, interval)
		if len(d.intervalsMs) > d.maxSamples {
			d.intervalsMs = d.intervalsMs[1:]
		}
		d.updateStats()
	}
	d.lastSeenSend = sendNano
}

func (d *detector) updateStats() {
	if len(d.intervalsMs) == 0 {
		return
	}
	sum := 0.0
	for _, v := range d.intervalsMs {
		sum += v
	}
	mean := sum / float64(len(d.intervalsMs))

	sumSq := 0.0
	for _, v := range d.intervalsMs {
		diff := v - mean
		sumSq += diff * diff
	}
	d.mean = mean
	d.variance = sumSq / float64(len(d.intervalsMs))
}

// phi returns the current suspicion level given nowNano, the caller's
// monotonic clock reading.
func (d *detector) phi(nowNano int64) float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.intervalsMs) < d.minSamples {
		return 0
	}
	if d.lastSeenSend == 0 {
		return d.threshold + 1
	}

	elapsedMs := float64(nowNano-d.lastSeenSend) / 1e6
	stdDev := math.Sqrt(d.variance)
	if stdDev < 1 {
		stdDev = 1
	}

	y := (elapsedMs - d.mean) / stdDev
	e := math.Exp(-y * (1.5976 + 0.070566*y*y))
	if elapsedMs > d.mean {
		return -math.Log10(e / (1 + e))
	}
	return -math.Log10(1 - 1/(1+e))
}

// Scorer tracks one detector per peer, keyed by the same host-order IPv4
// key used throughout internal/state.
type Scorer struct {
	mu         sync.Mutex
	detectors  map[uint32]*detector
	threshold  float64
	minSamples int
	maxSamples int
}

// NewScorer returns a Scorer using threshold as the phi value above which
// a peer is considered failed.
func NewScorer(threshold float64, minSamples, maxSamples int) *Scorer {
	return &Scorer{
		detectors:  make(map[uint32]*detector),
		threshold:  threshold,
		minSamples: minSamples,
		maxSamples: maxSamples,
	}
}

func (s *Scorer) detectorFor(peer uint32) *detector {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.detectors[peer]
	if !ok {
		d = newDetector(s.threshold, s.minSamples, s.maxSamples)
		s.detectors[peer] = d
	}
	return d
}

// Observe folds in the latest known heartbeat-send timestamp for peer.
func (s *Scorer) Observe(peer uint32, lastHeartbeatSendNano int64) {
	s.detectorFor(peer).observe(lastHeartbeatSendNano)
}

// Status returns the current phi value and whether peer is considered
// failed, as of nowNano.
func (s *Scorer) Status(peer uint32, nowNano int64) (phi float64, failed bool) {
	d := s.detectorFor(peer)
	phi = d.phi(nowNano)
	return phi, phi > s.threshold
}
