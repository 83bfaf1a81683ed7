// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

import (
	"slices"
)

// videoTracker owns per-participant video stream state and metrics. Both the
// enabled set and the stats map are intentionally decoupled from membership:
// stream events and membership events are independent streams and may race,
// so entries can exist for identifiers whose join event has not arrived yet.
// Mutations happen under the session's dispatch mutex.
type videoTracker struct {
	enabled map[ID]struct{}
	stats   map[ID]VideoStats
}

func newVideoTracker() *videoTracker {
	return &videoTracker{
		enabled: make(map[ID]struct{}),
		stats:   make(map[ID]VideoStats),
	}
}

// onStateChanged applies a stream state transition. Starting inserts,
// stopped removes, anything else is ignored. Both directions are idempotent.
// Reports whether the enabled set changed.
func (t *videoTracker) onStateChanged(id ID, state VideoState) bool {
	switch state {
	case VideoStateStarting:
		if _, ok := t.enabled[id]; ok {
			return false
		}
		t.enabled[id] = struct{}{}
		return true
	case VideoStateStopped:
		if _, ok := t.enabled[id]; !ok {
			return false
		}
		delete(t.enabled, id)
		return true
	default:
		// States this layer does not act on.
		return false
	}
}

// onStats replaces the stats entry unconditionally, regardless of current
// membership or enabled state.
func (t *videoTracker) onStats(stats VideoStats) {
	t.stats[stats.ID] = stats
}

func (t *videoTracker) isEnabled(id ID) bool {
	_, ok := t.enabled[id]
	return ok
}

func (t *videoTracker) enabledSnapshot() []ID {
	ids := make([]ID, 0, len(t.enabled))
	for id := range t.enabled {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (t *videoTracker) statsFor(id ID) (VideoStats, bool) {
	stats, ok := t.stats[id]
	return stats, ok
}

func (t *videoTracker) statsSnapshot() map[ID]VideoStats {
	stats := make(map[ID]VideoStats, len(t.stats))
	for id, s := range t.stats {
		stats[id] = s
	}
	return stats
}

func (t *videoTracker) reset() {
	t.enabled = make(map[ID]struct{})
	t.stats = make(map[ID]VideoStats)
}
