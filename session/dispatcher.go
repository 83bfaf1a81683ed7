// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

import (
	"sync/atomic"
	"time"

	"github.com/mattermost/mattermost/server/public/shared/mlog"
)

// dispatchLoop is the single serialization point for transport events. It
// drains the adapter's event channel for the life of the session and applies
// events one at a time, so tracker mutations never run concurrently with
// each other. The loop exits when the adapter closes the channel (destroy)
// or the session is closed.
func (s *Session) dispatchLoop() {
	defer close(s.doneCh)

	for {
		select {
		case ev, ok := <-s.adapter.Events():
			if !ok {
				s.log.Debug("session: events channel closed, exiting dispatch loop")
				return
			}
			// Tag the event with the generation current at receipt. A leave
			// completing between receipt and application bumps it and the
			// event is discarded instead of reviving cleared state.
			s.apply(atomic.LoadUint64(&s.gen), ev)
		case <-s.closeCh:
			return
		}
	}
}

// apply routes a single event to the owning tracker and publishes the
// resulting change to subscribers. It performs no business logic beyond
// routing; the trackers own their collections.
func (s *Session) apply(gen uint64, ev Event) {
	s.mut.Lock()

	// Events tagged with a stale generation, or arriving outside an active
	// join cycle, must not revive cleared state. The transport delivers the
	// local join before any other event of a cycle, so anything else
	// dequeued while still joining predates the cycle and is dropped too.
	stale := gen != atomic.LoadUint64(&s.gen) || s.state == stateIdle || s.state == stateLeaving
	if _, ok := ev.(LocalJoinedEvent); !ok && s.state == stateJoining {
		stale = true
	}
	if stale {
		s.mut.Unlock()
		s.metrics.IncEventsDropped("stale")
		if s.dropLogLimiter.Allow() {
			s.log.Warn("session: discarding stale event",
				mlog.String("event", eventName(ev)))
		}
		return
	}

	var change StateChange
	changed := true

	switch ev := ev.(type) {
	case LocalJoinedEvent:
		if s.state != stateJoining {
			// Transport redelivery, tolerate without re-entering.
			s.mut.Unlock()
			s.metrics.IncEventsDropped("unexpected")
			return
		}
		s.state = stateJoined
		s.joinedAt = time.Now()
		s.membership.onLocalJoined(ev.ID, s.roles.role == RoleBroadcaster)
		change = StateChange{Type: ChangeJoined, ID: ev.ID}
		s.metrics.IncStateTransitions("joined")
	case PeerJoinedEvent:
		changed = s.membership.onPeerJoined(ev.ID)
		change = StateChange{Type: ChangeMemberAdded, ID: ev.ID}
	case PeerLeftEvent:
		changed = s.membership.onPeerLeft(ev.ID)
		change = StateChange{Type: ChangeMemberRemoved, ID: ev.ID}
	case VideoStateChangedEvent:
		changed = s.video.onStateChanged(ev.ID, ev.State)
		if ev.State == VideoStateStarting {
			change = StateChange{Type: ChangeVideoStarted, ID: ev.ID}
		} else {
			change = StateChange{Type: ChangeVideoStopped, ID: ev.ID}
		}
	case VideoStatsEvent:
		s.video.onStats(ev.Stats)
		change = StateChange{Type: ChangeVideoStats, ID: ev.Stats.ID, Stats: ev.Stats}
	default:
		s.mut.Unlock()
		s.metrics.IncEventsDropped("unknown")
		if s.dropLogLimiter.Allow() {
			s.log.Warn("session: ignoring unknown event kind")
		}
		return
	}

	s.stats.EventsApplied++
	members := s.membership.size()
	if members > s.stats.PeakMembers {
		s.stats.PeakMembers = members
	}
	s.mut.Unlock()

	s.metrics.IncEvents(eventName(ev))
	s.metrics.SetMembers(float64(members))

	if changed {
		s.notify(change)
	}
}
