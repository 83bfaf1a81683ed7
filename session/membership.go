// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

import (
	"slices"
)

// membershipTracker owns the set of participants currently in the session.
// It does no locking of its own: all mutations happen under the session's
// dispatch mutex, one event at a time.
type membershipTracker struct {
	members map[ID]struct{}
	localID ID
}

func newMembershipTracker() *membershipTracker {
	return &membershipTracker{
		members: make(map[ID]struct{}),
	}
}

// onLocalJoined records the resolved local identifier. The local participant
// becomes a member only when publishing.
func (t *membershipTracker) onLocalJoined(id ID, broadcaster bool) {
	t.localID = id
	if broadcaster {
		t.members[id] = struct{}{}
	}
}

// onPeerJoined inserts the given participant. Transports may redeliver, so
// inserting an existing member is a no-op. Reports whether the set changed.
func (t *membershipTracker) onPeerJoined(id ID) bool {
	if _, ok := t.members[id]; ok {
		return false
	}
	t.members[id] = struct{}{}
	return true
}

// onPeerLeft removes the given participant if present. Reports whether the
// set changed.
func (t *membershipTracker) onPeerLeft(id ID) bool {
	if _, ok := t.members[id]; !ok {
		return false
	}
	delete(t.members, id)
	return true
}

// addLocal registers the local participant as a member. A no-op until the
// local identifier has been resolved.
func (t *membershipTracker) addLocal() bool {
	if t.localID == 0 {
		return false
	}
	return t.onPeerJoined(t.localID)
}

// removeLocal unregisters the local participant.
func (t *membershipTracker) removeLocal() bool {
	if t.localID == 0 {
		return false
	}
	return t.onPeerLeft(t.localID)
}

func (t *membershipTracker) isMember(id ID) bool {
	_, ok := t.members[id]
	return ok
}

func (t *membershipTracker) size() int {
	return len(t.members)
}

func (t *membershipTracker) snapshot() []ID {
	ids := make([]ID, 0, len(t.members))
	for id := range t.members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (t *membershipTracker) reset() {
	t.members = make(map[ID]struct{})
	t.localID = 0
}
