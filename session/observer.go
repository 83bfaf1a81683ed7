// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

import (
	"github.com/mattermost/mattermost/server/public/shared/mlog"

	"github.com/rtcsync/sessionkit/random"
)

const subscriberChSize = 64

type ChangeType string

const (
	// ChangeJoined reports that the local join completed; ID carries the
	// resolved local identifier.
	ChangeJoined ChangeType = "Joined"
	// ChangeMemberAdded and ChangeMemberRemoved report membership deltas.
	ChangeMemberAdded   ChangeType = "MemberAdded"
	ChangeMemberRemoved ChangeType = "MemberRemoved"
	// ChangeVideoStarted and ChangeVideoStopped report video-enabled deltas.
	ChangeVideoStarted ChangeType = "VideoStarted"
	ChangeVideoStopped ChangeType = "VideoStopped"
	// ChangeVideoStats reports a replaced stats snapshot.
	ChangeVideoStats ChangeType = "VideoStats"
	// ChangeRole reports a local role switch.
	ChangeRole ChangeType = "Role"
	// ChangeReset reports that all tracked state was cleared on leave.
	ChangeReset ChangeType = "Reset"
)

// StateChange identifies what a single applied event changed, so observers
// can react to deltas instead of diffing full snapshots.
type StateChange struct {
	Type  ChangeType
	ID    ID
	Role  Role       // set for ChangeRole
	Stats VideoStats // set for ChangeVideoStats
}

// Subscribe registers a new observer and returns its subscription id along
// with the channel change notifications are delivered on. Slow observers
// miss notifications rather than block the dispatcher.
func (s *Session) Subscribe() (string, <-chan StateChange, error) {
	subID := random.NewID()
	ch := make(chan StateChange, subscriberChSize)

	s.subMut.Lock()
	defer s.subMut.Unlock()
	s.subscribers[subID] = ch

	return subID, ch, nil
}

// Unsubscribe removes the given observer and closes its channel.
func (s *Session) Unsubscribe(subID string) error {
	s.subMut.Lock()
	defer s.subMut.Unlock()

	ch, ok := s.subscribers[subID]
	if !ok {
		return ErrSubscriptionNotFound
	}
	delete(s.subscribers, subID)
	close(ch)

	return nil
}

func (s *Session) notify(change StateChange) {
	s.subMut.RLock()
	defer s.subMut.RUnlock()

	for id, ch := range s.subscribers {
		select {
		case ch <- change:
		default:
			if s.dropLogLimiter.Allow() {
				s.log.Error("session: failed to notify subscriber: channel is full",
					mlog.String("subID", id))
			}
		}
	}
}
