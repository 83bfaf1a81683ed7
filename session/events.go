// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

// Event is a typed transport notification. Variants are routed by the
// session's dispatch loop through a single type switch, which serializes
// their application to the trackers.
type Event interface {
	isEvent()
}

// LocalJoinedEvent reports that the local participant joined a channel and
// carries the resolved identifier.
type LocalJoinedEvent struct {
	Channel   string
	ID        ID
	ElapsedMs int64
}

// PeerJoinedEvent reports that a remote participant joined.
type PeerJoinedEvent struct {
	ID        ID
	ElapsedMs int64
}

// PeerLeftEvent reports that a remote participant left. Reason is
// informational only.
type PeerLeftEvent struct {
	ID     ID
	Reason int
}

// VideoStateChangedEvent reports a change in a remote participant's video
// stream state.
type VideoStateChangedEvent struct {
	ID        ID
	State     VideoState
	Reason    int
	ElapsedMs int64
}

// VideoStatsEvent carries a fresh metrics snapshot for a remote participant's
// video stream.
type VideoStatsEvent struct {
	Stats VideoStats
}

func (LocalJoinedEvent) isEvent()       {}
func (PeerJoinedEvent) isEvent()        {}
func (PeerLeftEvent) isEvent()          {}
func (VideoStateChangedEvent) isEvent() {}
func (VideoStatsEvent) isEvent()        {}

func eventName(ev Event) string {
	switch ev.(type) {
	case LocalJoinedEvent:
		return "local_joined"
	case PeerJoinedEvent:
		return "peer_joined"
	case PeerLeftEvent:
		return "peer_left"
	case VideoStateChangedEvent:
		return "video_state"
	case VideoStatsEvent:
		return "video_stats"
	default:
		return "unknown"
	}
}
