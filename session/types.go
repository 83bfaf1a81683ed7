// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

import (
	"fmt"
	"time"
)

// ID identifies a participant within a session. The zero value is reserved:
// passed to JoinChannel it asks the transport to assign an identifier and it
// is never a valid member identifier once resolved.
type ID uint32

// Role is the publishing mode of the local participant.
type Role int32

const (
	// RoleAudience can only receive media.
	RoleAudience Role = iota + 1
	// RoleBroadcaster can publish media and is registered as a member.
	RoleBroadcaster
)

func (r Role) IsValid() bool {
	return r == RoleAudience || r == RoleBroadcaster
}

func (r Role) String() string {
	switch r {
	case RoleAudience:
		return "audience"
	case RoleBroadcaster:
		return "broadcaster"
	default:
		return "unknown"
	}
}

// ParseRole returns the Role matching the given string form.
func ParseRole(s string) (Role, error) {
	switch s {
	case "audience":
		return RoleAudience, nil
	case "broadcaster":
		return RoleBroadcaster, nil
	default:
		return 0, fmt.Errorf("invalid role value %q", s)
	}
}

// VideoState mirrors the transport's remote video stream states. Only
// VideoStateStarting and VideoStateStopped affect tracked state; any other
// value is accepted and ignored so that newer transports don't break us.
type VideoState int

const (
	VideoStateStopped VideoState = iota
	VideoStateStarting
	VideoStateDecoding
	VideoStateFrozen
	VideoStateFailed
)

// VideoStats is the latest metrics snapshot for a participant's video stream.
// It is replaced wholesale on every stats event; no history is kept.
type VideoStats struct {
	ID        ID  `msgpack:"id" json:"id"`
	Width     int `msgpack:"width" json:"width"`
	Height    int `msgpack:"height" json:"height"`
	FrameRate int `msgpack:"frameRate" json:"frameRate"`
}

// SessionStats holds the counters the session keeps for a single join/leave
// cycle. It is returned by LeaveChannel.
type SessionStats struct {
	Channel       string        `json:"channel"`
	Duration      time.Duration `json:"duration"`
	PeakMembers   int           `json:"peakMembers"`
	EventsApplied int           `json:"eventsApplied"`
}

// TransportStats carries the transport's own counters, delivered
// asynchronously through the leave callback.
type TransportStats struct {
	DurationMs int64 `msgpack:"durationMs" json:"durationMs"`
	TxBytes    int64 `msgpack:"txBytes" json:"txBytes"`
	RxBytes    int64 `msgpack:"rxBytes" json:"rxBytes"`
}
