// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

// TransportAdapter is the boundary to the media engine. Implementations
// accept commands and deliver events on the channel returned by Events,
// possibly from multiple goroutines and with no ordering guarantee relative
// to command completion. Commands return a negative code on failure and are
// never called by the session while it holds its dispatch mutex.
type TransportAdapter interface {
	// Join asks the transport to join the given channel. A zero id requests
	// transport-side assignment; the resolved identifier is delivered with
	// the LocalJoinedEvent.
	Join(channel, token string, id ID, info string) int
	// Leave asks the transport to leave the current channel. If onStats is
	// not nil it is invoked asynchronously with the transport's counters.
	Leave(onStats func(TransportStats)) int
	// SetRole switches the local participant's publishing mode.
	SetRole(role Role) int
	// EnableVideo toggles local video publishing.
	EnableVideo(enabled bool) int
	// Events returns the channel on which the transport delivers session
	// events. The channel is closed on Destroy.
	Events() <-chan Event
	// Destroy tears the transport down. No events are delivered afterwards.
	Destroy() error
}
